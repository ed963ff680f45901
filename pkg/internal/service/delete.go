package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	actx "github.com/yeisme/audiovault/pkg/context"
	"github.com/yeisme/audiovault/pkg/internal/storage/meta"
	"github.com/yeisme/audiovault/pkg/metrics"
	"github.com/yeisme/audiovault/pkg/tracing"
)

// Delete 按 id 删除文件与元数据. 记录不存在时返回 false.
//
// 先删除文件：文件删除失败时记录保持不变，调用方可以重试；
// 文件已删除而元数据删除失败时，记录会指向不存在的文件，由对账任务处理.
func (s *AudioService) Delete(ctx context.Context, id uint) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "audio.delete")
	defer span.End()

	span.SetAttributes(attribute.Int64("audio.id", int64(id)))

	l := actx.Logger(ctx).With().Uint("id", id).Logger()

	rec, err := s.meta.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, meta.ErrNotFound) {
			metrics.ObserveDelete(metrics.ResultNotFound)
			return false, nil
		}

		metrics.ObserveDelete(metrics.ResultError)

		return false, wrap(ErrStorage, err)
	}

	if err := s.blob.Delete(ctx, rec.Filename); err != nil {
		l.Error().Err(err).Str("filename", rec.Filename).Msg("delete blob failed")
		metrics.ObserveDelete(metrics.ResultError)

		return false, wrap(ErrStorage, err)
	}

	deleted, err := s.meta.DeleteByID(ctx, id)
	if err != nil {
		l.Error().Err(err).Str("filename", rec.Filename).Msg("blob removed but metadata delete failed")
		metrics.ObserveDelete(metrics.ResultError)

		return false, wrap(ErrStorage, err)
	}

	s.evict(ctx, rec.UUID)

	if !deleted {
		// 并发删除时另一方已经删掉了记录
		metrics.ObserveDelete(metrics.ResultNotFound)
		return false, nil
	}

	s.emitDeleted(ctx, rec)
	metrics.ObserveDelete(metrics.ResultOK)

	l.Info().Str("uuid", rec.UUID).Str("filename", rec.Filename).Msg("audio deleted")

	return true, nil
}
