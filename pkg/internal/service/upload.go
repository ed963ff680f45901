package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	actx "github.com/yeisme/audiovault/pkg/context"
	"github.com/yeisme/audiovault/pkg/internal/model"
	"github.com/yeisme/audiovault/pkg/internal/storage/meta"
	"github.com/yeisme/audiovault/pkg/internal/types"
	"github.com/yeisme/audiovault/pkg/metrics"
	"github.com/yeisme/audiovault/pkg/rule"
	"github.com/yeisme/audiovault/pkg/tracing"
)

// UploadInput 上传参数. Size 为客户端声明的大小，写入后会与实际字节数核对.
type UploadInput struct {
	OriginalFilename string
	MimeType         string
	Size             int64
	Body             io.Reader
}

// Upload 校验并保存一个音频文件，返回包含格式化大小的文件信息.
//
// 失败时不会留下可见的记录；文件已写入而元数据失败时会删除文件.
func (s *AudioService) Upload(ctx context.Context, in UploadInput, baseURL string) (*types.UploadResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "audio.upload")
	defer span.End()

	l := actx.Logger(ctx)

	resp, err := s.upload(ctx, in, baseURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, PublicMessage(err))

		result := metrics.ResultRejected
		if errors.Is(err, ErrStorage) || errors.Is(err, ErrConflict) {
			result = metrics.ResultError

			l.Error().Err(err).Str("original_filename", in.OriginalFilename).Msg("upload failed")
		} else {
			l.Info().Err(err).Str("original_filename", in.OriginalFilename).Str("mime", in.MimeType).Msg("upload rejected")
		}

		metrics.ObserveUpload(result, 0)

		return nil, err
	}

	span.SetAttributes(
		attribute.String("audio.uuid", resp.UUID),
		attribute.Int64("audio.size", resp.FileSize),
	)
	metrics.ObserveUpload(metrics.ResultOK, resp.FileSize)

	l.Info().
		Uint("id", resp.ID).
		Str("uuid", resp.UUID).
		Str("filename", resp.Filename).
		Int64("size", resp.FileSize).
		Msg("audio stored")

	return resp, nil
}

func (s *AudioService) upload(ctx context.Context, in UploadInput, baseURL string) (*types.UploadResponse, error) {
	if !rule.IsAudioMime(in.MimeType) {
		return nil, fmt.Errorf("%w: content type %q", ErrAdmission, in.MimeType)
	}

	limit := s.audio.MaxUploadBytes
	if in.Size > limit {
		return nil, fmt.Errorf("%w: %d > %d", ErrSizeLimit, in.Size, limit)
	}

	if in.Body == nil || in.Size < 0 || strings.TrimSpace(in.OriginalFilename) == "" {
		return nil, fmt.Errorf("%w: missing file", ErrValidation)
	}

	id := s.newUUID()
	rec := &model.AudioFile{
		Filename:         id + fileExt(in.OriginalFilename),
		OriginalFilename: in.OriginalFilename,
		FileSize:         in.Size,
		MimeType:         in.MimeType,
		UUID:             id,
	}

	if err := rule.ValidateStruct(rec); err != nil {
		return nil, wrap(ErrValidation, err)
	}

	n, err := s.blob.Put(ctx, rec.Filename, io.LimitReader(in.Body, limit+1))
	if err != nil {
		s.discard(ctx, rec.Filename)
		return nil, wrap(ErrStorage, err)
	}

	switch {
	case n > limit:
		s.discard(ctx, rec.Filename)
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrSizeLimit, limit)
	case n != in.Size:
		s.discard(ctx, rec.Filename)
		return nil, fmt.Errorf("%w: declared %d bytes, received %d", ErrValidation, in.Size, n)
	}

	if err := s.meta.Insert(ctx, rec); err != nil {
		s.discard(ctx, rec.Filename)

		if errors.Is(err, meta.ErrConflict) {
			return nil, wrap(ErrConflict, err)
		}

		return nil, wrap(ErrStorage, err)
	}

	url := DownloadURL(baseURL, rec.UUID)

	s.cacheRecord(ctx, rec)
	s.emitStored(ctx, rec, url)

	return &types.UploadResponse{
		AudioFileInfo: types.NewAudioFileInfo(rec, url),
		FormattedSize: FormatFileSize(rec.FileSize),
	}, nil
}

// discard 删除上传失败留下的文件. 使用独立 ctx，客户端断开时也要清理.
func (s *AudioService) discard(ctx context.Context, key string) {
	if err := s.blob.Delete(context.WithoutCancel(ctx), key); err != nil {
		l := actx.Logger(ctx)
		l.Warn().Err(err).Str("filename", key).Msg("discard partial blob failed")
	}
}
