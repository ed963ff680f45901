package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yeisme/audiovault/pkg/cache"
	actx "github.com/yeisme/audiovault/pkg/context"
	"github.com/yeisme/audiovault/pkg/internal/model"
	"github.com/yeisme/audiovault/pkg/internal/storage/blob"
	"github.com/yeisme/audiovault/pkg/internal/storage/meta"
	"github.com/yeisme/audiovault/pkg/internal/types"
)

const cacheKeyPrefix = "uuid:"

// List 返回全部文件，最新的在前. 没有文件时返回空切片.
func (s *AudioService) List(ctx context.Context, baseURL string) ([]types.AudioFileInfo, error) {
	recs, err := s.meta.List(ctx)
	if err != nil {
		return nil, wrap(ErrStorage, err)
	}

	out := make([]types.AudioFileInfo, 0, len(recs))
	for i := range recs {
		out = append(out, types.NewAudioFileInfo(&recs[i], DownloadURL(baseURL, recs[i].UUID)))
	}

	return out, nil
}

// GetByUUID 按 uuid 精确查询文件信息.
func (s *AudioService) GetByUUID(ctx context.Context, id, baseURL string) (*types.AudioFileInfo, error) {
	rec, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	info := types.NewAudioFileInfo(rec, DownloadURL(baseURL, rec.UUID))

	return &info, nil
}

// Open 查找记录并打开对应文件，调用方负责关闭返回的 Object.
func (s *AudioService) Open(ctx context.Context, id string) (*model.AudioFile, blob.Object, error) {
	rec, err := s.lookup(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	obj, err := s.blob.Open(ctx, rec.Filename)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			l := actx.Logger(ctx)
			l.Warn().Str("uuid", rec.UUID).Str("filename", rec.Filename).Msg("metadata without blob")

			return nil, nil, wrap(ErrNotFound, err)
		}

		return nil, nil, wrap(ErrStorage, err)
	}

	return rec, obj, nil
}

func validUUID(id string) bool {
	if len(id) != 36 {
		return false
	}

	_, err := uuid.Parse(id)

	return err == nil
}

// lookup 先读缓存，未命中再查元数据.
// 缓存只由 Upload 写入、由 Delete 清除，查询路径不回填.
func (s *AudioService) lookup(ctx context.Context, id string) (*model.AudioFile, error) {
	if !validUUID(id) {
		return nil, ErrNotFound
	}

	if s.cacheEnabled() {
		rec, err := cache.Get[model.AudioFile](ctx, s.cache, cacheKeyPrefix+id)
		if err == nil {
			return &rec, nil
		}

		if !cache.IsMiss(err) {
			l := actx.Logger(ctx)
			l.Debug().Err(err).Str("uuid", id).Msg("cache read failed")
		}
	}

	rec, err := s.meta.GetByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, meta.ErrNotFound) {
			return nil, wrap(ErrNotFound, err)
		}

		return nil, wrap(ErrStorage, err)
	}

	return rec, nil
}

func (s *AudioService) cacheEnabled() bool {
	return s.cache != nil && s.audio.LookupCacheTTL > 0
}

func (s *AudioService) cacheRecord(ctx context.Context, rec *model.AudioFile) {
	if !s.cacheEnabled() {
		return
	}

	if err := cache.Set(ctx, s.cache, cacheKeyPrefix+rec.UUID, *rec, s.audio.LookupCacheTTL); err != nil {
		l := actx.Logger(ctx)
		l.Debug().Err(err).Str("uuid", rec.UUID).Msg("cache record failed")
	}
}

func (s *AudioService) evict(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, cacheKeyPrefix+id); err != nil && !cache.IsMiss(err) {
		l := actx.Logger(ctx)
		l.Warn().Err(err).Str("uuid", id).Msg("evict cached record failed")
	}
}
