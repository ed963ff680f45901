package service

import (
	"context"

	actx "github.com/yeisme/audiovault/pkg/context"
	"github.com/yeisme/audiovault/pkg/internal/model"
	"github.com/yeisme/audiovault/pkg/queue"
)

func audioRef(rec *model.AudioFile) queue.AudioRef {
	return queue.AudioRef{
		ID:          rec.ID,
		UUID:        rec.UUID,
		Filename:    rec.Filename,
		Size:        rec.FileSize,
		ContentType: rec.MimeType,
	}
}

func (s *AudioService) headerOpts(ctx context.Context) []func(*queue.EventHeader) {
	opts := []func(*queue.EventHeader){queue.WithProducer(s.events.Producer)}
	if id := actx.TraceID(ctx); id != "" {
		opts = append(opts, queue.WithTraceID(id))
	}

	return opts
}

// emit 发布事件；失败只记录日志，不影响业务结果.
func (s *AudioService) emit(ctx context.Context, enabled bool, topic string, fn func(opts ...func(*queue.EventHeader)) error) {
	if s.pub == nil || !s.events.Enabled || !enabled {
		return
	}

	if err := fn(s.headerOpts(ctx)...); err != nil {
		l := actx.Logger(ctx)
		l.Warn().Err(err).Str("topic", topic).Msg("publish event failed")
	}
}

func (s *AudioService) emitStored(ctx context.Context, rec *model.AudioFile, url string) {
	s.emit(ctx, s.events.Audio.Stored, queue.TopicAudioStored, func(opts ...func(*queue.EventHeader)) error {
		return queue.PublishAudioStored(s.pub, queue.AudioStoredPayload{
			Audio:            audioRef(rec),
			OriginalFilename: rec.OriginalFilename,
			DownloadURL:      url,
		}, opts...)
	})
}

func (s *AudioService) emitDeleted(ctx context.Context, rec *model.AudioFile) {
	s.emit(ctx, s.events.Audio.Deleted, queue.TopicAudioDeleted, func(opts ...func(*queue.EventHeader)) error {
		return queue.PublishAudioDeleted(s.pub, queue.AudioDeletedPayload{Audio: audioRef(rec)}, opts...)
	})
}

func (s *AudioService) emitOrphan(ctx context.Context, p queue.AudioOrphanPayload) {
	s.emit(ctx, s.events.Audio.Orphaned, queue.TopicAudioOrphanDetected, func(opts ...func(*queue.EventHeader)) error {
		return queue.PublishAudioOrphan(s.pub, p, opts...)
	})
}
