package service

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	actx "github.com/yeisme/audiovault/pkg/context"
	"github.com/yeisme/audiovault/pkg/internal/model"
	"github.com/yeisme/audiovault/pkg/internal/storage/blob"
	"github.com/yeisme/audiovault/pkg/internal/types"
	"github.com/yeisme/audiovault/pkg/metrics"
	"github.com/yeisme/audiovault/pkg/queue"
	"github.com/yeisme/audiovault/pkg/tracing"
)

// ReconcileOptions 对账参数.
type ReconcileOptions struct {
	// DryRun 只报告不修改.
	DryRun bool
	// Grace 比这更新的文件与记录不参与判定，避免误伤正在进行的上传或删除.
	Grace time.Duration
	// PruneMetadata 删除找不到文件的记录.
	PruneMetadata bool
}

// Reconcile 比对文件存储与元数据，清理没有记录的文件，报告（可选删除）没有文件的记录.
func (s *AudioService) Reconcile(ctx context.Context, opts ReconcileOptions) (*types.ReconcileResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "audio.reconcile")
	defer span.End()

	l := actx.Logger(ctx)

	var (
		blobs []blob.Info
		recs  []model.AudioFile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		blobs, err = s.blob.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		recs, err = s.meta.List(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, wrap(ErrStorage, err)
	}

	cutoff := s.now().Add(-opts.Grace)
	res := &types.ReconcileResponse{
		DryRun:          opts.DryRun,
		Blobs:           len(blobs),
		Records:         len(recs),
		OrphanBlobs:     []string{},
		RemovedBlobs:    []string{},
		MissingBlobs:    []string{},
		PrunedRecordIDs: []uint{},
	}

	known := make(map[string]struct{}, len(recs))
	for i := range recs {
		known[recs[i].Filename] = struct{}{}
	}

	stored := make(map[string]struct{}, len(blobs))
	for _, b := range blobs {
		stored[b.Key] = struct{}{}

		if _, ok := known[b.Key]; ok || !b.ModTime.Before(cutoff) {
			continue
		}

		res.OrphanBlobs = append(res.OrphanBlobs, b.Key)

		removed := false
		if !opts.DryRun {
			if err := s.blob.Delete(ctx, b.Key); err != nil {
				res.Errors = append(res.Errors, err.Error())
				l.Warn().Err(err).Str("filename", b.Key).Msg("remove orphan blob failed")
			} else {
				removed = true
				res.RemovedBlobs = append(res.RemovedBlobs, b.Key)
			}
		}

		s.emitOrphan(ctx, queue.AudioOrphanPayload{
			Kind:    queue.OrphanBlob,
			Audio:   queue.AudioRef{Filename: b.Key, Size: b.Size},
			Removed: removed,
			DryRun:  opts.DryRun,
		})
	}

	for i := range recs {
		rec := &recs[i]
		if _, ok := stored[rec.Filename]; ok || !rec.CreatedAt.Before(cutoff) {
			continue
		}

		// 列举之后可能刚写入，删除前再确认一次
		exists, err := s.blob.Exists(ctx, rec.Filename)
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}

		if exists {
			continue
		}

		res.MissingBlobs = append(res.MissingBlobs, rec.Filename)

		removed := false
		if opts.PruneMetadata && !opts.DryRun {
			ok, err := s.meta.DeleteByID(ctx, rec.ID)
			if err != nil {
				res.Errors = append(res.Errors, err.Error())
				l.Warn().Err(err).Uint("id", rec.ID).Msg("prune record failed")
			} else if ok {
				removed = true
				res.PrunedRecordIDs = append(res.PrunedRecordIDs, rec.ID)
				s.evict(ctx, rec.UUID)
			}
		}

		s.emitOrphan(ctx, queue.AudioOrphanPayload{
			Kind:    queue.OrphanRecord,
			Audio:   audioRef(rec),
			Removed: removed,
			DryRun:  opts.DryRun,
		})
	}

	sort.Strings(res.OrphanBlobs)
	sort.Strings(res.RemovedBlobs)

	metrics.ObserveOrphans(string(queue.OrphanBlob), len(res.OrphanBlobs))
	metrics.ObserveOrphans(string(queue.OrphanRecord), len(res.MissingBlobs))

	l.Info().
		Bool("dry_run", opts.DryRun).
		Int("blobs", res.Blobs).
		Int("records", res.Records).
		Int("orphan_blobs", len(res.OrphanBlobs)).
		Int("removed_blobs", len(res.RemovedBlobs)).
		Int("missing_blobs", len(res.MissingBlobs)).
		Int("pruned_records", len(res.PrunedRecordIDs)).
		Msg("reconcile finished")

	return res, nil
}
