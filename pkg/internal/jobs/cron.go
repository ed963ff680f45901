// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"errors"

	"github.com/yeisme/audiovault/pkg/configs"
	actx "github.com/yeisme/audiovault/pkg/context"
	"github.com/yeisme/audiovault/pkg/internal/service"
	"github.com/yeisme/audiovault/pkg/internal/types"
	"github.com/yeisme/audiovault/pkg/log"
	"github.com/yeisme/audiovault/pkg/scheduler"
)

// Reconciler 执行一次存储对账.
type Reconciler interface {
	Reconcile(ctx context.Context, opts service.ReconcileOptions) (*types.ReconcileResponse, error)
}

// RegisterCronJobs 配置业务定时任务：
//   - 按 reconcile.cron 对文件存储与元数据对账（默认每天 03:15）
func RegisterCronJobs(ctx context.Context, sched *scheduler.Scheduler, r Reconciler, cfg configs.ReconcileConfig) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if r == nil {
		return errors.New("reconciler is nil")
	}

	if !cfg.Enabled {
		log.Logger().Info().Str("job", JobAudioReconcile).Msg("job disabled")
		return nil
	}

	return sched.AddCron(ctx, JobAudioReconcile, cfg.Cron, func(ctx context.Context) error {
		return RunReconcile(ctx, r, cfg)
	})
}

// RunReconcile 执行一次对账并记录结果.
func RunReconcile(ctx context.Context, r Reconciler, cfg configs.ReconcileConfig) error {
	l := log.Logger().With().Str("job", JobAudioReconcile).Logger()
	ctx = actx.WithLogger(ctx, l)

	res, err := r.Reconcile(ctx, service.ReconcileOptions{
		DryRun:        cfg.DryRun,
		Grace:         cfg.Grace,
		PruneMetadata: cfg.PruneMetadata,
	})
	if err != nil {
		return err
	}

	if len(res.Errors) > 0 {
		l.Warn().Strs("errors", res.Errors).Msg("reconcile finished with errors")
	}

	return nil
}
