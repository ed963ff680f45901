package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/audiovault/pkg/app"
	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/service"
	"github.com/yeisme/audiovault/pkg/internal/storage"
)

const cmdTimeout = 5 * time.Minute

var (
	reconcileDryRun bool
	reconcilePrune  bool
	reconcileGrace  time.Duration

	reconcileCmd = &cobra.Command{
		Use:   "reconcile",
		Short: "remove blobs without metadata and report metadata without blobs",
		Long: "Compare the blob store with the metadata store once. Blobs that have no record and are older\n" +
			"than the grace period are deleted; records whose blob is missing are reported and, with --prune,\n" +
			"deleted as well.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.GetConfig()

			opts := service.ReconcileOptions{DryRun: cfg.Reconcile.DryRun, Grace: cfg.Reconcile.Grace, PruneMetadata: cfg.Reconcile.PruneMetadata}
			if cmd.Flags().Changed("dry-run") {
				opts.DryRun = reconcileDryRun
			}

			if cmd.Flags().Changed("prune") {
				opts.PruneMetadata = reconcilePrune
			}

			if cmd.Flags().Changed("grace") {
				opts.Grace = reconcileGrace
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cmdTimeout)
			defer cancel()

			mgr, err := storage.New(ctx, cfg, storage.Options{SkipKV: true})
			if err != nil {
				return err
			}
			defer mgr.Close()

			res, err := app.NewAudioService(cfg, mgr).Reconcile(ctx, opts)
			if err != nil {
				return err
			}

			b, err := sonic.ConfigStd.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}
)

// registerReconcileCommands 注册对账命令.
func registerReconcileCommands() {
	reconcileCmd.Flags().BoolVar(&reconcileDryRun, "dry-run", false, "only report, do not delete anything")
	reconcileCmd.Flags().BoolVar(&reconcilePrune, "prune", false, "delete records whose blob is missing")
	reconcileCmd.Flags().DurationVar(&reconcileGrace, "grace", configs.DefaultReconcileGrace, "ignore blobs and records newer than this")

	rootCmd.AddCommand(reconcileCmd)
}
