package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultReconcileCron 每天 03:15 对账一次.
	DefaultReconcileCron = "15 3 * * *"
	// DefaultReconcileGrace 新写入的文件在宽限期内不会被当作孤儿删除.
	DefaultReconcileGrace = time.Hour
)

// ReconcileConfig 存储与元数据的对账任务配置.
type ReconcileConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Cron    string        `mapstructure:"cron"           rule:"required"`
	Grace   time.Duration `mapstructure:"grace"          rule:"min=0"`
	DryRun  bool          `mapstructure:"dry_run"`
	// PruneMetadata 为 true 时删除找不到文件的元数据记录.
	PruneMetadata bool `mapstructure:"prune_metadata"`
}

func (c *ReconcileConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("reconcile.enabled", true)
	v.SetDefault("reconcile.cron", DefaultReconcileCron)
	v.SetDefault("reconcile.grace", DefaultReconcileGrace)
	v.SetDefault("reconcile.dry_run", false)
	v.SetDefault("reconcile.prune_metadata", false)
}
