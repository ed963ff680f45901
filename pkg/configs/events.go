package configs

import "github.com/spf13/viper"

// EventsConfig 控制事件发布的开关（全局与分主题）。
type EventsConfig struct {
	Enabled  bool              `mapstructure:"enabled"` // 总开关
	Audio    AudioEventsConfig `mapstructure:"audio"`
	Producer string            `mapstructure:"producer"`
}

// AudioEventsConfig 音频文件生命周期的事件开关。
type AudioEventsConfig struct {
	Stored   bool `mapstructure:"stored"`
	Deleted  bool `mapstructure:"deleted"`
	Orphaned bool `mapstructure:"orphaned"`
}

func (c *EventsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("events.enabled", true)
	v.SetDefault("events.producer", AppName)

	v.SetDefault("events.audio.stored", true)
	v.SetDefault("events.audio.deleted", true)
	// 对账产生的事件量与孤儿数量相关，默认开启
	v.SetDefault("events.audio.orphaned", true)
}
