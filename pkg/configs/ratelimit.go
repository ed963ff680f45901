package configs

import "github.com/spf13/viper"

const (
	// 默认速率限制配置.
	DefaultRateLimitEnabled   = false
	DefaultRateLimitRPS       = 50.0
	DefaultRateLimitBurst     = 100
	DefaultRateLimitKey       = "ip"
	DefaultUploadRateLimitRPS = 2.0
	DefaultUploadRateBurst    = 5
)

// RateLimitConfig 速率限制配置.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"   rule:"min=0"` // 每秒允许的请求数
	Burst   int     `mapstructure:"burst" rule:"min=0"` // 突发容量
	// Key 选择限流维度：global（全局）、ip（按客户端IP）、header:Header-Name（按请求头）
	Key string `mapstructure:"key"`
	// Upload 上传接口单独的限流，写入大文件比读取代价高得多.
	Upload UploadRateLimitConfig `mapstructure:"upload"`
}

// UploadRateLimitConfig 上传接口限流.
type UploadRateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"   rule:"min=0"`
	Burst int     `mapstructure:"burst" rule:"min=0"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", DefaultRateLimitEnabled)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.key", DefaultRateLimitKey)
	v.SetDefault("rate_limit.upload.rps", DefaultUploadRateLimitRPS)
	v.SetDefault("rate_limit.upload.burst", DefaultUploadRateBurst)
}
