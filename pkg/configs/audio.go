package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultMaxUploadBytes 单个音频文件的最大字节数 (100 MiB).
	DefaultMaxUploadBytes int64 = 100 * 1024 * 1024
	// DefaultMultipartOverhead multipart 表单除文件外允许的额外字节.
	DefaultMultipartOverhead int64 = 1024 * 1024
	// DefaultLookupCacheTTL uuid 查询缓存时间.
	DefaultLookupCacheTTL = 10 * time.Minute
)

// AudioConfig 音频上传与访问相关配置.
type AudioConfig struct {
	// MaxUploadBytes 单文件上限.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"   rule:"min=1"`
	// MultipartOverhead 请求体上限 = MaxUploadBytes + MultipartOverhead.
	MultipartOverhead int64 `mapstructure:"multipart_overhead" rule:"min=0"`
	// PublicBaseURL 对外可见的地址，如 https://audio.example.com；为空时按请求推断.
	PublicBaseURL string `mapstructure:"public_base_url"    rule:"omitempty,url"`
	// LookupCacheTTL uuid -> 记录 的缓存时间，0 表示不缓存.
	LookupCacheTTL time.Duration `mapstructure:"lookup_cache_ttl"`
}

// MaxRequestBytes 返回上传请求体的上限.
func (c *AudioConfig) MaxRequestBytes() int64 {
	return c.MaxUploadBytes + c.MultipartOverhead
}

func (c *AudioConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("audio.max_upload_bytes", DefaultMaxUploadBytes)
	v.SetDefault("audio.multipart_overhead", DefaultMultipartOverhead)
	v.SetDefault("audio.public_base_url", "")
	v.SetDefault("audio.lookup_cache_ttl", DefaultLookupCacheTTL)
}
