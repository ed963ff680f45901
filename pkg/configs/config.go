// Package configs 管理应用程序配置，包括数据库、音频存储、KV、队列与可观测性的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	import "path/to/configs"
//
//	err := configs.InitConfig("./")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config := configs.GetConfig()
//	fmt.Println(config.Server.Port)
//
// Example accessing DB config:
//
//	dbConfig := configs.GetConfig().DB
//	dsn := dbConfig.GetDSN()
//
// Example accessing Blob config:
//
//	blobConfig := configs.GetConfig().Blob
//	if blobConfig.Type == configs.BlobTypeS3 {
//		fmt.Println("S3 Endpoint:", blobConfig.S3.GetEndpointURL())
//	}
//
// Example accessing Audio config:
//
//	audioConfig := configs.GetConfig().Audio
//	fmt.Println("Max upload:", audioConfig.MaxUploadBytes)
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yeisme/audiovault/pkg/rule"
)

// AppName 应用名称，用作环境变量前缀、服务名等.
const AppName = "audiovault"

// AppVersion 应用版本.
var AppVersion = "0.1.0"

// EnvPrefix 环境变量前缀，例如 AUDIOVAULT_SERVER_PORT=9000.
const EnvPrefix = "AUDIOVAULT"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`          // ServerConfig 服务器配置
		DB             DBConfig             `mapstructure:"db"`              // DBConfig 元数据库配置
		Blob           BlobConfig           `mapstructure:"blob"`            // BlobConfig 音频文件存储配置
		Audio          AudioConfig          `mapstructure:"audio"`           // AudioConfig 上传限制与公开地址
		Log            LogConfig            `mapstructure:"log"`             // LogConfig 日志相关配置
		Metrics        MetricsConfig        `mapstructure:"metrics"`         // MetricsConfig 监控配置
		Tracing        TracingConfig        `mapstructure:"tracing"`         // TracingConfig 追踪配置
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`      // RateLimitConfig 限流配置
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"` // CircuitBreakerConfig 熔断配置
		KV             KVConfig             `mapstructure:"kv"`              // KVConfig 缓存配置
		MQ             MQConfig             `mapstructure:"mq"`              // MQConfig 消息队列配置
		Events         EventsConfig         `mapstructure:"events"`          // EventsConfig 事件开关
		Reconcile      ReconcileConfig      `mapstructure:"reconcile"`       // ReconcileConfig 孤儿清理任务
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
	// mu 保护热重载时的并发读写.
	mu sync.RWMutex
)

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// 配置文件不存在时使用默认值与环境变量.
func InitConfig(path string) error {
	v := viper.New()
	setAllDefaults(v)

	useFile := false

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		v.SetConfigFile(path)

		useFile = true
	} else if path != "" {
		v.SetConfigName("config")
		v.AddConfigPath(path)
		v.AddConfigPath(filepath.Join(path, "configs"))

		for _, ext := range []string{"yaml", "yml", "json", "toml", "env", "dotenv"} {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				v.SetConfigFile(cfg)

				useFile = true

				break
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if useFile || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := rule.ValidateStruct(&cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	mu.Lock()
	globalConfig = cfg
	appViper = v
	mu.Unlock()

	reloadConfigs(v, cfg.Server.ReloadConfig && v.ConfigFileUsed() != "")

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var (
		serverConfig    ServerConfig
		dbConfig        DBConfig
		blobConfig      BlobConfig
		audioConfig     AudioConfig
		logConfig       LogConfig
		metricsConfig   MetricsConfig
		tracingConfig   TracingConfig
		rateLimitConfig RateLimitConfig
		cbConfig        CircuitBreakerConfig
		kvConfig        KVConfig
		mqConfig        MQConfig
		eventsConfig    EventsConfig
		reconcileConfig ReconcileConfig
	)

	serverConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	blobConfig.setDefaults(v)
	audioConfig.setDefaults(v)
	logConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
	rateLimitConfig.setDefaults(v)
	cbConfig.setDefaults(v)
	kvConfig.setDefaults(v)
	mqConfig.setDefaults(v)
	eventsConfig.setDefaults(v)
	reconcileConfig.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)

		var cfg AppConfig
		if err := v.Unmarshal(&cfg); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)
			return
		}

		if err := rule.ValidateStruct(&cfg); err != nil {
			fmt.Printf("Rejected reloaded config: %v\n", err)
			return
		}

		mu.Lock()
		globalConfig = cfg
		mu.Unlock()
	})
	v.WatchConfig()
}

// GetConfig 返回全局配置的快照.
func GetConfig() *AppConfig {
	mu.RLock()
	defer mu.RUnlock()

	cfg := globalConfig

	return &cfg
}

// GetViper 返回当前使用的 viper 实例，未初始化时为 nil.
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()

	return appViper
}
