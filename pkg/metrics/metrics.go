// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP、音频上传/删除、对账与运行时指标.
//
// Example:
//
//	if err := metrics.InitMetrics(cfg.Metrics); err != nil {
//		log.Fatal(err)
//	}
//
//	metrics.StartMetricsServer(cfg.Metrics, engine)
//	metrics.ObserveUpload(metrics.ResultOK, 1024)
package metrics

import (
	"net/http"
	"net/http/pprof"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/audiovault/pkg/configs"
)

// 结果标签取值.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 活跃连接数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of active connections",
		},
	)

	// AudioUploads 上传次数，按结果区分.
	AudioUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_uploads_total",
			Help: "Audio uploads by result",
		},
		[]string{"result"},
	)

	// AudioUploadBytes 成功上传的字节数.
	AudioUploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audio_upload_bytes_total",
			Help: "Bytes stored by successful audio uploads",
		},
	)

	// AudioDeletes 删除次数，按结果区分.
	AudioDeletes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_deletes_total",
			Help: "Audio deletes by result",
		},
		[]string{"result"},
	)

	// AudioOrphans 对账发现的孤儿数量.
	AudioOrphans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audio_orphans_total",
			Help: "Orphans found by reconciliation, by kind",
		},
		[]string{"kind"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()
	initOnce sync.Once
	enabled  bool
)

// InitMetrics 初始化Metrics，重复调用只生效一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	var err error

	initOnce.Do(func() {
		reg := prometheus.WrapRegistererWith(prometheus.Labels(config.Labels), registry)

		if config.RuntimeMetrics {
			if err = registry.Register(collectors.NewGoCollector()); err != nil {
				return
			}

			if err = registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
				return
			}
		}

		for _, c := range []prometheus.Collector{
			RequestCounter, RequestDuration, ActiveConnections,
			AudioUploads, AudioUploadBytes, AudioDeletes, AudioOrphans,
		} {
			if err = reg.Register(c); err != nil {
				return
			}
		}

		enabled = true
	})

	return err
}

// Enabled 返回指标是否已初始化.
func Enabled() bool { return enabled }

// StartMetricsServer 在 engine 上挂载 /metrics（以及可选的 pprof）.
// gorm 插件注册在默认注册表，这里一并暴露.
func StartMetricsServer(config configs.MetricsConfig, engine *gin.Engine) {
	if !config.Enabled {
		return
	}

	path := config.Path
	if path == "" {
		path = "/metrics"
	}

	gatherers := prometheus.Gatherers{registry, prometheus.DefaultGatherer}
	engine.GET(path, gin.WrapH(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})))

	if config.Pprof {
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		engine.GET("/debug/pprof/*any", gin.WrapH(mux))
	}
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

// ObserveUpload 记录一次上传.
func ObserveUpload(result string, bytes int64) {
	AudioUploads.WithLabelValues(result).Inc()

	if result == ResultOK && bytes > 0 {
		AudioUploadBytes.Add(float64(bytes))
	}
}

// ObserveDelete 记录一次删除.
func ObserveDelete(result string) {
	AudioDeletes.WithLabelValues(result).Inc()
}

// ObserveOrphans 记录对账发现的孤儿.
func ObserveOrphans(kind string, n int) {
	if n > 0 {
		AudioOrphans.WithLabelValues(kind).Add(float64(n))
	}
}
