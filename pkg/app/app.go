// Package app 提供应用程序的初始化和配置功能.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/yeisme/audiovault/pkg/api"
	"github.com/yeisme/audiovault/pkg/cache"
	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/handle"
	"github.com/yeisme/audiovault/pkg/internal/jobs"
	"github.com/yeisme/audiovault/pkg/internal/service"
	"github.com/yeisme/audiovault/pkg/internal/storage"
	"github.com/yeisme/audiovault/pkg/log"
	"github.com/yeisme/audiovault/pkg/metrics"
	"github.com/yeisme/audiovault/pkg/middleware"
	"github.com/yeisme/audiovault/pkg/scheduler"
	"github.com/yeisme/audiovault/pkg/tracing"
)

// CachePrefix uuid 查询缓存的键前缀.
const CachePrefix = "audiovault:audio:"

// App 持有 HTTP 服务及其依赖，所有组件在 NewApp 中显式构造.
type App struct {
	Engine  *gin.Engine
	Service *service.AudioService
	Storage *storage.Manager

	config *configs.AppConfig
	sched  *scheduler.Scheduler
	server *http.Server
}

// NewApp 按已加载的配置初始化存储、服务、路由与定时任务.
func NewApp(ctx context.Context, config *configs.AppConfig) (*App, error) {
	if err := tracing.InitTracer(ctx, config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	var reg prometheus.Registerer
	if metrics.Enabled() {
		reg = metrics.GetRegistry()
	}

	manager, err := storage.New(ctx, config, storage.Options{Registerer: reg})
	if err != nil {
		return nil, err
	}

	svc := NewAudioService(config, manager)

	sched, err := scheduler.NewScheduler()
	if err != nil {
		_ = manager.Close()
		return nil, fmt.Errorf("init scheduler: %w", err)
	}

	if err := jobs.RegisterCronJobs(ctx, sched, svc, config.Reconcile); err != nil {
		_ = sched.Shutdown()
		_ = manager.Close()

		return nil, fmt.Errorf("register jobs: %w", err)
	}

	a := &App{
		Engine:  NewEngine(config, svc, manager),
		Service: svc,
		Storage: manager,
		config:  config,
		sched:   sched,
	}

	a.server = &http.Server{
		Addr:              config.Server.Addr(),
		Handler:           a.Engine,
		ReadHeaderTimeout: config.Server.GetTimeoutDuration(),
		// 不设置 WriteTimeout：大文件下载与流式播放耗时不可预期
		IdleTimeout: 2 * config.Server.GetTimeoutDuration(),
	}

	return a, nil
}

// NewAudioService 由存储管理器组装音频服务. KV 与 MQ 不可用时分别关闭缓存与事件.
func NewAudioService(config *configs.AppConfig, manager *storage.Manager) *service.AudioService {
	deps := service.Deps{
		Blob:   manager.Blob,
		Meta:   manager.Meta,
		Audio:  config.Audio,
		Events: config.Events,
	}

	if manager.KV != nil {
		deps.Cache = cache.NewCache(manager.KV, cache.WithPrefix(CachePrefix), cache.WithTTL(config.Audio.LookupCacheTTL))
	}

	if manager.MQ != nil {
		deps.Publisher = manager.MQ.Publisher()
	}

	return service.NewAudioService(deps)
}

// NewEngine 构造 gin 引擎并注册中间件与路由.
func NewEngine(config *configs.AppConfig, svc *service.AudioService, checker handle.Checker) *gin.Engine {
	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.TracingMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.CORSMiddleware(config.Server),
		middleware.RateLimitMiddleware(config.RateLimit),
		middleware.CircuitBreakerMiddleware(config.CircuitBreaker),
	)

	if metrics.Enabled() {
		engine.Use(middleware.PrometheusMiddleware())
	}

	api.RegisterGroup(engine, config, svc, checker)

	metrics.StartMetricsServer(config.Metrics, engine)

	return engine
}

// Run 启动 HTTP 服务与定时任务，ctx 结束后优雅关闭.
func (a *App) Run(ctx context.Context) error {
	l := log.Logger()

	a.sched.Start()

	errCh := make(chan error, 1)

	go func() {
		l.Info().Str("addr", a.server.Addr).Msg("http server listening")

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	var runErr error

	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Server.GetShutdownTimeout())
	defer cancel()

	l.Info().Msg("shutting down")

	return errors.Join(runErr, a.shutdown(shutdownCtx))
}

// Close 释放资源，不启动服务时使用.
func (a *App) Close(ctx context.Context) error {
	return a.shutdown(ctx)
}

func (a *App) shutdown(ctx context.Context) error {
	errs := []error{
		a.server.Shutdown(ctx),
		a.sched.Shutdown(),
		a.Storage.Close(),
		tracing.ShutdownTracer(ctx),
	}

	return errors.Join(errs...)
}
