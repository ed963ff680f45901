// Package api 组装对外的 HTTP 接口：/api/audio 与 /api/health.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/audiovault/pkg/configs"
	"github.com/yeisme/audiovault/pkg/internal/handle"
	"github.com/yeisme/audiovault/pkg/internal/router"
	"github.com/yeisme/audiovault/pkg/internal/service"
	"github.com/yeisme/audiovault/pkg/middleware"
)

// RegisterGroup 注册 /api 路由组到传入的 gin 引擎. 上传接口额外挂载请求体大小限制与上传限流.
func RegisterGroup(e *gin.Engine, config *configs.AppConfig, svc *service.AudioService, checker handle.Checker) *gin.Engine {
	g := e.Group("/api")

	router.RegisterAudioRoutes(g, handle.NewAudioHandlers(svc, config.Audio), router.Options{
		Upload: []gin.HandlerFunc{
			middleware.UploadRateLimitMiddleware(config.RateLimit),
			middleware.BodyLimitMiddleware(config.Audio.MaxRequestBytes()),
		},
	})
	router.RegisterHealthCheckRoute(g, checker)

	return e
}
