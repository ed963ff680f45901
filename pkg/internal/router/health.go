package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeisme/audiovault/pkg/internal/handle"
	"github.com/yeisme/audiovault/pkg/internal/storage"
)

// RegisterHealthCheckRoute 注册健康检查路由.
func RegisterHealthCheckRoute(g *gin.RouterGroup, checker handle.Checker) {
	healthRoutes := g.Group("/health")
	{
		healthRoutes.GET("/db", handle.Health(checker, storage.ComponentDB))
		healthRoutes.GET("/blob", handle.Health(checker, storage.ComponentBlob))
		healthRoutes.GET("/kv", handle.Health(checker, storage.ComponentKV))
		healthRoutes.GET("/mq", handle.Health(checker, storage.ComponentMQ))
	}
}
