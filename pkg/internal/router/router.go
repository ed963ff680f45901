// Package router 管理路由配置，将路径与处理器绑定到 gin 引擎.
package router

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/audiovault/pkg/internal/handle"
)

// AudioHandlers 定义由应用层注入的音频处理器. router 包只负责将路径和处理器绑定到 gin 引擎，
// 处理器的实现由 pkg/internal/handle 提供.
type AudioHandlers interface {
	Upload() gin.HandlerFunc
	List() gin.HandlerFunc
	Get() gin.HandlerFunc
	Delete() gin.HandlerFunc
	Download() gin.HandlerFunc
	Stream() gin.HandlerFunc
}

// Options 路由级别的中间件.
type Options struct {
	// Upload 仅作用于上传接口，例如请求体大小限制与上传限流.
	Upload []gin.HandlerFunc
}

// RegisterAudioRoutes 注册音频接口. handlers 为 nil 时全部返回 501.
//
//	POST   /upload          -> Upload
//	GET    /files           -> List
//	GET    /file/:uuid      -> Get
//	DELETE /files/:id       -> Delete
//	GET    /download/:uuid  -> Download
//	GET    /stream/:uuid    -> Stream
func RegisterAudioRoutes(g *gin.RouterGroup, handlers AudioHandlers, opts Options) {
	audio := g.Group("/audio")

	if handlers == nil {
		audio.Any("/*any", handle.DefaultHandler)
		return
	}

	upload := append(append([]gin.HandlerFunc{}, opts.Upload...), handlers.Upload())
	audio.POST("/upload", upload...)

	// 元数据接口压缩；文件字节接口不压缩，否则无法按字节范围读取
	meta := audio.Group("", gzip.Gzip(gzip.DefaultCompression))
	{
		meta.GET("/files", handlers.List())
		meta.GET("/file/:uuid", handlers.Get())
	}

	audio.DELETE("/files/:id", handlers.Delete())
	audio.GET("/download/:uuid", handlers.Download())
	audio.GET("/stream/:uuid", handlers.Stream())
}
