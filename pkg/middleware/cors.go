package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/audiovault/pkg/configs"
)

// CORSMiddleware CORS中间件. 播放器需要读取 Range 相关的响应头.
func CORSMiddleware(cfg configs.ServerConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = append(config.AllowHeaders, "Range", HeaderRequestID)
	config.ExposeHeaders = []string{
		"Accept-Ranges", "Content-Range", "Content-Length", "Content-Disposition", "ETag", HeaderRequestID,
	}

	if cfg.Debug {
		config.AllowAllOrigins = true
		config.AllowOrigins = nil
	}

	return cors.New(config)
}
