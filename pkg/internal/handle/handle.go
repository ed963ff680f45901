// Package handle 提供 HTTP 请求处理器，负责参数解析、错误映射与响应输出.
package handle

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	actx "github.com/yeisme/audiovault/pkg/context"
	"github.com/yeisme/audiovault/pkg/internal/service"
	"github.com/yeisme/audiovault/pkg/internal/types"
)

// DefaultHandler 未实现的路由.
func DefaultHandler(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, types.ErrorResponse{Message: "Not Implemented"})
}

// statusOf 把服务层错误映射为 HTTP 状态码.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrAdmission):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, service.ErrSizeLimit):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError 输出 {"message": ...}. 详细错误只进日志.
func abortWithError(c *gin.Context, err error) {
	status := statusOf(err)

	if status >= http.StatusInternalServerError {
		l := actx.Logger(c.Request.Context())
		l.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, types.ErrorResponse{Message: service.PublicMessage(err)})
}

func abortWithMessage(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, types.ErrorResponse{Message: msg})
}

// baseURL 返回拼接下载地址用的前缀. 配置了 public 为准，否则按请求推断.
func baseURL(c *gin.Context, public string) string {
	if public != "" {
		return strings.TrimRight(public, "/")
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}

	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(p, ",")[0]))
	}

	host := c.Request.Host
	if h := c.GetHeader("X-Forwarded-Host"); h != "" {
		host = strings.TrimSpace(strings.Split(h, ",")[0])
	}

	return scheme + "://" + host
}
