// Package middleware 提供中间件
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	actx "github.com/yeisme/audiovault/pkg/context"
	"github.com/yeisme/audiovault/pkg/internal/types"
	"github.com/yeisme/audiovault/pkg/log"
)

// HeaderRequestID 请求 ID 头.
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware 为请求分配 ID，并把带有 request_id 的 logger 放入请求 context.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		c.Header(HeaderRequestID, id)

		l := log.Logger().With().Str("request_id", id).Logger()
		ctx := actx.WithRequestID(c.Request.Context(), id)
		ctx = actx.WithLogger(ctx, l)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// BodyLimitMiddleware 限制请求体大小，超出后读取会返回 *http.MaxBytesError.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}

		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{Message: "request body too large"})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

		c.Next()
	}
}
