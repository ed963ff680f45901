package handle

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/audiovault/pkg/internal/storage"
	"github.com/yeisme/audiovault/pkg/internal/types"
)

const timeout = 2 * time.Second

// Checker 单个组件的健康检查.
type Checker interface {
	Check(ctx context.Context, c storage.Component) error
}

// Health 返回指定组件的健康检查处理器. 未启用的组件返回 200 + disabled.
func Health(checker Checker, component storage.Component) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		resp := types.HealthResponse{Component: string(component), Status: "ok"}

		err := checker.Check(ctx, component)

		switch {
		case err == nil:
			c.JSON(http.StatusOK, resp)
		case errors.Is(err, storage.ErrDisabled):
			resp.Status = "disabled"
			c.JSON(http.StatusOK, resp)
		default:
			resp.Status = "unhealthy"
			resp.Error = err.Error()
			c.JSON(http.StatusServiceUnavailable, resp)
		}
	}
}
