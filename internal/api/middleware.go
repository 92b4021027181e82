package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID tags the request context with the caller's X-Request-Id, or a fresh one.
func RequestID(logg *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(requestIDHeader, reqID)

		if logg != nil {
			c.Request = c.Request.WithContext(logg.WithRequestID(c.Request.Context(), reqID))
		}
		c.Next()
	}
}

func Logging(logg *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logg == nil {
			c.Next()
			return
		}

		ctx := logg.WithFields(c.Request.Context(), map[string]any{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		})
		c.Request = c.Request.WithContext(ctx)
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		ctx = logg.WithFields(ctx, map[string]any{
			"status":      status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if status >= http.StatusInternalServerError {
			logg.Warn(ctx, "request.complete")
			return
		}
		logg.Debug(ctx, "request.complete")
	}
}

func Recoverer(logg *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err := fmt.Errorf("panic: %v", rec)
				ctx := c.Request.Context()
				if logg != nil {
					logg.Error(logg.WithField(ctx, "panic", rec), "panic.recovered", err)
				}
				writeError(ctx, nil, c, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
			}
		}()
		c.Next()
	}
}
