package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"tipsats.backend/pkg/logger"
)

// LoggerMiddleware writes one structured line per request. Requests to
// skipPaths (health probes, scrapes) are not logged.
func LoggerMiddleware(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		if _, ok := skip[c.Request.URL.Path]; ok {
			return
		}

		ctx := c.Request.Context()
		if userID, ok := GetUserID(c); ok {
			ctx = logger.WithUserID(ctx, userID.String())
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		logger.LogRequest(ctx, logger.Request{
			Method:   c.Request.Method,
			Route:    route,
			Path:     path,
			Status:   c.Writer.Status(),
			Latency:  time.Since(start),
			ClientIP: c.ClientIP(),
			Bytes:    c.Writer.Size(),
			Errors:   c.Errors.ByType(gin.ErrorTypePrivate).String(),
		})
	}
}
