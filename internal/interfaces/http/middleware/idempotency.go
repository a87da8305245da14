package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"tipsats.backend/pkg/logger"
	"tipsats.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// IdempotencyHitHeader marks a replayed response
	IdempotencyHitHeader = "X-Idempotency-Hit"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 60 * time.Second
	// RetentionDuration is how long we keep the response
	RetentionDuration = 24 * time.Hour

	idempotencyProcessing = "processing"
	maxIdempotencyKeyLen  = 128
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// IdempotencyMiddleware replays the stored response of a request that
// already completed under the same Idempotency-Key. With required set,
// requests without a key are rejected.
func IdempotencyMiddleware(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"success": false,
					"code":    "IDEMPOTENCY_KEY_REQUIRED",
					"error":   IdempotencyHeader + " header is required",
				})
				return
			}
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"code":    "INVALID_INPUT",
				"error":   IdempotencyHeader + " is too long",
			})
			return
		}

		storageKey := idempotencyStorageKey(c, key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil && val == idempotencyProcessing:
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"code":    "IDEMPOTENCY_CONFLICT",
				"error":   "Request already in progress",
			})
			return
		case err == nil:
			var stored storedResponse
			if jsonErr := json.Unmarshal([]byte(val), &stored); jsonErr != nil || stored.Status == 0 {
				logger.Warn(ctx, "Discarding unreadable idempotent response", zap.String("key", storageKey))
				_ = redisDel(ctx, storageKey)
				break
			}
			c.Header(IdempotencyHitHeader, "true")
			c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
			c.Abort()
			return
		case !redis.IsMiss(err):
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, idempotencyProcessing, LockDuration)
		if err != nil || !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"success": false,
				"code":    "IDEMPOTENCY_CONFLICT",
				"error":   "Request already in progress",
			})
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		// only successful sends are replayed; anything else may be retried
		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			payload, _ := json.Marshal(storedResponse{Status: status, Body: w.body.Bytes()})
			if err := redisSet(ctx, storageKey, string(payload), RetentionDuration); err != nil {
				logger.Warn(ctx, "Failed to store idempotent response", zap.Error(err))
			}
			return
		}
		_ = redisDel(ctx, storageKey)
	}
}

func idempotencyStorageKey(c *gin.Context, key string) string {
	owner := "anon:" + c.ClientIP()
	if userID, ok := GetUserID(c); ok {
		owner = userID.String()
	}
	return fmt.Sprintf("idempotency:%s:%s:%s", c.FullPath(), owner, key)
}
