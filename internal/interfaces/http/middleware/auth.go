package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"tipsats.backend/pkg/jwt"
	"tipsats.backend/pkg/logger"
	"tipsats.backend/pkg/redis"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// SessionIDHeader carries an opaque redis-backed session id
	SessionIDHeader = "X-Session-Id"
	// AccessTokenCookie is the cookie set by the auth handlers
	AccessTokenCookie = "token"
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserEmailKey is the context key for user email
	UserEmailKey = "userEmail"
)

// SessionReader resolves a session id to the tokens stored for it
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
}

var errNoCredentials = errors.New("no credentials")

// AuthMiddleware rejects requests without a valid access token. The token
// is read from the session header, the Authorization header or the cookie,
// in that order.
func AuthMiddleware(jwtService *jwt.JWTService, sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authenticate(c, jwtService, sessions)
		if err != nil {
			logger.Debug(c.Request.Context(), "Authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"code":    "UNAUTHORIZED",
				"error":   authErrorMessage(err),
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Next()
	}
}

// OptionalAuth sets the caller identity when valid credentials are present
// and lets anonymous requests through
func OptionalAuth(jwtService *jwt.JWTService, sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := authenticate(c, jwtService, sessions); err == nil {
			c.Set(UserIDKey, claims.UserID)
			c.Set(UserEmailKey, claims.Email)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtService *jwt.JWTService, sessions SessionReader) (*jwt.Claims, error) {
	token, err := extractToken(c, sessions)
	if err != nil {
		return nil, err
	}
	return jwtService.ValidateAccessToken(token)
}

func extractToken(c *gin.Context, sessions SessionReader) (string, error) {
	if sessionID := c.GetHeader(SessionIDHeader); sessionID != "" && sessions != nil {
		session, err := sessions.GetSession(c.Request.Context(), sessionID)
		if err != nil {
			return "", err
		}
		return session.AccessToken, nil
	}

	if header := c.GetHeader(AuthorizationHeader); header != "" {
		if !strings.HasPrefix(header, BearerPrefix) {
			return "", errors.New("invalid authorization format")
		}
		return strings.TrimPrefix(header, BearerPrefix), nil
	}

	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, nil
	}
	return "", errNoCredentials
}

func authErrorMessage(err error) string {
	switch {
	case errors.Is(err, errNoCredentials):
		return "Authentication required"
	case errors.Is(err, jwt.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, redis.ErrSessionNotFound):
		return "Session expired"
	default:
		return "Invalid token"
	}
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUserEmail gets the user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}
