package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/interfaces/http/middleware"
	"tipsats.backend/internal/interfaces/http/response"
	"tipsats.backend/internal/usecases"
	"tipsats.backend/pkg/jwt"
	"tipsats.backend/pkg/logger"
)

const (
	accessCookieMaxAge  = 3600 * 24
	refreshCookieMaxAge = 3600 * 24 * 7
	refreshTokenCookie  = "refresh_token"
)

type authService interface {
	SendOTP(ctx context.Context, input *entities.SendOTPInput) (*entities.OTPChallenge, error)
	VerifyOTP(ctx context.Context, input *entities.VerifyOTPInput) (*entities.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

type sessionDeleter interface {
	DeleteSession(ctx context.Context, sessionID string) error
}

// AuthHandler handles email OTP login endpoints
type AuthHandler struct {
	authUsecase authService
	sessions    sessionDeleter
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase *usecases.AuthUsecase, sessions sessionDeleter) *AuthHandler {
	h := &AuthHandler{sessions: sessions}
	if authUsecase != nil {
		h.authUsecase = authUsecase
	}
	return h
}

// SendOTP emails a one-time code
// POST /api/v1/auth/send-otp
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var input entities.SendOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Email is required"))
		return
	}

	challenge, err := h.authUsecase.SendOTP(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"otpId": challenge.OTPID})
}

// VerifyOTP completes the login and issues tokens or a session
// POST /api/v1/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var input entities.VerifyOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Email, otpId and otpCode are required"))
		return
	}

	auth, err := h.authUsecase.VerifyOTP(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	if auth.SessionID != "" {
		response.Success(c, http.StatusOK, gin.H{
			"userId":    auth.User.ID,
			"sessionId": auth.SessionID,
			"user":      auth.User,
		})
		return
	}

	c.SetCookie(middleware.AccessTokenCookie, auth.AccessToken, accessCookieMaxAge, "/", "", false, true)
	c.SetCookie(refreshTokenCookie, auth.RefreshToken, refreshCookieMaxAge, "/", "", false, true)

	response.Success(c, http.StatusOK, gin.H{
		"userId":       auth.User.ID,
		"accessToken":  auth.AccessToken,
		"refreshToken": auth.RefreshToken,
		"user":         auth.User,
	})
}

// RefreshToken handles token refresh
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var refreshToken string

	if c.Request.ContentLength > 0 {
		var input struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&input); err == nil {
			refreshToken = input.RefreshToken
		}
	}
	if refreshToken == "" {
		if cookie, err := c.Cookie(refreshTokenCookie); err == nil {
			refreshToken = cookie
		}
	}
	if refreshToken == "" {
		response.Error(c, domainerrors.BadRequest("Refresh token is required"))
		return
	}

	tokenPair, err := h.authUsecase.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		response.Error(c, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeUnauthorized, "Invalid or expired refresh token", err))
		return
	}

	c.SetCookie(middleware.AccessTokenCookie, tokenPair.AccessToken, accessCookieMaxAge, "/", "", false, true)
	c.SetCookie(refreshTokenCookie, tokenPair.RefreshToken, refreshCookieMaxAge, "/", "", false, true)

	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  tokenPair.AccessToken,
		"refreshToken": tokenPair.RefreshToken,
	})
}

// GetMe returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	user, err := h.authUsecase.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			response.Error(c, domainerrors.NotFound("User not found"))
			return
		}
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// Logout drops the server-side session and clears auth cookies
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID := c.GetHeader(middleware.SessionIDHeader); sessionID != "" && h.sessions != nil {
		if err := h.sessions.DeleteSession(c.Request.Context(), sessionID); err != nil {
			logger.Warn(c.Request.Context(), "Failed to delete session", zap.Error(err))
		}
	}

	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", false, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", false, true)

	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}
