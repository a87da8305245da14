package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/domain/repositories"
	"tipsats.backend/pkg/jwt"
	"tipsats.backend/pkg/logger"
	"tipsats.backend/pkg/redis"
)

// AuthUsecase handles email OTP login and token issuance
type AuthUsecase struct {
	userRepo     repositories.UserRepository
	otp          OTPProvider
	challenges   OTPChallengeStore
	jwtService   *jwt.JWTService
	sessionStore SessionStore
	sessionTTL   time.Duration
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	otp OTPProvider,
	challenges OTPChallengeStore,
	jwtService *jwt.JWTService,
	sessionStore SessionStore,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:     userRepo,
		otp:          otp,
		challenges:   challenges,
		jwtService:   jwtService,
		sessionStore: sessionStore,
		sessionTTL:   DefaultSessionTTL,
	}
}

// SendOTP emails a one-time code
func (u *AuthUsecase) SendOTP(ctx context.Context, input *entities.SendOTPInput) (*entities.OTPChallenge, error) {
	email := normalizeEmail(input.Email)
	if !validEmail(email) {
		return nil, domainerrors.BadRequest("Invalid email address")
	}
	if u.otp == nil || u.challenges == nil {
		return nil, errLoginNotConfigured()
	}

	otpID, err := u.otp.InitOTP(ctx, email)
	if err != nil {
		logger.Error(ctx, "Failed to send OTP", zap.Error(err))
		return nil, domainerrors.NewAppError(http.StatusInternalServerError, domainerrors.CodeCustodyFailed, "Failed to send verification code", err)
	}
	if err := u.challenges.SaveChallenge(ctx, otpID, email); err != nil {
		logger.Error(ctx, "Failed to record OTP challenge", zap.Error(err))
		return nil, domainerrors.InternalError(err)
	}
	return &entities.OTPChallenge{OTPID: otpID}, nil
}

// VerifyOTP checks a code, upserts the user and issues tokens
func (u *AuthUsecase) VerifyOTP(ctx context.Context, input *entities.VerifyOTPInput) (*entities.AuthResponse, error) {
	email := normalizeEmail(input.Email)
	if !validEmail(email) || input.OTPID == "" || input.OTPCode == "" {
		return nil, domainerrors.BadRequest("Email, otpId and otpCode are required")
	}
	if u.otp == nil || u.challenges == nil {
		return nil, errLoginNotConfigured()
	}

	// The provider only knows otp ids, so the id must have been issued to
	// this email by SendOTP.
	if err := u.checkChallenge(ctx, u.challenges.LookupChallenge, input.OTPID, email); err != nil {
		return nil, err
	}

	session, err := u.otp.VerifyOTP(ctx, input.OTPID, input.OTPCode)
	if err != nil {
		var remote *domainerrors.RemoteActivityError
		if errors.As(err, &remote) {
			return nil, errInvalidCode()
		}
		return nil, err
	}

	// Redeem once. A concurrent verify of the same id loses here.
	if err := u.checkChallenge(ctx, u.challenges.ConsumeChallenge, input.OTPID, email); err != nil {
		return nil, err
	}

	user, err := u.upsertUser(ctx, email, session.UserID)
	if err != nil {
		return nil, err
	}

	tokenPair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if !input.UseSession {
		return &entities.AuthResponse{
			AccessToken:  tokenPair.AccessToken,
			RefreshToken: tokenPair.RefreshToken,
			User:         user,
		}, nil
	}

	if u.sessionStore == nil {
		return nil, errors.New("session store is not configured")
	}
	sessionID := uuid.NewString()
	if err := u.sessionStore.CreateSession(ctx, sessionID, &redis.SessionData{
		UserID:       user.ID.String(),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
	}, u.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store session in redis: %w", err)
	}
	return &entities.AuthResponse{SessionID: sessionID, User: user}, nil
}

func (u *AuthUsecase) upsertUser(ctx context.Context, email, custodyUserID string) (*entities.User, error) {
	user, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil {
		if custodyUserID == "" || user.CustodyUserID.String == custodyUserID {
			return user, nil
		}
		// A custody id is bound once. A different one means the code was
		// issued for some other account.
		if user.CustodyUserID.Valid && user.CustodyUserID.String != "" {
			logger.Warn(ctx, "OTP session belongs to another custody user",
				zap.String("user_id", user.ID.String()),
			)
			return nil, errInvalidCode()
		}
		user.CustodyUserID = null.StringFrom(custodyUserID)
		if err := u.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	user = &entities.User{
		Email: email,
		Name:  strings.SplitN(email, "@", 2)[0],
	}
	if custodyUserID != "" {
		user.CustodyUserID = null.StringFrom(custodyUserID)
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return u.userRepo.GetByEmail(ctx, email)
		}
		return nil, err
	}
	logger.Info(ctx, "User created", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (u *AuthUsecase) checkChallenge(ctx context.Context, read func(context.Context, string) (string, error), otpID, email string) error {
	bound, err := read(ctx, otpID)
	if errors.Is(err, redis.ErrOTPChallengeNotFound) {
		return errInvalidCode()
	}
	if err != nil {
		return domainerrors.InternalError(err)
	}
	if bound != email {
		logger.Warn(ctx, "OTP id presented for a different email", zap.String("otp_id", otpID))
		return errInvalidCode()
	}
	return nil
}

func errInvalidCode() error {
	return domainerrors.Unauthorized("Invalid or expired verification code")
}

func errLoginNotConfigured() error {
	return domainerrors.NewAppError(http.StatusServiceUnavailable, domainerrors.CodeCustodyFailed, "Email login is not configured", domainerrors.ErrForbidden)
}

// RefreshToken generates new tokens from a refresh token
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	// Get current user to ensure still valid
	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	return u.jwtService.GenerateTokenPair(user.ID, user.Email)
}

// GetUserByID gets a user by ID
func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}
