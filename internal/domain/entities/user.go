package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// User is created on first successful email authentication
type User struct {
	ID            uuid.UUID   `json:"id"`
	Email         string      `json:"email"`
	Name          string      `json:"name"`
	Image         null.String `json:"image,omitempty"`
	CustodyUserID null.String `json:"-"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// SendOTPInput starts an email login
type SendOTPInput struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPInput completes an email login
type VerifyOTPInput struct {
	Email      string `json:"email" binding:"required,email"`
	OTPID      string `json:"otpId" binding:"required"`
	OTPCode    string `json:"otpCode" binding:"required"`
	UseSession bool   `json:"useSession"` // If true, store tokens in Redis and return SessionID
}

// OTPChallenge is the pending login returned by SendOTP
type OTPChallenge struct {
	OTPID string `json:"otpId"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	SessionID    string `json:"sessionId,omitempty"`
	User         *User  `json:"user"`
}
