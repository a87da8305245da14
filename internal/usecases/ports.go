package usecases

import (
	"context"
	"time"

	"tipsats.backend/internal/infrastructure/blockchain"
	"tipsats.backend/internal/infrastructure/turnkey"
	"tipsats.backend/pkg/redis"
)

// StacksNode is the node API used by the wallet and tip flows
type StacksNode interface {
	GetAccount(ctx context.Context, address string) (*blockchain.AccountInfo, error)
	EstimateTransferFee(ctx context.Context, txLen int) (uint64, error)
	Broadcast(ctx context.Context, raw []byte) (string, error)
	GetTransactionStatus(ctx context.Context, txID string) (*blockchain.TxStatus, error)
}

// OTPProvider delivers and checks email one-time codes
type OTPProvider interface {
	InitOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, otpID, code string) (*turnkey.OTPSession, error)
}

// SessionStore keeps tokens server-side behind an opaque session id
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
}

// OTPChallengeStore remembers which email each otp id was issued to
type OTPChallengeStore interface {
	SaveChallenge(ctx context.Context, otpID, email string) error
	LookupChallenge(ctx context.Context, otpID string) (string, error)
	ConsumeChallenge(ctx context.Context, otpID string) (string, error)
}
