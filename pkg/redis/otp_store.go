package redis

import (
	"context"
	"errors"
	"strings"
	"time"
)

const otpKeyPrefix = "tipsats:otp:"

// ErrOTPChallengeNotFound means the otp id was never issued here, was
// already redeemed, or expired.
var ErrOTPChallengeNotFound = errors.New("otp challenge not found")

// OTPChallengeStore binds each issued otp id to the email it was sent to.
type OTPChallengeStore struct {
	ttl time.Duration
}

func NewOTPChallengeStore(ttl time.Duration) *OTPChallengeStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPChallengeStore{ttl: ttl}
}

func (s *OTPChallengeStore) SaveChallenge(ctx context.Context, otpID, email string) error {
	return Set(ctx, otpKeyPrefix+otpID, strings.ToLower(email), s.ttl)
}

// LookupChallenge returns the bound email without redeeming it
func (s *OTPChallengeStore) LookupChallenge(ctx context.Context, otpID string) (string, error) {
	email, err := Get(ctx, otpKeyPrefix+otpID)
	if IsMiss(err) {
		return "", ErrOTPChallengeNotFound
	}
	return email, err
}

// ConsumeChallenge returns the bound email and removes the binding.
func (s *OTPChallengeStore) ConsumeChallenge(ctx context.Context, otpID string) (string, error) {
	email, err := GetDel(ctx, otpKeyPrefix+otpID)
	if IsMiss(err) {
		return "", ErrOTPChallengeNotFound
	}
	return email, err
}
