package redis

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"tipsats.backend/pkg/crypto"
)

const sessionKeyPrefix = "tipsats:session:"

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found")

// SessionData is what a session cookie resolves to. Tokens are sealed at rest.
type SessionData struct {
	UserID       string    `json:"userId,omitempty"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	IssuedAt     time.Time `json:"issuedAt"`
}

// SessionStore keeps AES-GCM sealed sessions in Redis
type SessionStore struct {
	key []byte
}

var (
	setSessionValue = Set
	getSessionValue = Get
	delSessionValue = Del
)

// NewSessionStore takes the 32-byte key as 64 hex chars.
func NewSessionStore(encryptionKeyHex string) (*SessionStore, error) {
	key, err := hex.DecodeString(encryptionKeyHex)
	if err != nil {
		return nil, errors.New("invalid session encryption key hex")
	}
	if len(key) != 32 {
		return nil, errors.New("session encryption key must be 32 bytes (64 hex chars)")
	}
	return &SessionStore{key: key}, nil
}

func (s *SessionStore) CreateSession(ctx context.Context, sessionID string, data *SessionData, expiration time.Duration) error {
	if data.IssuedAt.IsZero() {
		data.IssuedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	sealed, err := crypto.SealWithKey(raw, s.key)
	if err != nil {
		return err
	}
	return setSessionValue(ctx, sessionKeyPrefix+sessionID, sealed, expiration)
}

// GetSession maps a miss to ErrSessionNotFound. A value that no longer
// opens under the current key is treated the same way.
func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	sealed, err := getSessionValue(ctx, sessionKeyPrefix+sessionID)
	if IsMiss(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	raw, err := crypto.OpenWithKey(sealed, s.key)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	var data SessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, sessionID string) error {
	return delSessionValue(ctx, sessionKeyPrefix+sessionID)
}
