package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tipsats.backend/pkg/crypto"
)

var testSessionKey = strings.Repeat("0f", 32)

func TestNewSessionStore(t *testing.T) {
	_, err := NewSessionStore("zz")
	assert.Error(t, err)

	_, err = NewSessionStore("0011")
	assert.Error(t, err)

	store, err := NewSessionStore(testSessionKey)
	require.NoError(t, err)
	assert.Len(t, store.key, 32)
}

func TestSessionStoreRoundTrip(t *testing.T) {
	srv := useMiniredis(t)
	store, err := NewSessionStore(testSessionKey)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, "sid-ok", &SessionData{
		UserID:       "user-1",
		AccessToken:  "access-tok",
		RefreshToken: "refresh-tok",
	}, time.Minute))

	stored, err := srv.Get(sessionKeyPrefix + "sid-ok")
	require.NoError(t, err)
	assert.NotContains(t, stored, "access-tok")

	data, err := store.GetSession(ctx, "sid-ok")
	require.NoError(t, err)
	assert.Equal(t, "user-1", data.UserID)
	assert.Equal(t, "access-tok", data.AccessToken)
	assert.Equal(t, "refresh-tok", data.RefreshToken)
	assert.False(t, data.IssuedAt.IsZero())

	require.NoError(t, store.DeleteSession(ctx, "sid-ok"))
	_, err = store.GetSession(ctx, "sid-ok")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreRejectsForeignKey(t *testing.T) {
	useMiniredis(t)
	ctx := context.Background()

	other, err := NewSessionStore(strings.Repeat("aa", 32))
	require.NoError(t, err)
	require.NoError(t, other.CreateSession(ctx, "sid-x", &SessionData{AccessToken: "a"}, time.Minute))

	store, err := NewSessionStore(testSessionKey)
	require.NoError(t, err)
	_, err = store.GetSession(ctx, "sid-x")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreInvalidPayload(t *testing.T) {
	useMiniredis(t)
	store, err := NewSessionStore(testSessionKey)
	require.NoError(t, err)

	sealed, err := crypto.SealWithKey([]byte("plain-text"), store.key)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, Set(ctx, sessionKeyPrefix+"sid-bad", sealed, time.Minute))

	_, err = store.GetSession(ctx, "sid-bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreBackendErrors(t *testing.T) {
	store, err := NewSessionStore(testSessionKey)
	require.NoError(t, err)

	origSet, origGet, origDel := setSessionValue, getSessionValue, delSessionValue
	t.Cleanup(func() {
		setSessionValue, getSessionValue, delSessionValue = origSet, origGet, origDel
	})
	boom := errors.New("redis down")
	setSessionValue = func(context.Context, string, interface{}, time.Duration) error { return boom }
	getSessionValue = func(context.Context, string) (string, error) { return "", boom }
	delSessionValue = func(context.Context, string) error { return boom }

	ctx := context.Background()
	assert.ErrorIs(t, store.CreateSession(ctx, "sid", &SessionData{}, time.Minute), boom)
	_, err = store.GetSession(ctx, "sid")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, store.DeleteSession(ctx, "sid"), boom)
}
