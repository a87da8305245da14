package usecases

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/gin-gonic/gin/binding"
)

// ValidUsername reports whether username is 3-50 letters, digits, '_' or '-'
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type emailField struct {
	Email string `binding:"required,email"`
}

// validEmail applies the same rule gin uses on request bodies, so
// usecases called outside a handler see identical validation.
func validEmail(email string) bool {
	return binding.Validator.ValidateStruct(emailField{Email: email}) == nil
}

// detached keeps ctx values but survives cancellation, for writes that
// must land after the request gave up
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

// validTxID accepts a 32-byte hex id with or without the 0x prefix
func validTxID(txID string) bool {
	id := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(txID)), "0x")
	if len(id) != 64 {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
