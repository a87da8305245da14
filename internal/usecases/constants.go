package usecases

import (
	"regexp"
	"time"
)

// Listing sizes
const (
	ProfileRecentTipsLimit   = 10
	DashboardRecentTipsLimit = 20
)

// TipMemoFormat is written into the 34-byte transfer memo
const TipMemoFormat = "Tip from TipSats to @%s"

// DefaultSessionTTL bounds redis-backed login sessions
const DefaultSessionTTL = 7 * 24 * time.Hour

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)
