package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// Creator is a tip recipient with a public profile.
// TotalTipsMicroSTX, TotalTipsUSD and TipCount only grow, and only when a
// tip is confirmed.
type Creator struct {
	ID                uuid.UUID       `json:"id"`
	UserID            uuid.UUID       `json:"userId"`
	Username          string          `json:"username"`
	DisplayName       string          `json:"displayName"`
	Bio               null.String     `json:"bio,omitempty"`
	AvatarURL         null.String     `json:"avatarUrl,omitempty"`
	StacksAddress     string          `json:"stacksAddress"`
	TotalTipsMicroSTX int64           `json:"totalTipsMicroStx"`
	TotalTipsUSD      decimal.Decimal `json:"totalTipsUsd"`
	TipCount          int             `json:"tipCount"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// RegisterCreatorInput represents input for creating a creator profile
type RegisterCreatorInput struct {
	Username      string `json:"username" binding:"required"`
	DisplayName   string `json:"displayName"`
	Bio           string `json:"bio"`
	StacksAddress string `json:"stacksAddress" binding:"required"`
}

// CreatorRegistration is returned after a successful registration
type CreatorRegistration struct {
	CreatorID uuid.UUID `json:"creatorId"`
	Username  string    `json:"username"`
	TipLink   string    `json:"tipLink"`
}

// CreatorProfile is the public view of a creator
type CreatorProfile struct {
	*Creator
	RecentTips []*Tip `json:"recentTips"`
}

// Dashboard is the authenticated creator's overview
type Dashboard struct {
	HasCreatorProfile bool     `json:"hasCreatorProfile"`
	Creator           *Creator `json:"creator"`
	RecentTips        []*Tip   `json:"recentTips"`
}
