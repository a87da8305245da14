package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Creator struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"`
	Username          string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	DisplayName       string          `gorm:"type:varchar(100);not null"`
	Bio               *string         `gorm:"type:text"`
	AvatarURL         *string         `gorm:"type:text"`
	StacksAddress     string          `gorm:"type:varchar(64);not null"`
	TotalTipsMicroSTX int64           `gorm:"column:total_tips_micro_stx;not null;default:0"`
	TotalTipsUSD      decimal.Decimal `gorm:"column:total_tips_usd;type:numeric(20,2);not null;default:0"`
	TipCount          int             `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
