package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Tip struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CreatorID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	TipperEmail    string          `gorm:"type:varchar(255);not null"`
	TipperAddress  *string         `gorm:"type:varchar(64)"`
	AmountMicroSTX int64           `gorm:"column:amount_micro_stx;not null"`
	AmountUSD      decimal.Decimal `gorm:"column:amount_usd;type:numeric(20,2);not null"`
	TxHash         *string         `gorm:"type:varchar(66);index"`
	Status         string          `gorm:"type:varchar(20);not null;index"`
	Message        *string         `gorm:"type:text"`
	CreatedAt      time.Time       `gorm:"index"`
	UpdatedAt      time.Time
}

// All returns every model for AutoMigrate
func All() []interface{} {
	return []interface{}{&User{}, &Wallet{}, &Creator{}, &Tip{}}
}
