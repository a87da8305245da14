package models

import (
	"time"

	"github.com/google/uuid"
)

type Wallet struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email             string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	OwnerUserID       string    `gorm:"type:varchar(255);not null;index"`
	Address           string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	PublicKey         string    `gorm:"type:varchar(66);not null"`
	EncryptedMnemonic *string   `gorm:"type:text"`
	CustodyHandle     *string   `gorm:"type:varchar(255)"`
	CreatedAt         time.Time
}
