package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Wallet is the single custodial Stacks wallet bound to an email.
// Rows are written once and never updated.
type Wallet struct {
	ID                uuid.UUID   `json:"id"`
	Email             string      `json:"email"`
	OwnerUserID       string      `json:"userId"`
	Address           string      `json:"address"`
	PublicKey         string      `json:"publicKey"`
	EncryptedMnemonic null.String `json:"-"`
	CustodyHandle     null.String `json:"-"`
	CreatedAt         time.Time   `json:"createdAt"`
}

// IsRemote reports whether signing happens at the custody provider
func (w *Wallet) IsRemote() bool {
	return w.CustodyHandle.Valid && w.CustodyHandle.String != ""
}

// CreateWalletInput represents input for provisioning a wallet
type CreateWalletInput struct {
	Email  string `json:"email" binding:"required,email"`
	UserID string `json:"userId" binding:"required"`
}

// WalletBalance is the on-chain state of an address
type WalletBalance struct {
	Address         string `json:"address"`
	BalanceMicroSTX string `json:"balanceMicroStx"`
	BalanceSTX      string `json:"balanceStx"`
	Nonce           uint64 `json:"nonce"`
}
