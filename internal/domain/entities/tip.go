package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// TipStatus represents the settlement state of a tip
type TipStatus string

const (
	TipStatusPending   TipStatus = "PENDING"
	TipStatusConfirmed TipStatus = "CONFIRMED"
	TipStatusFailed    TipStatus = "FAILED"
)

// IsTerminal reports whether no further transition is allowed
func (s TipStatus) IsTerminal() bool {
	return s == TipStatusConfirmed || s == TipStatusFailed
}

// AnonymousTipper is recorded when the tipper did not identify
const AnonymousTipper = "anonymous"

// Tip is a single transfer attempt from a tipper to a creator
type Tip struct {
	ID             uuid.UUID       `json:"id"`
	CreatorID      uuid.UUID       `json:"creatorId"`
	TipperEmail    string          `json:"tipperEmail"`
	TipperAddress  null.String     `json:"tipperAddress,omitempty"`
	AmountMicroSTX int64           `json:"amountMicroStx"`
	AmountUSD      decimal.Decimal `json:"amountUsd"`
	TxHash         null.String     `json:"txHash,omitempty"`
	Status         TipStatus       `json:"status"`
	Message        null.String     `json:"message,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// SendTipInput represents input for sending a tip
type SendTipInput struct {
	RecipientAddress string          `json:"recipientAddress" binding:"required"`
	AmountUSD        decimal.Decimal `json:"amountUSD"`
	CreatorUsername  string          `json:"creatorUsername" binding:"required"`
	TipperEmail      string          `json:"tipperEmail" binding:"omitempty,email"`
	Message          string          `json:"message"`
}

// SendTipResult is returned after a tip was broadcast and recorded
type SendTipResult struct {
	TxID        string    `json:"txId"`
	TipID       uuid.UUID `json:"tipId"`
	ExplorerURL string    `json:"explorerUrl"`
}

// TxStatus is the chain-side view of a broadcast transaction
type TxStatus struct {
	TxID        string `json:"txId"`
	Status      string `json:"status"`
	BlockHeight int64  `json:"blockHeight,omitempty"`
	Fee         string `json:"fee,omitempty"`
	ExplorerURL string `json:"explorerUrl"`
}
