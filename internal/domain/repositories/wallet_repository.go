package repositories

import (
	"context"

	"tipsats.backend/internal/domain/entities"
)

// WalletRepository stores one immutable wallet per email
type WalletRepository interface {
	Create(ctx context.Context, wallet *entities.Wallet) error
	GetByEmail(ctx context.Context, email string) (*entities.Wallet, error)
	GetByAddress(ctx context.Context, address string) (*entities.Wallet, error)
}
