package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/infrastructure/models"
)

// WalletRepository implements wallet data operations
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Create inserts a wallet. A second wallet for the same email or address
// yields ErrAlreadyExists.
func (r *WalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	if wallet.ID == uuid.Nil {
		id, err := newID()
		if err != nil {
			return err
		}
		wallet.ID = id
	}
	if wallet.CreatedAt.IsZero() {
		wallet.CreatedAt = time.Now()
	}

	m := &models.Wallet{
		ID:                wallet.ID,
		Email:             wallet.Email,
		OwnerUserID:       wallet.OwnerUserID,
		Address:           wallet.Address,
		PublicKey:         wallet.PublicKey,
		EncryptedMnemonic: wallet.EncryptedMnemonic.Ptr(),
		CustodyHandle:     wallet.CustodyHandle.Ptr(),
		CreatedAt:         wallet.CreatedAt,
	}

	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByEmail gets the wallet bound to an email
func (r *WalletRepository) GetByEmail(ctx context.Context, email string) (*entities.Wallet, error) {
	return r.first(ctx, "email = ?", email)
}

// GetByAddress gets a wallet by its chain address
func (r *WalletRepository) GetByAddress(ctx context.Context, address string) (*entities.Wallet, error) {
	return r.first(ctx, "address = ?", address)
}

func (r *WalletRepository) first(ctx context.Context, query string, args ...interface{}) (*entities.Wallet, error) {
	var m models.Wallet
	if err := GetDB(ctx, r.db).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *WalletRepository) toEntity(m *models.Wallet) *entities.Wallet {
	return &entities.Wallet{
		ID:                m.ID,
		Email:             m.Email,
		OwnerUserID:       m.OwnerUserID,
		Address:           m.Address,
		PublicKey:         m.PublicKey,
		EncryptedMnemonic: null.StringFromPtr(m.EncryptedMnemonic),
		CustodyHandle:     null.StringFromPtr(m.CustodyHandle),
		CreatedAt:         m.CreatedAt,
	}
}
