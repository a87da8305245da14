package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"tipsats.backend/internal/domain/entities"
)

// CreatorRepository defines creator data operations
type CreatorRepository interface {
	Create(ctx context.Context, creator *entities.Creator) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Creator, error)
	GetByUsername(ctx context.Context, username string) (*entities.Creator, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Creator, error)
	// IncrementTotals adds a confirmed tip to the creator aggregates atomically
	IncrementTotals(ctx context.Context, id uuid.UUID, amountMicroSTX int64, amountUSD decimal.Decimal) error
}
