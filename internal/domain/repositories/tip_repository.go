package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"tipsats.backend/internal/domain/entities"
)

// TipRepository defines tip data operations.
// Status transitions only apply to rows that are still PENDING and return
// domainerrors.ErrTipSettled otherwise.
type TipRepository interface {
	Create(ctx context.Context, tip *entities.Tip) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Tip, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]*entities.Tip, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.Tip, error)
	AttachTransaction(ctx context.Context, id uuid.UUID, txHash, tipperAddress string) error
	MarkConfirmed(ctx context.Context, id uuid.UUID, txHash string) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

// UnitOfWork settles a tip atomically. Repository calls made with the ctx
// handed to fn join the same transaction, so a MarkConfirmed and the
// matching IncrementTotals commit or roll back together.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
