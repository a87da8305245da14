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

// TipRepository implements tip data operations
type TipRepository struct {
	db *gorm.DB
}

// NewTipRepository creates a new tip repository
func NewTipRepository(db *gorm.DB) *TipRepository {
	return &TipRepository{db: db}
}

// Create records a tip attempt
func (r *TipRepository) Create(ctx context.Context, tip *entities.Tip) error {
	if tip.ID == uuid.Nil {
		id, err := newID()
		if err != nil {
			return err
		}
		tip.ID = id
	}
	now := time.Now()
	tip.CreatedAt = now
	tip.UpdatedAt = now
	if tip.Status == "" {
		tip.Status = entities.TipStatusPending
	}

	m := &models.Tip{
		ID:             tip.ID,
		CreatorID:      tip.CreatorID,
		TipperEmail:    tip.TipperEmail,
		TipperAddress:  tip.TipperAddress.Ptr(),
		AmountMicroSTX: tip.AmountMicroSTX,
		AmountUSD:      tip.AmountUSD,
		TxHash:         tip.TxHash.Ptr(),
		Status:         string(tip.Status),
		Message:        tip.Message.Ptr(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

// GetByID gets a tip by ID
func (r *TipRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Tip, error) {
	var m models.Tip
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// ListByCreator returns the newest tips of a creator
func (r *TipRepository) ListByCreator(ctx context.Context, creatorID uuid.UUID, limit int) ([]*entities.Tip, error) {
	var rows []models.Tip
	query := GetDB(ctx, r.db).Where("creator_id = ?", creatorID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toEntities(rows), nil
}

// ListStalePending returns PENDING tips created before olderThan, oldest first
func (r *TipRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]*entities.Tip, error) {
	var rows []models.Tip
	query := GetDB(ctx, r.db).
		Where("status = ? AND created_at < ?", string(entities.TipStatusPending), olderThan).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.toEntities(rows), nil
}

// AttachTransaction stores the signed transaction id on a pending tip
func (r *TipRepository) AttachTransaction(ctx context.Context, id uuid.UUID, txHash, tipperAddress string) error {
	return r.transition(ctx, id, map[string]interface{}{
		"tx_hash":        txHash,
		"tipper_address": tipperAddress,
	})
}

// MarkConfirmed moves a pending tip to CONFIRMED
func (r *TipRepository) MarkConfirmed(ctx context.Context, id uuid.UUID, txHash string) error {
	return r.transition(ctx, id, map[string]interface{}{
		"status":  string(entities.TipStatusConfirmed),
		"tx_hash": txHash,
	})
}

// MarkFailed moves a pending tip to FAILED and clears its tx hash
func (r *TipRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, map[string]interface{}{
		"status":  string(entities.TipStatusFailed),
		"tx_hash": nil,
	})
}

// transition applies updates only while the row is PENDING
func (r *TipRepository) transition(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	db := GetDB(ctx, r.db)
	updates["updated_at"] = time.Now()

	result := db.Model(&models.Tip{}).
		Where("id = ? AND status = ?", id, string(entities.TipStatusPending)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.Tip{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domainerrors.ErrNotFound
	}
	return domainerrors.ErrTipSettled
}

func (r *TipRepository) toEntities(rows []models.Tip) []*entities.Tip {
	tips := make([]*entities.Tip, 0, len(rows))
	for i := range rows {
		tips = append(tips, r.toEntity(&rows[i]))
	}
	return tips
}

func (r *TipRepository) toEntity(m *models.Tip) *entities.Tip {
	return &entities.Tip{
		ID:             m.ID,
		CreatorID:      m.CreatorID,
		TipperEmail:    m.TipperEmail,
		TipperAddress:  null.StringFromPtr(m.TipperAddress),
		AmountMicroSTX: m.AmountMicroSTX,
		AmountUSD:      m.AmountUSD,
		TxHash:         null.StringFromPtr(m.TxHash),
		Status:         entities.TipStatus(m.Status),
		Message:        null.StringFromPtr(m.Message),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
