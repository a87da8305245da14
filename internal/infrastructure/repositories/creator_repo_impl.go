package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"tipsats.backend/internal/domain/entities"
	domainerrors "tipsats.backend/internal/domain/errors"
	"tipsats.backend/internal/infrastructure/models"
)

// CreatorRepository implements creator data operations
type CreatorRepository struct {
	db *gorm.DB
}

// NewCreatorRepository creates a new creator repository
func NewCreatorRepository(db *gorm.DB) *CreatorRepository {
	return &CreatorRepository{db: db}
}

// Create creates a creator with zeroed aggregates
func (r *CreatorRepository) Create(ctx context.Context, creator *entities.Creator) error {
	if creator.ID == uuid.Nil {
		id, err := newID()
		if err != nil {
			return err
		}
		creator.ID = id
	}
	now := time.Now()
	creator.CreatedAt = now
	creator.UpdatedAt = now

	m := &models.Creator{
		ID:                creator.ID,
		UserID:            creator.UserID,
		Username:          creator.Username,
		DisplayName:       creator.DisplayName,
		Bio:               creator.Bio.Ptr(),
		AvatarURL:         creator.AvatarURL.Ptr(),
		StacksAddress:     creator.StacksAddress,
		TotalTipsMicroSTX: 0,
		TotalTipsUSD:      decimal.Zero,
		TipCount:          0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	creator.TotalTipsMicroSTX = 0
	creator.TotalTipsUSD = decimal.Zero
	creator.TipCount = 0
	return nil
}

// GetByID gets a creator by ID
func (r *CreatorRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Creator, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByUsername gets a creator by username
func (r *CreatorRepository) GetByUsername(ctx context.Context, username string) (*entities.Creator, error) {
	return r.first(ctx, "username = ?", username)
}

// GetByUserID gets the creator profile owned by a user
func (r *CreatorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Creator, error) {
	return r.first(ctx, "user_id = ?", userID)
}

// IncrementTotals adds one confirmed tip to the aggregates
func (r *CreatorRepository) IncrementTotals(ctx context.Context, id uuid.UUID, amountMicroSTX int64, amountUSD decimal.Decimal) error {
	result := GetDB(ctx, r.db).Model(&models.Creator{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_tips_micro_stx": gorm.Expr("total_tips_micro_stx + ?", amountMicroSTX),
			"total_tips_usd":       gorm.Expr("total_tips_usd + ?", amountUSD),
			"tip_count":            gorm.Expr("tip_count + ?", 1),
			"updated_at":           time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *CreatorRepository) first(ctx context.Context, query string, args ...interface{}) (*entities.Creator, error) {
	var m models.Creator
	if err := GetDB(ctx, r.db).Where(query, args...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *CreatorRepository) toEntity(m *models.Creator) *entities.Creator {
	return &entities.Creator{
		ID:                m.ID,
		UserID:            m.UserID,
		Username:          m.Username,
		DisplayName:       m.DisplayName,
		Bio:               null.StringFromPtr(m.Bio),
		AvatarURL:         null.StringFromPtr(m.AvatarURL),
		StacksAddress:     m.StacksAddress,
		TotalTipsMicroSTX: m.TotalTipsMicroSTX,
		TotalTipsUSD:      m.TotalTipsUSD,
		TipCount:          m.TipCount,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
