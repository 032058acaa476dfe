package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cuentia/backend/internal/domain/billing"
	"github.com/cuentia/backend/internal/domain/shared"
	"github.com/cuentia/backend/internal/infrastructure/persistence/models"
)

// GormUsageRepository implements UsageRepository using GORM
type GormUsageRepository struct {
	db *gorm.DB
}

// NewGormUsageRepository creates a new GormUsageRepository
func NewGormUsageRepository(db *gorm.DB) *GormUsageRepository {
	return &GormUsageRepository{db: db}
}

// Find finds the counter for one account, feature and period bucket
func (r *GormUsageRepository) Find(ctx context.Context, accountID uuid.UUID, feature billing.Feature, period string) (*billing.UsageCounter, error) {
	var model models.UsageCounterModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND feature = ? AND period = ?", accountID, feature, period).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a counter
func (r *GormUsageRepository) Save(ctx context.Context, counter *billing.UsageCounter) error {
	var model models.UsageCounterModel
	model.FromDomain(counter)
	return r.db.WithContext(ctx).Save(&model).Error
}
