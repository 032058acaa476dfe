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

// GormSubscriptionRepository implements SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByID finds a subscription by its ID
func (r *GormSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindCurrentByAccount returns the account's most recently created row
func (r *GormSubscriptionRepository) FindCurrentByAccount(ctx context.Context, accountID uuid.UUID) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProcessorID finds a subscription by its processor reference
func (r *GormSubscriptionRepository) FindByProcessorID(ctx context.Context, processorSubID string) (*billing.Subscription, error) {
	var model models.SubscriptionModel
	if err := r.db.WithContext(ctx).
		Where("processor_subscription_id = ?", processorSubID).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a subscription. Updates compare-and-swap on the
// version column; a zero-row update of an existing row means another writer
// got there first.
func (r *GormSubscriptionRepository) Save(ctx context.Context, sub *billing.Subscription) error {
	var model models.SubscriptionModel
	model.FromDomain(sub)

	result := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("id = ? AND version = ?", sub.ID, sub.Version).
		Updates(map[string]interface{}{
			"account_id":                model.AccountID,
			"processor_subscription_id": model.ProcessorSubscriptionID,
			"status":                    model.Status,
			"plan_code":                 model.PlanCode,
			"plan_price_id":             model.PlanPriceID,
			"current_period_end":        model.CurrentPeriodEnd,
			"trial_ends_at":             model.TrialEndsAt,
			"canceled_at":               model.CanceledAt,
			"last_payment_at":           model.LastPaymentAt,
			"discount_applied_at":       model.DiscountAppliedAt,
			"retention_reason":          model.RetentionReason,
			"retention_detail":          model.RetentionDetail,
			"last_event_at":             model.LastEventAt,
			"version":                   sub.Version + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		sub.IncrementVersion()
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SubscriptionModel{}).
		Where("id = ?", sub.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return shared.ErrConcurrencyConflict
	}

	return r.db.WithContext(ctx).Create(&model).Error
}
