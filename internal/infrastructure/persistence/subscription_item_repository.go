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

// GormSubscriptionItemRepository implements SubscriptionItemRepository using GORM
type GormSubscriptionItemRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionItemRepository creates a new GormSubscriptionItemRepository
func NewGormSubscriptionItemRepository(db *gorm.DB) *GormSubscriptionItemRepository {
	return &GormSubscriptionItemRepository{db: db}
}

// FindBySubscription returns all items of a subscription
func (r *GormSubscriptionItemRepository) FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]billing.SubscriptionItem, error) {
	var itemModels []models.SubscriptionItemModel
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toDomainItems(itemModels), nil
}

// FindActiveBySubscription returns the active items of a subscription
func (r *GormSubscriptionItemRepository) FindActiveBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]billing.SubscriptionItem, error) {
	var itemModels []models.SubscriptionItemModel
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ? AND active = ?", subscriptionID, true).
		Order("created_at ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}
	return toDomainItems(itemModels), nil
}

// FindByProcessorItemID finds an item by its processor line item reference
func (r *GormSubscriptionItemRepository) FindByProcessorItemID(ctx context.Context, subscriptionID uuid.UUID, processorItemID string) (*billing.SubscriptionItem, error) {
	var model models.SubscriptionItemModel
	if err := r.db.WithContext(ctx).
		Where("subscription_id = ? AND processor_item_id = ?", subscriptionID, processorItemID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a subscription item
func (r *GormSubscriptionItemRepository) Save(ctx context.Context, item *billing.SubscriptionItem) error {
	var model models.SubscriptionItemModel
	model.FromDomain(item)
	return r.db.WithContext(ctx).Save(&model).Error
}

// DeactivateAll clears the active flag on every item of the subscription
func (r *GormSubscriptionItemRepository) DeactivateAll(ctx context.Context, subscriptionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.SubscriptionItemModel{}).
		Where("subscription_id = ?", subscriptionID).
		Update("active", false).Error
}

func toDomainItems(itemModels []models.SubscriptionItemModel) []billing.SubscriptionItem {
	items := make([]billing.SubscriptionItem, 0, len(itemModels))
	for i := range itemModels {
		items = append(items, *itemModels[i].ToDomain())
	}
	return items
}
