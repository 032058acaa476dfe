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

// GormManualPaymentRepository implements ManualPaymentRepository using GORM
type GormManualPaymentRepository struct {
	db *gorm.DB
}

// NewGormManualPaymentRepository creates a new GormManualPaymentRepository
func NewGormManualPaymentRepository(db *gorm.DB) *GormManualPaymentRepository {
	return &GormManualPaymentRepository{db: db}
}

// FindByID finds a request by its ID
func (r *GormManualPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.ManualPaymentRequest, error) {
	var model models.ManualPaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPendingByAccount finds the account's pending request, if any
func (r *GormManualPaymentRepository) FindPendingByAccount(ctx context.Context, accountID uuid.UUID) (*billing.ManualPaymentRequest, error) {
	var model models.ManualPaymentModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND status = ?", accountID, billing.ManualPaymentPending).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListAll returns all requests, newest first
func (r *GormManualPaymentRepository) ListAll(ctx context.Context) ([]billing.ManualPaymentRequest, error) {
	var requestModels []models.ManualPaymentModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&requestModels).Error; err != nil {
		return nil, err
	}
	requests := make([]billing.ManualPaymentRequest, 0, len(requestModels))
	for i := range requestModels {
		requests = append(requests, *requestModels[i].ToDomain())
	}
	return requests, nil
}

// Save creates or updates a request
func (r *GormManualPaymentRepository) Save(ctx context.Context, request *billing.ManualPaymentRequest) error {
	var model models.ManualPaymentModel
	model.FromDomain(request)
	return r.db.WithContext(ctx).Save(&model).Error
}
