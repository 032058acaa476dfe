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

// GormProcessorCustomerRepository implements ProcessorCustomerRepository using GORM
type GormProcessorCustomerRepository struct {
	db *gorm.DB
}

// NewGormProcessorCustomerRepository creates a new GormProcessorCustomerRepository
func NewGormProcessorCustomerRepository(db *gorm.DB) *GormProcessorCustomerRepository {
	return &GormProcessorCustomerRepository{db: db}
}

// FindByAccount finds the mapping for an account
func (r *GormProcessorCustomerRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) (*billing.ProcessorCustomer, error) {
	var model models.ProcessorCustomerModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProcessorCustomerID finds the mapping for a processor customer
func (r *GormProcessorCustomerRepository) FindByProcessorCustomerID(ctx context.Context, processorCustomerID string) (*billing.ProcessorCustomer, error) {
	var model models.ProcessorCustomerModel
	if err := r.db.WithContext(ctx).
		Where("processor_customer_id = ?", processorCustomerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a mapping
func (r *GormProcessorCustomerRepository) Save(ctx context.Context, customer *billing.ProcessorCustomer) error {
	var model models.ProcessorCustomerModel
	model.FromDomain(customer)
	return r.db.WithContext(ctx).Save(&model).Error
}
