package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cuentia/backend/internal/domain/billing"
	"github.com/cuentia/backend/internal/domain/shared"
	"github.com/cuentia/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRecordRepository implements PaymentRecordRepository using GORM
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// FindByInvoiceID finds a payment record by its unique invoice reference
func (r *GormPaymentRecordRepository) FindByInvoiceID(ctx context.Context, invoiceID string) (*billing.PaymentRecord, error) {
	var model models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListByProcessorSubID returns a subscription's payment history, newest first
func (r *GormPaymentRecordRepository) ListByProcessorSubID(ctx context.Context, processorSubID string) ([]billing.PaymentRecord, error) {
	var recordModels []models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("processor_subscription_id = ?", processorSubID).
		Order("created_at DESC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]billing.PaymentRecord, 0, len(recordModels))
	for i := range recordModels {
		records = append(records, *recordModels[i].ToDomain())
	}
	return records, nil
}

// CountPaidByProcessorSubID counts a subscription's settled invoices
func (r *GormPaymentRecordRepository) CountPaidByProcessorSubID(ctx context.Context, processorSubID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentRecordModel{}).
		Where("processor_subscription_id = ? AND status = ?", processorSubID, billing.PaymentPaid).
		Count(&count).Error
	return count, err
}

// Save creates or updates a payment record
func (r *GormPaymentRecordRepository) Save(ctx context.Context, record *billing.PaymentRecord) error {
	var model models.PaymentRecordModel
	model.FromDomain(record)
	return r.db.WithContext(ctx).Save(&model).Error
}
