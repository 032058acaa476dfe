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

// GormAccountDirectory implements AccountDirectory over the identity
// subsystem's accounts table. The billing core only reads it.
type GormAccountDirectory struct {
	db *gorm.DB
}

// NewGormAccountDirectory creates a new GormAccountDirectory
func NewGormAccountDirectory(db *gorm.DB) *GormAccountDirectory {
	return &GormAccountDirectory{db: db}
}

// FindByID finds an account by its ID
func (d *GormAccountDirectory) FindByID(ctx context.Context, id uuid.UUID) (*billing.Account, error) {
	var model models.AccountModel
	if err := d.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}
