package billing

import (
	"github.com/google/uuid"

	"github.com/cuentia/backend/internal/domain/shared"
)

// ProcessorCustomer is the one-to-one mapping between an account and its
// customer object at the payment processor. The processor ID never changes
// once assigned.
type ProcessorCustomer struct {
	shared.BaseEntity
	AccountID           uuid.UUID
	ProcessorCustomerID string
}

// NewProcessorCustomer records a freshly created processor customer.
func NewProcessorCustomer(accountID uuid.UUID, processorCustomerID string) *ProcessorCustomer {
	return &ProcessorCustomer{
		BaseEntity:          shared.NewBaseEntity(),
		AccountID:           accountID,
		ProcessorCustomerID: processorCustomerID,
	}
}
