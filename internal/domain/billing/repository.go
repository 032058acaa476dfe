package billing

import (
	"context"

	"github.com/google/uuid"
)

// SubscriptionRepository persists subscription rows. Save must perform an
// optimistic compare-and-swap on Version for existing rows and return
// shared.ErrConcurrencyConflict when the row changed underneath the caller.
type SubscriptionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	// FindCurrentByAccount returns the most recently created row for the
	// account, regardless of status.
	FindCurrentByAccount(ctx context.Context, accountID uuid.UUID) (*Subscription, error)
	FindByProcessorID(ctx context.Context, processorSubID string) (*Subscription, error)
	Save(ctx context.Context, sub *Subscription) error
}

// SubscriptionItemRepository persists subscription items.
type SubscriptionItemRepository interface {
	FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]SubscriptionItem, error)
	FindActiveBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]SubscriptionItem, error)
	FindByProcessorItemID(ctx context.Context, subscriptionID uuid.UUID, processorItemID string) (*SubscriptionItem, error)
	Save(ctx context.Context, item *SubscriptionItem) error
	// DeactivateAll clears the active flag on every item of the subscription.
	DeactivateAll(ctx context.Context, subscriptionID uuid.UUID) error
}

// PaymentRecordRepository persists invoice outcomes.
type PaymentRecordRepository interface {
	FindByInvoiceID(ctx context.Context, invoiceID string) (*PaymentRecord, error)
	ListByProcessorSubID(ctx context.Context, processorSubID string) ([]PaymentRecord, error)
	CountPaidByProcessorSubID(ctx context.Context, processorSubID string) (int64, error)
	Save(ctx context.Context, record *PaymentRecord) error
}

// ManualPaymentRepository persists transfer payment requests.
type ManualPaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ManualPaymentRequest, error)
	FindPendingByAccount(ctx context.Context, accountID uuid.UUID) (*ManualPaymentRequest, error)
	// ListAll returns requests newest first for operator review.
	ListAll(ctx context.Context) ([]ManualPaymentRequest, error)
	Save(ctx context.Context, request *ManualPaymentRequest) error
}

// ProcessorCustomerRepository persists account to processor-customer mappings.
type ProcessorCustomerRepository interface {
	FindByAccount(ctx context.Context, accountID uuid.UUID) (*ProcessorCustomer, error)
	FindByProcessorCustomerID(ctx context.Context, processorCustomerID string) (*ProcessorCustomer, error)
	Save(ctx context.Context, customer *ProcessorCustomer) error
}

// UsageRepository persists usage counters.
type UsageRepository interface {
	Find(ctx context.Context, accountID uuid.UUID, feature Feature, period string) (*UsageCounter, error)
	Save(ctx context.Context, counter *UsageCounter) error
}
