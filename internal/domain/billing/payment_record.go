package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cuentia/backend/internal/domain/shared"
)

// PaymentStatus is the outcome recorded for a processor invoice.
type PaymentStatus string

const (
	PaymentPaid   PaymentStatus = "paid"
	PaymentFailed PaymentStatus = "failed"
)

// PaymentRecord is the ledger entry for one processor invoice. InvoiceID is
// unique; once a record is paid it stays paid, which is what makes replayed
// and out-of-order invoice events safe to drop.
type PaymentRecord struct {
	shared.BaseEntity
	InvoiceID               string
	ProcessorSubscriptionID string
	Amount                  decimal.Decimal
	Currency                string
	PeriodEnd               *time.Time
	Status                  PaymentStatus
}

// NewPaymentRecord creates a ledger entry for an invoice outcome.
func NewPaymentRecord(invoiceID, processorSubID string, amount decimal.Decimal, currency string, periodEnd *time.Time, status PaymentStatus) *PaymentRecord {
	return &PaymentRecord{
		BaseEntity:              shared.NewBaseEntity(),
		InvoiceID:               invoiceID,
		ProcessorSubscriptionID: processorSubID,
		Amount:                  amount,
		Currency:                currency,
		PeriodEnd:               periodEnd,
		Status:                  status,
	}
}

// IsPaid reports whether this invoice has already been settled.
func (r *PaymentRecord) IsPaid() bool {
	return r.Status == PaymentPaid
}
