package billing

import (
	"context"

	"go.uber.org/zap"

	"github.com/cuentia/backend/internal/domain/billing"
	"github.com/cuentia/backend/internal/domain/shared"
)

// PaymentFailureNotifier consumes recorded payment outcomes from the event bus
// and pushes a user-facing notification for failed invoice attempts. Settled
// invoices are already announced through the plan notifications.
type PaymentFailureNotifier struct {
	notifier billing.Notifier
	logger   *zap.Logger
}

// NewPaymentFailureNotifier creates a new PaymentFailureNotifier
func NewPaymentFailureNotifier(notifier billing.Notifier, logger *zap.Logger) *PaymentFailureNotifier {
	return &PaymentFailureNotifier{
		notifier: notifier,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *PaymentFailureNotifier) EventTypes() []string {
	return []string{EventTypePaymentRecorded}
}

// Handle reacts to a payment outcome event
func (h *PaymentFailureNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	payment, ok := event.(*PaymentEvent)
	if !ok {
		return nil
	}
	if payment.Outcome != "failed" {
		return nil
	}

	h.notifier.PaymentFailed(ctx, payment.AccountID(), payment.InvoiceID)

	h.logger.Debug("Payment failure notification dispatched",
		zap.String("account_id", payment.AccountID().String()),
		zap.String("invoice_id", payment.InvoiceID))

	return nil
}

var _ shared.EventHandler = (*PaymentFailureNotifier)(nil)
