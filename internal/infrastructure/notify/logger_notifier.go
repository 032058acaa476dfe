package notify

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cuentia/backend/internal/domain/billing"
)

// LoggerNotifier writes billing notifications to the structured log. Email and
// in-app delivery are owned by the notifications service, which tails these
// entries; the billing core only has to emit them.
type LoggerNotifier struct {
	logger *zap.Logger
}

// NewLoggerNotifier creates a new LoggerNotifier
func NewLoggerNotifier(logger *zap.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// PlanStarted records that a plan became active for an account
func (n *LoggerNotifier) PlanStarted(ctx context.Context, accountID uuid.UUID, planCode string) {
	n.logger.Info("Plan started",
		zap.String("account_id", accountID.String()),
		zap.String("plan_code", planCode),
	)
}

// ManualPaymentReviewed records the outcome of a manual payment review
func (n *LoggerNotifier) ManualPaymentReviewed(ctx context.Context, accountID uuid.UUID, code string, approved bool) {
	n.logger.Info("Manual payment reviewed",
		zap.String("account_id", accountID.String()),
		zap.String("code", code),
		zap.Bool("approved", approved),
	)
}

// PaymentFailed records that an invoice payment attempt failed
func (n *LoggerNotifier) PaymentFailed(ctx context.Context, accountID uuid.UUID, invoiceID string) {
	n.logger.Info("Payment failed",
		zap.String("account_id", accountID.String()),
		zap.String("invoice_id", invoiceID),
	)
}

var _ billing.Notifier = (*LoggerNotifier)(nil)
