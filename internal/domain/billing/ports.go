package billing

import (
	"context"

	"github.com/google/uuid"
)

// AccountKind distinguishes how an account was provisioned. Invited accounts
// come from an accountant's workspace and buy bots that stand in for a plan.
type AccountKind string

const (
	AccountIndividual AccountKind = "individual"
	AccountBusiness   AccountKind = "business"
	AccountInvited    AccountKind = "invited"
)

// Account is the slice of the identity record the billing core needs.
type Account struct {
	ID    uuid.UUID
	Email string
	Kind  AccountKind
}

// IsInvited reports whether the account was provisioned by invitation.
func (a *Account) IsInvited() bool {
	return a.Kind == AccountInvited
}

// AccountDirectory looks up accounts owned by the identity subsystem.
type AccountDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
}

// PaymentProcessor is the outbound port to the payment processor. Every
// method is a remote call; callers must not mutate local state before the
// call succeeds.
type PaymentProcessor interface {
	// CreateCustomer creates a processor customer and returns its ID.
	CreateCustomer(ctx context.Context, accountID uuid.UUID, email string) (string, error)

	// CancelSubscription cancels the processor subscription immediately,
	// without a closing invoice or proration.
	CancelSubscription(ctx context.Context, processorSubID string) error

	// UpdateSubscriptionPrice moves the subscription's single plan item to a
	// new price, prorating the difference.
	UpdateSubscriptionPrice(ctx context.Context, processorSubID, newPriceID string) error

	// ApplyCoupon attaches a coupon to the subscription.
	ApplyCoupon(ctx context.Context, processorSubID, couponID string) error

	// CreateCheckoutSession starts a hosted checkout and returns its URL.
	CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error)

	// CreatePortalSession opens the hosted billing portal and returns its URL.
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

// Notifier delivers user-facing billing notifications. Delivery transport is
// out of scope for the core; implementations may simply log.
type Notifier interface {
	PlanStarted(ctx context.Context, accountID uuid.UUID, planCode string)
	ManualPaymentReviewed(ctx context.Context, accountID uuid.UUID, code string, approved bool)
	PaymentFailed(ctx context.Context, accountID uuid.UUID, invoiceID string)
}
