package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/cuentia/backend/internal/domain/shared"
)

// SubscriptionStatus represents the lifecycle state of a subscription
type SubscriptionStatus string

const (
	SubscriptionTrialing SubscriptionStatus = "trialing"
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionPastDue  SubscriptionStatus = "past_due"
	SubscriptionCanceled SubscriptionStatus = "canceled"
)

// Subscription is the ledger row for one purchased (or trial) subscription.
// A canceled row is terminal: a later purchase creates a new row, and the
// account's current subscription is the most recently created one.
type Subscription struct {
	shared.BaseAggregateRoot
	AccountID uuid.UUID
	// ProcessorSubscriptionID references the processor subscription, or
	// ManualProcessorRef for manually managed subscriptions.
	ProcessorSubscriptionID string
	Status                  SubscriptionStatus
	PlanCode                string
	PlanPriceID             string
	CurrentPeriodEnd        *time.Time
	TrialEndsAt             *time.Time
	CanceledAt              *time.Time
	LastPaymentAt           *time.Time
	DiscountAppliedAt       *time.Time
	RetentionReason         string
	RetentionDetail         string
	// LastEventAt is the created timestamp of the newest processor event
	// applied to this row. Older events must not overwrite newer state.
	LastEventAt *time.Time
}

// NewSubscription creates a subscription row bound to a processor subscription.
func NewSubscription(accountID uuid.UUID, processorSubID string) *Subscription {
	return &Subscription{
		BaseAggregateRoot:       shared.NewBaseAggregateRoot(),
		AccountID:               accountID,
		ProcessorSubscriptionID: processorSubID,
		Status:                  SubscriptionActive,
	}
}

// NewTrialSubscription creates the signup trial: 30 days, no processor link.
func NewTrialSubscription(accountID uuid.UUID, now time.Time) *Subscription {
	ends := now.AddDate(0, 0, 30)
	return &Subscription{
		BaseAggregateRoot:       shared.NewBaseAggregateRoot(),
		AccountID:               accountID,
		ProcessorSubscriptionID: ManualProcessorRef,
		Status:                  SubscriptionTrialing,
		PlanCode:                PlanTrial,
		CurrentPeriodEnd:        &ends,
		TrialEndsAt:             &ends,
	}
}

// NewManualPlanSubscription creates an active manually paid plan row with a
// one month period, for accounts whose previous row is terminal or absent.
func NewManualPlanSubscription(accountID uuid.UUID, code string, now time.Time) *Subscription {
	ends := now.AddDate(0, 1, 0)
	return &Subscription{
		BaseAggregateRoot:       shared.NewBaseAggregateRoot(),
		AccountID:               accountID,
		ProcessorSubscriptionID: ManualProcessorRef,
		Status:                  SubscriptionActive,
		PlanCode:                code,
		PlanPriceID:             ManualProcessorRef,
		CurrentPeriodEnd:        &ends,
		LastPaymentAt:           &now,
	}
}

// IsManual reports whether the subscription is managed outside the processor.
func (s *Subscription) IsManual() bool {
	return s.ProcessorSubscriptionID == ManualProcessorRef
}

// IsExpired reports whether the paid-for period has lapsed.
func (s *Subscription) IsExpired(now time.Time) bool {
	return s.CurrentPeriodEnd != nil && s.CurrentPeriodEnd.Before(now)
}

// IsEntitled reports whether the subscription currently grants access.
func (s *Subscription) IsEntitled(now time.Time) bool {
	if s.Status != SubscriptionActive && s.Status != SubscriptionTrialing {
		return false
	}
	return !s.IsExpired(now)
}

// ApplySync copies processor-reported state onto the row. It returns false
// without mutating when eventAt is older than the last applied event.
func (s *Subscription) ApplySync(status SubscriptionStatus, currentPeriodEnd, trialEndsAt *time.Time, eventAt time.Time) bool {
	if s.LastEventAt != nil && eventAt.Before(*s.LastEventAt) {
		return false
	}
	s.Status = status
	s.CurrentPeriodEnd = currentPeriodEnd
	s.TrialEndsAt = trialEndsAt
	s.LastEventAt = &eventAt
	return true
}

// SetPlan records the plan the processor items resolved to.
func (s *Subscription) SetPlan(code, priceID string) {
	s.PlanCode = code
	s.PlanPriceID = priceID
}

// MarkPaid records a successful payment and extends the period.
func (s *Subscription) MarkPaid(periodEnd *time.Time, paidAt time.Time) {
	s.Status = SubscriptionActive
	if periodEnd != nil {
		s.CurrentPeriodEnd = periodEnd
	}
	s.LastPaymentAt = &paidAt
}

// Cancel transitions the row to its terminal state and stamps the time.
func (s *Subscription) Cancel(at time.Time) error {
	if s.Status == SubscriptionCanceled {
		return shared.ErrInvalidState
	}
	s.Status = SubscriptionCanceled
	s.CanceledAt = &at
	return nil
}

// ActivateManualPlan converts the row to an active manually paid plan with a
// one month period. Used when a transfer payment for a plan is approved.
func (s *Subscription) ActivateManualPlan(code string, now time.Time) error {
	if s.Status == SubscriptionActive {
		return shared.ErrAlreadyExists
	}
	if s.Status == SubscriptionCanceled {
		return shared.ErrInvalidState
	}
	ends := now.AddDate(0, 1, 0)
	s.ProcessorSubscriptionID = ManualProcessorRef
	s.Status = SubscriptionActive
	s.PlanCode = code
	s.PlanPriceID = ManualProcessorRef
	s.CurrentPeriodEnd = &ends
	s.LastPaymentAt = &now
	return nil
}

// ChangeManualPlan switches a manually paid subscription to another plan and
// extends the period by one month.
func (s *Subscription) ChangeManualPlan(code string, now time.Time) error {
	if !s.IsManual() {
		return shared.ErrInvalidState
	}
	ends := now.AddDate(0, 1, 0)
	s.PlanCode = code
	s.Status = SubscriptionActive
	s.CurrentPeriodEnd = &ends
	return nil
}

// ApplyRetentionDiscount stamps the one-time retention discount audit fields.
func (s *Subscription) ApplyRetentionDiscount(reason, detail string, at time.Time) error {
	if s.DiscountAppliedAt != nil {
		return shared.NewDomainError("DISCOUNT_ALREADY_APPLIED", "Retention discount was already applied")
	}
	s.DiscountAppliedAt = &at
	s.RetentionReason = reason
	s.RetentionDetail = detail
	return nil
}

// MapProcessorStatus converts a processor-reported status string to a
// SubscriptionStatus. Delinquent intermediate states collapse to past_due and
// terminal ones to canceled.
func MapProcessorStatus(raw string) SubscriptionStatus {
	switch raw {
	case "trialing":
		return SubscriptionTrialing
	case "active":
		return SubscriptionActive
	case "canceled", "incomplete_expired":
		return SubscriptionCanceled
	default:
		return SubscriptionPastDue
	}
}
