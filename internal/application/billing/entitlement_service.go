package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cuentia/backend/internal/domain/billing"
	"github.com/cuentia/backend/internal/domain/shared"
)

// Derived plan statuses reported to clients. "expired" never exists in the
// ledger; it is computed from the period end at read time.
const (
	PlanStatusActive   = "active"
	PlanStatusTrialing = "trialing"
	PlanStatusPastDue  = "past_due"
	PlanStatusExpired  = "expired"
	PlanStatusCanceled = "canceled"
)

// Payment methods derived for display.
const (
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
)

// Billing modes.
const (
	BillingModeManual    = "manual"
	BillingModeProcessor = "stripe"
)

// ActiveBot is an active bot entitlement on the current subscription.
type ActiveBot struct {
	Code     string `json:"code"`
	Quantity int64  `json:"quantity"`
}

// ActivePlan is the read model for the account's current plan.
type ActivePlan struct {
	Status           string     `json:"status"`
	PlanCode         string     `json:"plan_code"`
	PaymentMethod    string     `json:"payment_method,omitempty"`
	BillingMode      string     `json:"billing_mode"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	TrialEndsAt      *time.Time `json:"trial_ends_at,omitempty"`
	PaidMonths       int64      `json:"paid_months"`
	Bots             []ActiveBot `json:"bots"`
}

// EntitlementService answers what an account is currently entitled to.
type EntitlementService struct {
	subRepo     billing.SubscriptionRepository
	itemRepo    billing.SubscriptionItemRepository
	paymentRepo billing.PaymentRecordRepository
	catalog     *billing.Catalog
	logger      *zap.Logger
}

// NewEntitlementService creates a new EntitlementService
func NewEntitlementService(
	subRepo billing.SubscriptionRepository,
	itemRepo billing.SubscriptionItemRepository,
	paymentRepo billing.PaymentRecordRepository,
	catalog *billing.Catalog,
	logger *zap.Logger,
) *EntitlementService {
	return &EntitlementService{
		subRepo:     subRepo,
		itemRepo:    itemRepo,
		paymentRepo: paymentRepo,
		catalog:     catalog,
		logger:      logger,
	}
}

// GetActivePlan returns the derived view of the account's current
// subscription, or shared.ErrNotFound when the account never had one.
func (s *EntitlementService) GetActivePlan(ctx context.Context, accountID uuid.UUID) (*ActivePlan, error) {
	sub, err := s.subRepo.FindCurrentByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	plan := &ActivePlan{
		PlanCode:         sub.PlanCode,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
		TrialEndsAt:      sub.TrialEndsAt,
		Bots:             []ActiveBot{},
	}

	switch {
	case sub.Status == billing.SubscriptionCanceled:
		plan.Status = PlanStatusCanceled
	case sub.Status == billing.SubscriptionPastDue:
		plan.Status = PlanStatusPastDue
	case sub.IsExpired(now):
		plan.Status = PlanStatusExpired
	case sub.Status == billing.SubscriptionTrialing:
		plan.Status = PlanStatusTrialing
	default:
		plan.Status = PlanStatusActive
	}

	if sub.IsManual() {
		plan.BillingMode = BillingModeManual
	} else {
		plan.BillingMode = BillingModeProcessor
	}

	// Trials have no payment method yet.
	if sub.Status != billing.SubscriptionTrialing {
		if sub.IsManual() {
			plan.PaymentMethod = PaymentMethodTransfer
		} else {
			plan.PaymentMethod = PaymentMethodCard
		}
	}

	// Manually paid subscriptions share a sentinel processor reference, so
	// invoice counts only mean something for processor subscriptions.
	if !sub.IsManual() {
		paid, err := s.paymentRepo.CountPaidByProcessorSubID(ctx, sub.ProcessorSubscriptionID)
		if err != nil {
			return nil, fmt.Errorf("failed to count paid invoices: %w", err)
		}
		plan.PaidMonths = paid
	}

	items, err := s.itemRepo.FindActiveBySubscription(ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	for _, item := range items {
		if item.ItemType == billing.ItemTypeBot || isBotCode(item.Code) {
			plan.Bots = append(plan.Bots, ActiveBot{Code: item.Code, Quantity: item.Quantity})
		}
	}

	return plan, nil
}

// HasActiveSubscription reports whether the account currently holds an
// entitled (active or trialing, unexpired) subscription.
func (s *EntitlementService) HasActiveSubscription(ctx context.Context, accountID uuid.UUID) (bool, error) {
	sub, err := s.subRepo.FindCurrentByAccount(ctx, accountID)
	if err != nil {
		if err == shared.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return sub.IsEntitled(time.Now()), nil
}

// UserHasBot reports whether the account's entitled subscription carries an
// active item with the given bot code. Invited accounts hold their bot as a
// plan item, so the check matches by code rather than item type.
func (s *EntitlementService) UserHasBot(ctx context.Context, accountID uuid.UUID, botCode string) (bool, error) {
	sub, err := s.subRepo.FindCurrentByAccount(ctx, accountID)
	if err != nil {
		if err == shared.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	if !sub.IsEntitled(time.Now()) {
		return false, nil
	}

	items, err := s.itemRepo.FindActiveBySubscription(ctx, sub.ID)
	if err != nil {
		return false, fmt.Errorf("failed to load items: %w", err)
	}
	for _, item := range items {
		if item.Code == botCode {
			return true, nil
		}
	}
	return false, nil
}

// GetRfcLimit returns how many RFCs the account may register: the plan's base
// allowance plus one per unit of active extra-capacity addons. Accounts
// without an entitled subscription get the trial allowance.
func (s *EntitlementService) GetRfcLimit(ctx context.Context, accountID uuid.UUID) (int, error) {
	sub, err := s.subRepo.FindCurrentByAccount(ctx, accountID)
	if err != nil {
		if err == shared.ErrNotFound {
			return s.catalog.RfcLimit(billing.PlanTrial), nil
		}
		return 0, err
	}
	if !sub.IsEntitled(time.Now()) {
		return s.catalog.RfcLimit(billing.PlanTrial), nil
	}

	limit := s.catalog.RfcLimit(sub.PlanCode)

	items, err := s.itemRepo.FindActiveBySubscription(ctx, sub.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load items: %w", err)
	}
	for _, item := range items {
		if item.Code == billing.AddonRfcExtra {
			limit += int(item.Quantity)
		}
	}
	return limit, nil
}

// ListPayments returns the invoice history of the account's current
// processor subscription, newest first. Manual subscriptions have none.
func (s *EntitlementService) ListPayments(ctx context.Context, accountID uuid.UUID) ([]billing.PaymentRecord, error) {
	sub, err := s.subRepo.FindCurrentByAccount(ctx, accountID)
	if err != nil {
		if err == shared.ErrNotFound {
			return []billing.PaymentRecord{}, nil
		}
		return nil, err
	}
	if sub.IsManual() {
		return []billing.PaymentRecord{}, nil
	}
	return s.paymentRepo.ListByProcessorSubID(ctx, sub.ProcessorSubscriptionID)
}

// isBotCode recognizes bot codes mirrored onto plan items for invited
// accounts.
func isBotCode(code string) bool {
	return code == billing.BotGastos || code == billing.BotComprobantes
}
