package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cuentia/backend/internal/domain/billing"
	"github.com/cuentia/backend/internal/domain/shared"
	infrabilling "github.com/cuentia/backend/internal/infrastructure/billing"
)

// ErrDiscountNotEligible gates the retention discount on payment history.
var ErrDiscountNotEligible = shared.NewDomainError("DISCOUNT_NOT_ELIGIBLE", "At least three paid invoices are required for the retention discount")

// minPaidInvoicesForDiscount is the payment history required before the
// retention discount can be offered.
const minPaidInvoicesForDiscount = 3

// SubscriptionService owns subscription lifecycle commands. Commands that
// touch the processor call it first and only mutate the ledger after the
// remote call succeeded.
type SubscriptionService struct {
	config      *infrabilling.StripeConfig
	subRepo     billing.SubscriptionRepository
	itemRepo    billing.SubscriptionItemRepository
	paymentRepo billing.PaymentRecordRepository
	processor   billing.PaymentProcessor
	catalog     *billing.Catalog
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// SubscriptionServiceConfig contains configuration for SubscriptionService
type SubscriptionServiceConfig struct {
	Config      *infrabilling.StripeConfig
	SubRepo     billing.SubscriptionRepository
	ItemRepo    billing.SubscriptionItemRepository
	PaymentRepo billing.PaymentRecordRepository
	Processor   billing.PaymentProcessor
	Catalog     *billing.Catalog
	EventBus    shared.EventPublisher
	Logger      *zap.Logger
}

// NewSubscriptionService creates a new SubscriptionService
func NewSubscriptionService(cfg SubscriptionServiceConfig) *SubscriptionService {
	return &SubscriptionService{
		config:      cfg.Config,
		subRepo:     cfg.SubRepo,
		itemRepo:    cfg.ItemRepo,
		paymentRepo: cfg.PaymentRepo,
		processor:   cfg.Processor,
		catalog:     cfg.Catalog,
		eventBus:    cfg.EventBus,
		logger:      cfg.Logger,
	}
}

// StartTrial grants the signup trial. Accounts that ever had a subscription
// row do not get another trial.
func (s *SubscriptionService) StartTrial(ctx context.Context, accountID uuid.UUID) (*billing.Subscription, error) {
	existing, err := s.subRepo.FindCurrentByAccount(ctx, accountID)
	if err != nil && err != shared.ErrNotFound {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}
	if existing != nil {
		return nil, shared.ErrAlreadyExists
	}

	sub := billing.NewTrialSubscription(accountID, time.Now())
	if err := s.subRepo.Save(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to save trial subscription: %w", err)
	}

	s.logger.Info("Trial started",
		zap.String("account_id", accountID.String()),
		zap.Time("trial_ends_at", *sub.TrialEndsAt))

	return sub, nil
}

// CancelSubscription cancels the account's current subscription. For
// processor-managed subscriptions the processor is canceled first; a failed
// remote call leaves the ledger untouched.
func (s *SubscriptionService) CancelSubscription(ctx context.Context, accountID uuid.UUID) error {
	sub, err := s.subRepo.FindCurrentByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if sub.Status == billing.SubscriptionCanceled {
		return shared.ErrInvalidState
	}

	if !sub.IsManual() {
		if err := s.processor.CancelSubscription(ctx, sub.ProcessorSubscriptionID); err != nil {
			return fmt.Errorf("stripe: failed to cancel subscription: %w", err)
		}
	}

	now := time.Now()
	if err := sub.Cancel(now); err != nil {
		return err
	}
	if err := s.subRepo.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	if err := s.itemRepo.DeactivateAll(ctx, sub.ID); err != nil {
		return fmt.Errorf("failed to deactivate items: %w", err)
	}

	s.publishEvent(ctx, NewSubscriptionEvent(EventTypeSubscriptionCanceled, accountID, sub.ID, sub.ProcessorSubscriptionID, sub.PlanCode))

	s.logger.Info("Subscription canceled",
		zap.String("account_id", accountID.String()),
		zap.String("subscription_id", sub.ID.String()),
		zap.Bool("manual", sub.IsManual()))

	return nil
}

// ChangePlan moves the account to the plan behind the given Stripe price id.
// Manually paid subscriptions switch locally with a fresh one month period,
// which also renews a lapsed manual plan; processor subscriptions get their
// price updated remotely and the ledger follows through webhooks.
func (s *SubscriptionService) ChangePlan(ctx context.Context, accountID uuid.UUID, priceID string) error {
	planCode, ok := s.catalog.CodeForPrice(priceID)
	if !ok || !s.catalog.IsPlanCode(planCode) || planCode == billing.PlanTrial {
		return shared.ErrInvalidInput
	}

	sub, err := s.subRepo.FindCurrentByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if sub.Status == billing.SubscriptionCanceled {
		return shared.ErrInvalidState
	}

	if sub.IsManual() {
		if err := sub.ChangeManualPlan(planCode, time.Now()); err != nil {
			return err
		}
		if err := s.subRepo.Save(ctx, sub); err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}
	} else {
		if err := s.processor.UpdateSubscriptionPrice(ctx, sub.ProcessorSubscriptionID, priceID); err != nil {
			return fmt.Errorf("stripe: failed to update subscription price: %w", err)
		}
	}

	s.logger.Info("Plan change requested",
		zap.String("account_id", accountID.String()),
		zap.String("plan_code", planCode),
		zap.Bool("manual", sub.IsManual()))

	return nil
}

// ApplyRetentionDiscount attaches the one-time retention coupon. The account
// must hold an active processor subscription without a prior discount and
// with at least three paid invoices; the coupon is attached remotely before
// the audit fields are written.
func (s *SubscriptionService) ApplyRetentionDiscount(ctx context.Context, accountID uuid.UUID, reason, detail string) error {
	sub, err := s.subRepo.FindCurrentByAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if sub.Status != billing.SubscriptionActive || sub.IsExpired(time.Now()) {
		return shared.ErrInvalidState
	}
	if sub.IsManual() {
		return shared.ErrInvalidState
	}
	if sub.DiscountAppliedAt != nil {
		return shared.NewDomainError("DISCOUNT_ALREADY_APPLIED", "Retention discount was already applied")
	}

	paid, err := s.paymentRepo.CountPaidByProcessorSubID(ctx, sub.ProcessorSubscriptionID)
	if err != nil {
		return fmt.Errorf("failed to count paid invoices: %w", err)
	}
	if paid < minPaidInvoicesForDiscount {
		return ErrDiscountNotEligible
	}

	if err := s.processor.ApplyCoupon(ctx, sub.ProcessorSubscriptionID, s.config.RetentionCouponID); err != nil {
		return fmt.Errorf("stripe: failed to apply coupon: %w", err)
	}

	if err := sub.ApplyRetentionDiscount(reason, detail, time.Now()); err != nil {
		return err
	}
	if err := s.subRepo.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}

	s.logger.Info("Retention discount applied",
		zap.String("account_id", accountID.String()),
		zap.String("subscription_id", sub.ID.String()),
		zap.String("reason", reason))

	return nil
}

func (s *SubscriptionService) publishEvent(ctx context.Context, event shared.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish billing event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}
