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

// Manual payment workflow errors.
var (
	ErrPendingRequestExists = shared.NewDomainError("PENDING_REQUEST_EXISTS", "A pending manual payment request already exists")
	ErrPlanRequired         = shared.NewDomainError("PLAN_REQUIRED", "An active plan is required before buying this item")
	ErrPlanAlreadyActive    = shared.NewDomainError("PLAN_ALREADY_ACTIVE", "The account already has an active plan")
	ErrBotAlreadyActive     = shared.NewDomainError("BOT_ALREADY_ACTIVE", "The account already has this bot")
)

// ManualPaymentService runs the bank-transfer payment workflow: customers
// register a claim, an operator approves or rejects it, and approval applies
// the purchase to the ledger after re-checking the same preconditions.
type ManualPaymentService struct {
	requestRepo billing.ManualPaymentRepository
	subRepo     billing.SubscriptionRepository
	itemRepo    billing.SubscriptionItemRepository
	accounts    billing.AccountDirectory
	catalog     *billing.Catalog
	notifier    billing.Notifier
	logger      *zap.Logger
}

// ManualPaymentServiceConfig contains configuration for ManualPaymentService
type ManualPaymentServiceConfig struct {
	RequestRepo billing.ManualPaymentRepository
	SubRepo     billing.SubscriptionRepository
	ItemRepo    billing.SubscriptionItemRepository
	Accounts    billing.AccountDirectory
	Catalog     *billing.Catalog
	Notifier    billing.Notifier
	Logger      *zap.Logger
}

// NewManualPaymentService creates a new ManualPaymentService
func NewManualPaymentService(cfg ManualPaymentServiceConfig) *ManualPaymentService {
	return &ManualPaymentService{
		requestRepo: cfg.RequestRepo,
		subRepo:     cfg.SubRepo,
		itemRepo:    cfg.ItemRepo,
		accounts:    cfg.Accounts,
		catalog:     cfg.Catalog,
		notifier:    cfg.Notifier,
		logger:      cfg.Logger,
	}
}

// Register files a transfer payment claim. The rules differ by account kind:
// an invited account buys a bot as its plan, a regular account needs an
// active plan before adding a bot, and nobody buys a second plan.
func (s *ManualPaymentService) Register(ctx context.Context, accountID uuid.UUID, code string, kind billing.ManualPaymentKind, reference string) (*billing.ManualPaymentRequest, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case billing.ManualKindPlan:
		if !s.catalog.IsPlanCode(code) || code == billing.PlanTrial {
			return nil, shared.ErrInvalidInput
		}
	case billing.ManualKindBot:
		if !isBotCode(code) {
			return nil, shared.ErrInvalidInput
		}
	default:
		return nil, shared.ErrInvalidInput
	}

	pending, err := s.requestRepo.FindPendingByAccount(ctx, accountID)
	if err != nil && err != shared.ErrNotFound {
		return nil, fmt.Errorf("failed to check pending requests: %w", err)
	}
	if pending != nil {
		return nil, ErrPendingRequestExists
	}

	if err := s.checkPurchaseAllowed(ctx, account, code, kind); err != nil {
		return nil, err
	}

	request := billing.NewManualPaymentRequest(accountID, code, kind, account.IsInvited(), reference)
	if err := s.requestRepo.Save(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to save request: %w", err)
	}

	s.logger.Info("Manual payment registered",
		zap.String("account_id", accountID.String()),
		zap.String("code", code),
		zap.String("kind", string(kind)),
		zap.String("role", string(request.Role)))

	return request, nil
}

// Approve applies an operator-verified transfer payment to the ledger. The
// entitlement preconditions are re-checked because the account's state may
// have changed since the request was filed.
func (s *ManualPaymentService) Approve(ctx context.Context, requestID uuid.UUID) error {
	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Status != billing.ManualPaymentPending {
		return shared.ErrInvalidState
	}

	now := time.Now()
	switch request.Role {
	case billing.ManualRolePlan:
		if err := s.activatePlan(ctx, request, now); err != nil {
			return err
		}
	case billing.ManualRoleAddon:
		if err := s.activateAddon(ctx, request); err != nil {
			return err
		}
	default:
		return shared.ErrInvalidState
	}

	if err := request.Approve(now); err != nil {
		return err
	}
	if err := s.requestRepo.Save(ctx, request); err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}

	if s.notifier != nil {
		s.notifier.ManualPaymentReviewed(ctx, request.AccountID, request.Code, true)
	}

	s.logger.Info("Manual payment approved",
		zap.String("request_id", requestID.String()),
		zap.String("account_id", request.AccountID.String()),
		zap.String("role", string(request.Role)))

	return nil
}

// Reject declines a pending transfer payment claim.
func (s *ManualPaymentService) Reject(ctx context.Context, requestID uuid.UUID) error {
	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return err
	}
	if err := request.Reject(); err != nil {
		return err
	}
	if err := s.requestRepo.Save(ctx, request); err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}

	if s.notifier != nil {
		s.notifier.ManualPaymentReviewed(ctx, request.AccountID, request.Code, false)
	}

	s.logger.Info("Manual payment rejected",
		zap.String("request_id", requestID.String()),
		zap.String("account_id", request.AccountID.String()))

	return nil
}

// List returns all requests, newest first, for operator review.
func (s *ManualPaymentService) List(ctx context.Context) ([]billing.ManualPaymentRequest, error) {
	return s.requestRepo.ListAll(ctx)
}

// checkPurchaseAllowed enforces the registration rules shared with approval.
func (s *ManualPaymentService) checkPurchaseAllowed(ctx context.Context, account *billing.Account, code string, kind billing.ManualPaymentKind) error {
	sub, err := s.subRepo.FindCurrentByAccount(ctx, account.ID)
	if err != nil && err != shared.ErrNotFound {
		return fmt.Errorf("failed to find subscription: %w", err)
	}
	hasActivePlan := sub != nil && sub.Status == billing.SubscriptionActive && !sub.IsExpired(time.Now())

	if kind == billing.ManualKindPlan {
		if hasActivePlan {
			return ErrPlanAlreadyActive
		}
		return nil
	}

	// Bot purchase. Invited accounts run one bot at a time, wherever it
	// lives: approval filed it as the subscription's plan code, or as an
	// item on an existing row.
	if account.IsInvited() {
		has, err := s.hasActiveBot(ctx, sub)
		if err != nil {
			return err
		}
		if has {
			return ErrBotAlreadyActive
		}
		return nil
	}
	if !hasActivePlan {
		return ErrPlanRequired
	}
	return nil
}

// activatePlan applies an approved plan-role payment: an existing usable row
// converts in place (trial upgrades keep their history), otherwise a fresh
// manual row is created.
func (s *ManualPaymentService) activatePlan(ctx context.Context, request *billing.ManualPaymentRequest, now time.Time) error {
	sub, err := s.subRepo.FindCurrentByAccount(ctx, request.AccountID)
	if err != nil && err != shared.ErrNotFound {
		return fmt.Errorf("failed to find subscription: %w", err)
	}

	if sub != nil && sub.Status == billing.SubscriptionActive && !sub.IsExpired(now) {
		return ErrPlanAlreadyActive
	}

	if sub != nil && sub.Status != billing.SubscriptionCanceled {
		if err := sub.ActivateManualPlan(request.Code, now); err != nil {
			return err
		}
		return s.subRepo.Save(ctx, sub)
	}

	// Canceled rows are terminal; start a new one.
	fresh := billing.NewManualPlanSubscription(request.AccountID, request.Code, now)
	return s.subRepo.Save(ctx, fresh)
}

// activateAddon applies an approved addon-role payment as a new active item
// on the account's entitled subscription.
func (s *ManualPaymentService) activateAddon(ctx context.Context, request *billing.ManualPaymentRequest) error {
	sub, err := s.subRepo.FindCurrentByAccount(ctx, request.AccountID)
	if err != nil {
		if err == shared.ErrNotFound {
			return ErrPlanRequired
		}
		return fmt.Errorf("failed to find subscription: %w", err)
	}
	if !sub.IsEntitled(time.Now()) {
		return ErrPlanRequired
	}

	has, err := s.hasActiveItem(ctx, sub, request.Code)
	if err != nil {
		return err
	}
	if has {
		return ErrBotAlreadyActive
	}

	item := billing.NewManualItem(sub.ID, billing.ItemTypeBot, request.Code)
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

// hasActiveItem reports whether the subscription has an active item with the
// given resolved code.
func (s *ManualPaymentService) hasActiveItem(ctx context.Context, sub *billing.Subscription, code string) (bool, error) {
	if sub == nil {
		return false, nil
	}
	items, err := s.itemRepo.FindActiveBySubscription(ctx, sub.ID)
	if err != nil {
		return false, fmt.Errorf("failed to load items: %w", err)
	}
	for _, item := range items {
		if item.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// hasActiveBot reports whether the account already runs any bot: either the
// subscription itself is a bot filed as a plan, or an active item carries a
// bot code.
func (s *ManualPaymentService) hasActiveBot(ctx context.Context, sub *billing.Subscription) (bool, error) {
	if sub == nil {
		return false, nil
	}
	if sub.IsEntitled(time.Now()) && isBotCode(sub.PlanCode) {
		return true, nil
	}
	items, err := s.itemRepo.FindActiveBySubscription(ctx, sub.ID)
	if err != nil {
		return false, fmt.Errorf("failed to load items: %w", err)
	}
	for _, item := range items {
		if isBotCode(item.Code) {
			return true, nil
		}
	}
	return false, nil
}
