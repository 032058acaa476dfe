package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cuentia/backend/internal/domain/billing"
	"github.com/cuentia/backend/internal/domain/shared"
	infrabilling "github.com/cuentia/backend/internal/infrastructure/billing"
)

// CheckoutService hands accounts off to the processor's hosted surfaces.
// Customers are created lazily on the first purchase intent.
type CheckoutService struct {
	config       *infrabilling.StripeConfig
	customerRepo billing.ProcessorCustomerRepository
	accounts     billing.AccountDirectory
	processor    billing.PaymentProcessor
	catalog      *billing.Catalog
	logger       *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(
	config *infrabilling.StripeConfig,
	customerRepo billing.ProcessorCustomerRepository,
	accounts billing.AccountDirectory,
	processor billing.PaymentProcessor,
	catalog *billing.Catalog,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		config:       config,
		customerRepo: customerRepo,
		accounts:     accounts,
		processor:    processor,
		catalog:      catalog,
		logger:       logger,
	}
}

// EnsureCustomer returns the account's processor customer ID, creating the
// customer remotely on first use.
func (s *CheckoutService) EnsureCustomer(ctx context.Context, accountID uuid.UUID) (string, error) {
	existing, err := s.customerRepo.FindByAccount(ctx, accountID)
	if err != nil && err != shared.ErrNotFound {
		return "", fmt.Errorf("failed to find customer mapping: %w", err)
	}
	if existing != nil {
		return existing.ProcessorCustomerID, nil
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return "", err
	}

	processorID, err := s.processor.CreateCustomer(ctx, accountID, account.Email)
	if err != nil {
		return "", fmt.Errorf("stripe: failed to create customer: %w", err)
	}

	customer := billing.NewProcessorCustomer(accountID, processorID)
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return "", fmt.Errorf("failed to save customer mapping: %w", err)
	}

	s.logger.Info("Processor customer created",
		zap.String("account_id", accountID.String()),
		zap.String("customer_id", processorID))

	return processorID, nil
}

// CreateCheckoutSession starts a hosted checkout for a plan or bot purchase
// and returns the redirect URL.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, accountID uuid.UUID, code string) (string, error) {
	priceID, ok := s.catalog.PriceForCode(code)
	if !ok {
		return "", shared.ErrInvalidInput
	}

	customerID, err := s.EnsureCustomer(ctx, accountID)
	if err != nil {
		return "", err
	}

	url, err := s.processor.CreateCheckoutSession(ctx, customerID, priceID, s.config.CheckoutSuccessURL, s.config.CheckoutCancelURL)
	if err != nil {
		return "", fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}
	return url, nil
}

// CreatePortalSession opens the hosted billing portal for payment method and
// invoice management.
func (s *CheckoutService) CreatePortalSession(ctx context.Context, accountID uuid.UUID) (string, error) {
	customer, err := s.customerRepo.FindByAccount(ctx, accountID)
	if err != nil {
		return "", err
	}

	url, err := s.processor.CreatePortalSession(ctx, customer.ProcessorCustomerID, s.config.PortalReturnURL)
	if err != nil {
		return "", fmt.Errorf("stripe: failed to create portal session: %w", err)
	}
	return url, nil
}
