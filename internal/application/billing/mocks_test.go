package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/cuentia/backend/internal/domain/billing"
)

// MockSubscriptionRepository is a mock implementation of billing.SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindCurrentByAccount(ctx context.Context, accountID uuid.UUID) (*billing.Subscription, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) FindByProcessorID(ctx context.Context, processorSubID string) (*billing.Subscription, error) {
	args := m.Called(ctx, processorSubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, sub *billing.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

// MockSubscriptionItemRepository is a mock implementation of billing.SubscriptionItemRepository
type MockSubscriptionItemRepository struct {
	mock.Mock
}

func (m *MockSubscriptionItemRepository) FindBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]billing.SubscriptionItem, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.SubscriptionItem), args.Error(1)
}

func (m *MockSubscriptionItemRepository) FindActiveBySubscription(ctx context.Context, subscriptionID uuid.UUID) ([]billing.SubscriptionItem, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.SubscriptionItem), args.Error(1)
}

func (m *MockSubscriptionItemRepository) FindByProcessorItemID(ctx context.Context, subscriptionID uuid.UUID, processorItemID string) (*billing.SubscriptionItem, error) {
	args := m.Called(ctx, subscriptionID, processorItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.SubscriptionItem), args.Error(1)
}

func (m *MockSubscriptionItemRepository) Save(ctx context.Context, item *billing.SubscriptionItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockSubscriptionItemRepository) DeactivateAll(ctx context.Context, subscriptionID uuid.UUID) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

// MockPaymentRecordRepository is a mock implementation of billing.PaymentRecordRepository
type MockPaymentRecordRepository struct {
	mock.Mock
}

func (m *MockPaymentRecordRepository) FindByInvoiceID(ctx context.Context, invoiceID string) (*billing.PaymentRecord, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) ListByProcessorSubID(ctx context.Context, processorSubID string) ([]billing.PaymentRecord, error) {
	args := m.Called(ctx, processorSubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.PaymentRecord), args.Error(1)
}

func (m *MockPaymentRecordRepository) CountPaidByProcessorSubID(ctx context.Context, processorSubID string) (int64, error) {
	args := m.Called(ctx, processorSubID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRecordRepository) Save(ctx context.Context, record *billing.PaymentRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockManualPaymentRepository is a mock implementation of billing.ManualPaymentRepository
type MockManualPaymentRepository struct {
	mock.Mock
}

func (m *MockManualPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.ManualPaymentRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ManualPaymentRequest), args.Error(1)
}

func (m *MockManualPaymentRepository) FindPendingByAccount(ctx context.Context, accountID uuid.UUID) (*billing.ManualPaymentRequest, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ManualPaymentRequest), args.Error(1)
}

func (m *MockManualPaymentRepository) ListAll(ctx context.Context) ([]billing.ManualPaymentRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.ManualPaymentRequest), args.Error(1)
}

func (m *MockManualPaymentRepository) Save(ctx context.Context, request *billing.ManualPaymentRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

// MockProcessorCustomerRepository is a mock implementation of billing.ProcessorCustomerRepository
type MockProcessorCustomerRepository struct {
	mock.Mock
}

func (m *MockProcessorCustomerRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) (*billing.ProcessorCustomer, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ProcessorCustomer), args.Error(1)
}

func (m *MockProcessorCustomerRepository) FindByProcessorCustomerID(ctx context.Context, processorCustomerID string) (*billing.ProcessorCustomer, error) {
	args := m.Called(ctx, processorCustomerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ProcessorCustomer), args.Error(1)
}

func (m *MockProcessorCustomerRepository) Save(ctx context.Context, customer *billing.ProcessorCustomer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// MockUsageRepository is a mock implementation of billing.UsageRepository
type MockUsageRepository struct {
	mock.Mock
}

func (m *MockUsageRepository) Find(ctx context.Context, accountID uuid.UUID, feature billing.Feature, period string) (*billing.UsageCounter, error) {
	args := m.Called(ctx, accountID, feature, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.UsageCounter), args.Error(1)
}

func (m *MockUsageRepository) Save(ctx context.Context, counter *billing.UsageCounter) error {
	args := m.Called(ctx, counter)
	return args.Error(0)
}

// MockAccountDirectory is a mock implementation of billing.AccountDirectory
type MockAccountDirectory struct {
	mock.Mock
}

func (m *MockAccountDirectory) FindByID(ctx context.Context, id uuid.UUID) (*billing.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Account), args.Error(1)
}

// MockPaymentProcessor is a mock implementation of billing.PaymentProcessor
type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) CreateCustomer(ctx context.Context, accountID uuid.UUID, email string) (string, error) {
	args := m.Called(ctx, accountID, email)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentProcessor) CancelSubscription(ctx context.Context, processorSubID string) error {
	args := m.Called(ctx, processorSubID)
	return args.Error(0)
}

func (m *MockPaymentProcessor) UpdateSubscriptionPrice(ctx context.Context, processorSubID, newPriceID string) error {
	args := m.Called(ctx, processorSubID, newPriceID)
	return args.Error(0)
}

func (m *MockPaymentProcessor) ApplyCoupon(ctx context.Context, processorSubID, couponID string) error {
	args := m.Called(ctx, processorSubID, couponID)
	return args.Error(0)
}

func (m *MockPaymentProcessor) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error) {
	args := m.Called(ctx, customerID, priceID, successURL, cancelURL)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentProcessor) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.String(0), args.Error(1)
}

// MockNotifier is a mock implementation of billing.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PlanStarted(ctx context.Context, accountID uuid.UUID, planCode string) {
	m.Called(ctx, accountID, planCode)
}

func (m *MockNotifier) ManualPaymentReviewed(ctx context.Context, accountID uuid.UUID, code string, approved bool) {
	m.Called(ctx, accountID, code, approved)
}

func (m *MockNotifier) PaymentFailed(ctx context.Context, accountID uuid.UUID, invoiceID string) {
	m.Called(ctx, accountID, invoiceID)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// testCatalog builds the price mapping used across service tests.
func testCatalog() *billing.Catalog {
	return billing.NewCatalog(map[string]string{
		"price_individual":  billing.PlanIndividual,
		"price_profesional": billing.PlanProfesional,
		"price_empresarial": billing.PlanEmpresarial,
		"price_despacho":    billing.PlanDespacho,
		"price_bot_gastos":  billing.BotGastos,
		"price_bot_comp":    billing.BotComprobantes,
		"price_rfc_extra":   billing.AddonRfcExtra,
	})
}
