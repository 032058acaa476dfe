package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	"github.com/cuentia/backend/internal/domain/billing"
	"github.com/cuentia/backend/internal/domain/shared"
	infrabilling "github.com/cuentia/backend/internal/infrastructure/billing"
)

// StripeWebhookService handles Stripe webhook events
type StripeWebhookService struct {
	config       *infrabilling.StripeConfig
	customerRepo billing.ProcessorCustomerRepository
	subRepo      billing.SubscriptionRepository
	paymentRepo  billing.PaymentRecordRepository
	accounts     billing.AccountDirectory
	reconciler   *ItemReconciler
	notifier     billing.Notifier
	idempotency  shared.IdempotencyStore
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// StripeWebhookServiceConfig contains configuration for StripeWebhookService
type StripeWebhookServiceConfig struct {
	Config       *infrabilling.StripeConfig
	CustomerRepo billing.ProcessorCustomerRepository
	SubRepo      billing.SubscriptionRepository
	PaymentRepo  billing.PaymentRecordRepository
	Accounts     billing.AccountDirectory
	Reconciler   *ItemReconciler
	Notifier     billing.Notifier
	Idempotency  shared.IdempotencyStore
	EventBus     shared.EventPublisher
	Logger       *zap.Logger
}

// NewStripeWebhookService creates a new StripeWebhookService
func NewStripeWebhookService(cfg StripeWebhookServiceConfig) *StripeWebhookService {
	return &StripeWebhookService{
		config:       cfg.Config,
		customerRepo: cfg.CustomerRepo,
		subRepo:      cfg.SubRepo,
		paymentRepo:  cfg.PaymentRepo,
		accounts:     cfg.Accounts,
		reconciler:   cfg.Reconciler,
		notifier:     cfg.Notifier,
		idempotency:  cfg.Idempotency,
		eventBus:     cfg.EventBus,
		logger:       cfg.Logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies, de-duplicates and dispatches a Stripe webhook event
func (s *StripeWebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		s.logger.Error("Failed to verify webhook signature",
			zap.Error(err))
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	// Stripe retries deliveries; a redelivered event ID is acknowledged
	// without reprocessing. The ID is only recorded after the handler
	// succeeds, so a transient failure leaves the event eligible for a
	// later retry.
	if s.idempotency != nil {
		seen, err := s.idempotency.IsProcessed(ctx, event.ID)
		if err != nil {
			s.logger.Warn("Idempotency store unavailable, processing anyway",
				zap.String("event_id", event.ID),
				zap.Error(err))
		} else if seen {
			s.logger.Info("Skipping duplicate webhook delivery",
				zap.String("event_id", event.ID))
			result.Processed = false
			result.Message = "Duplicate delivery"
			return result, nil
		}
	}

	s.logger.Info("Processing Stripe webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	switch event.Type {
	case "checkout.session.completed":
		err = s.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.created", "customer.subscription.updated":
		err = s.handleSubscriptionSync(ctx, event)
	case "invoice.payment_succeeded":
		err = s.handlePaymentSucceeded(ctx, event)
	case "invoice.payment_failed":
		err = s.handlePaymentFailed(ctx, event)
	default:
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Message = "Event type not handled"
	}

	if err != nil {
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}

	if s.idempotency != nil {
		if _, err := s.idempotency.MarkProcessed(ctx, event.ID, shared.DefaultIdempotencyConfig().TTL); err != nil {
			s.logger.Warn("Failed to record processed event",
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}

	return result, nil
}

// handleCheckoutCompleted handles checkout.session.completed events. The
// ledger is written by the subscription events that follow; the session
// itself is only acknowledged.
func (s *StripeWebhookService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}
	s.logger.Info("Checkout session completed",
		zap.String("session_id", session.ID),
		zap.String("customer_id", customerID))
	return nil
}

// handleSubscriptionSync handles customer.subscription.created and
// customer.subscription.updated events by mirroring the processor state onto
// the ledger. Events older than the last applied one are skipped.
func (s *StripeWebhookService) handleSubscriptionSync(ctx context.Context, event stripe.Event) error {
	var subscription stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	customerID := ""
	if subscription.Customer != nil {
		customerID = subscription.Customer.ID
	}
	if customerID == "" {
		s.logger.Warn("Subscription has no customer ID, skipping",
			zap.String("subscription_id", subscription.ID))
		return nil
	}

	// Unknown customers are acknowledged so Stripe stops retrying; the
	// webhook can arrive before our customer record exists.
	customer, err := s.customerRepo.FindByProcessorCustomerID(ctx, customerID)
	if err != nil {
		if err == shared.ErrNotFound {
			s.logger.Warn("No account mapped to processor customer",
				zap.String("customer_id", customerID))
			return nil
		}
		return fmt.Errorf("failed to find customer mapping: %w", err)
	}

	account, err := s.accounts.FindByID(ctx, customer.AccountID)
	if err != nil {
		if err == shared.ErrNotFound {
			s.logger.Warn("Account missing for processor customer",
				zap.String("account_id", customer.AccountID.String()))
			return nil
		}
		return fmt.Errorf("failed to load account: %w", err)
	}

	items := lineItemsFromSubscription(&subscription)
	classified, plan, err := s.reconciler.classify(items, account.IsInvited())
	if err != nil {
		return err
	}

	sub, err := s.subRepo.FindByProcessorID(ctx, subscription.ID)
	if err != nil {
		if err != shared.ErrNotFound {
			return fmt.Errorf("failed to find subscription: %w", err)
		}
		sub = billing.NewSubscription(account.ID, subscription.ID)
	}

	eventAt := time.Unix(event.Created, 0)
	status := billing.MapProcessorStatus(string(subscription.Status))
	if !sub.ApplySync(status, unixTime(subscription.CurrentPeriodEnd), unixTime(subscription.TrialEnd), eventAt) {
		s.logger.Info("Skipping stale subscription event",
			zap.String("subscription_id", subscription.ID),
			zap.Time("event_at", eventAt))
		return nil
	}
	if plan != nil {
		sub.SetPlan(plan.Code, plan.PriceID)
	}

	if err := s.subRepo.Save(ctx, sub); err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	if err := s.reconciler.apply(ctx, sub, classified); err != nil {
		return err
	}

	if plan != nil && s.notifier != nil {
		s.notifier.PlanStarted(ctx, account.ID, plan.Code)
	}
	s.publishEvent(ctx, NewSubscriptionEvent(EventTypeSubscriptionSynced, account.ID, sub.ID, subscription.ID, sub.PlanCode))

	s.logger.Info("Subscription synced",
		zap.String("account_id", account.ID.String()),
		zap.String("subscription_id", subscription.ID),
		zap.String("status", string(sub.Status)),
		zap.String("plan_code", sub.PlanCode))

	return nil
}

// handlePaymentSucceeded handles invoice.payment_succeeded events
func (s *StripeWebhookService) handlePaymentSucceeded(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	processorSubID := resolveInvoiceSubscriptionID(&invoice, event.Data.Raw)
	if processorSubID == "" {
		s.logger.Warn("Invoice is not tied to a subscription, skipping",
			zap.String("invoice_id", invoice.ID))
		return nil
	}

	record, err := s.paymentRepo.FindByInvoiceID(ctx, invoice.ID)
	if err != nil && err != shared.ErrNotFound {
		return fmt.Errorf("failed to find payment record: %w", err)
	}
	if record != nil && record.IsPaid() {
		s.logger.Info("Invoice already settled, skipping duplicate",
			zap.String("invoice_id", invoice.ID))
		return nil
	}

	periodEnd := invoicePeriodEnd(&invoice)
	now := time.Now()

	sub, err := s.subRepo.FindByProcessorID(ctx, processorSubID)
	if err != nil && err != shared.ErrNotFound {
		return fmt.Errorf("failed to find subscription: %w", err)
	}
	if sub != nil {
		sub.MarkPaid(periodEnd, now)
		if err := s.subRepo.Save(ctx, sub); err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}
	} else {
		s.logger.Warn("Payment received for unknown subscription",
			zap.String("processor_subscription_id", processorSubID))
	}

	amount := decimal.New(invoice.AmountPaid, -2)
	if record == nil {
		record = billing.NewPaymentRecord(invoice.ID, processorSubID, amount, string(invoice.Currency), periodEnd, billing.PaymentPaid)
	} else {
		record.Status = billing.PaymentPaid
		record.Amount = amount
		record.PeriodEnd = periodEnd
	}
	if err := s.paymentRepo.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save payment record: %w", err)
	}

	if sub != nil {
		s.publishEvent(ctx, NewPaymentEvent(sub.AccountID, sub.ID, invoice.ID, "paid"))
	}

	s.logger.Info("Invoice payment recorded",
		zap.String("invoice_id", invoice.ID),
		zap.String("processor_subscription_id", processorSubID),
		zap.String("amount", amount.String()))

	return nil
}

// handlePaymentFailed handles invoice.payment_failed events. A settled
// invoice never flips back to failed, and the subscription status is left to
// subscription events.
func (s *StripeWebhookService) handlePaymentFailed(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	processorSubID := resolveInvoiceSubscriptionID(&invoice, event.Data.Raw)
	if processorSubID == "" {
		s.logger.Warn("Invoice is not tied to a subscription, skipping",
			zap.String("invoice_id", invoice.ID))
		return nil
	}

	record, err := s.paymentRepo.FindByInvoiceID(ctx, invoice.ID)
	if err != nil && err != shared.ErrNotFound {
		return fmt.Errorf("failed to find payment record: %w", err)
	}
	if record != nil && record.IsPaid() {
		s.logger.Info("Invoice already settled, ignoring failure event",
			zap.String("invoice_id", invoice.ID))
		return nil
	}

	amount := decimal.New(invoice.AmountDue, -2)
	if record == nil {
		record = billing.NewPaymentRecord(invoice.ID, processorSubID, amount, string(invoice.Currency), nil, billing.PaymentFailed)
	} else {
		record.Status = billing.PaymentFailed
		record.Amount = amount
	}
	if err := s.paymentRepo.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save payment record: %w", err)
	}

	if sub, err := s.subRepo.FindByProcessorID(ctx, processorSubID); err == nil {
		s.publishEvent(ctx, NewPaymentEvent(sub.AccountID, sub.ID, invoice.ID, "failed"))
	}

	s.logger.Warn("Invoice payment failed",
		zap.String("invoice_id", invoice.ID),
		zap.String("processor_subscription_id", processorSubID))

	return nil
}

// publishEvent publishes a domain event, logging instead of failing the
// webhook when the bus is down.
func (s *StripeWebhookService) publishEvent(ctx context.Context, event shared.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish billing event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}

// lineItemsFromSubscription flattens the processor item list for the
// reconciler.
func lineItemsFromSubscription(subscription *stripe.Subscription) []LineItem {
	if subscription.Items == nil {
		return nil
	}
	items := make([]LineItem, 0, len(subscription.Items.Data))
	for _, item := range subscription.Items.Data {
		if item == nil {
			continue
		}
		li := LineItem{
			ProcessorItemID: item.ID,
			Quantity:        item.Quantity,
		}
		if item.Price != nil {
			li.PriceID = item.Price.ID
			li.MetadataType = item.Price.Metadata["type"]
			if item.Price.Product != nil {
				li.ProductID = item.Price.Product.ID
			}
		}
		items = append(items, li)
	}
	return items
}

// resolveInvoiceSubscriptionID finds the subscription an invoice belongs to.
// Invoice payloads have carried the reference in three different places
// across processor API versions, so all of them are checked in order.
func resolveInvoiceSubscriptionID(invoice *stripe.Invoice, raw []byte) string {
	if invoice.Subscription != nil && invoice.Subscription.ID != "" {
		return invoice.Subscription.ID
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if id, ok := digString(payload, "parent", "subscription_details", "subscription"); ok {
		return id
	}

	lines, ok := payload["lines"].(map[string]any)
	if !ok {
		return ""
	}
	data, ok := lines["data"].([]any)
	if !ok || len(data) == 0 {
		return ""
	}
	first, ok := data[0].(map[string]any)
	if !ok {
		return ""
	}
	if id, ok := digString(first, "parent", "subscription_item_details", "subscription"); ok {
		return id
	}
	if id, ok := first["subscription"].(string); ok && id != "" {
		return id
	}
	return ""
}

// digString walks nested JSON objects and returns the string at the path.
func digString(m map[string]any, path ...string) (string, bool) {
	current := m
	for i, key := range path {
		value, ok := current[key]
		if !ok || value == nil {
			return "", false
		}
		if i == len(path)-1 {
			s, ok := value.(string)
			return s, ok && s != ""
		}
		current, ok = value.(map[string]any)
		if !ok {
			return "", false
		}
	}
	return "", false
}

// invoicePeriodEnd reads the covered period end from the invoice's first line.
func invoicePeriodEnd(invoice *stripe.Invoice) *time.Time {
	if invoice.Lines == nil || len(invoice.Lines.Data) == 0 {
		return nil
	}
	first := invoice.Lines.Data[0]
	if first == nil || first.Period == nil {
		return nil
	}
	return unixTime(first.Period.End)
}

// unixTime converts a processor unix timestamp, treating zero as absent.
func unixTime(ts int64) *time.Time {
	if ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0)
	return &t
}
