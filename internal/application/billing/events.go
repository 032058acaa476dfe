package billing

import (
	"github.com/google/uuid"

	"github.com/cuentia/backend/internal/domain/shared"
)

// Event type constants for billing domain events
const (
	EventTypeSubscriptionSynced   = "SubscriptionSynced"
	EventTypeSubscriptionCanceled = "SubscriptionCanceled"
	EventTypePaymentRecorded      = "PaymentRecorded"
	EventTypeManualPaymentDecided = "ManualPaymentDecided"
)

// Aggregate type constant
const AggregateTypeSubscription = "Subscription"

// SubscriptionEvent signals a subscription lifecycle change
type SubscriptionEvent struct {
	shared.BaseDomainEvent
	ProcessorSubscriptionID string `json:"processor_subscription_id"`
	PlanCode                string `json:"plan_code"`
}

// NewSubscriptionEvent creates a subscription lifecycle event
func NewSubscriptionEvent(eventType string, accountID, subscriptionID uuid.UUID, processorSubID, planCode string) *SubscriptionEvent {
	return &SubscriptionEvent{
		BaseDomainEvent:         shared.NewBaseDomainEvent(eventType, AggregateTypeSubscription, subscriptionID, accountID),
		ProcessorSubscriptionID: processorSubID,
		PlanCode:                planCode,
	}
}

// PaymentEvent signals a recorded invoice outcome
type PaymentEvent struct {
	shared.BaseDomainEvent
	InvoiceID string `json:"invoice_id"`
	Outcome   string `json:"outcome"` // paid, failed
}

// NewPaymentEvent creates a payment outcome event
func NewPaymentEvent(accountID, subscriptionID uuid.UUID, invoiceID, outcome string) *PaymentEvent {
	return &PaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, AggregateTypeSubscription, subscriptionID, accountID),
		InvoiceID:       invoiceID,
		Outcome:         outcome,
	}
}
