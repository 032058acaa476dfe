package dto

import "time"

// ChangePlanRequest asks to move the current subscription to the plan behind
// a catalog price id
type ChangePlanRequest struct {
	PriceID string `json:"price_id" binding:"required,max=100"`
}

// RetentionDiscountRequest applies the one-time retention discount
type RetentionDiscountRequest struct {
	Reason string `json:"reason" binding:"required,max=100"`
	Detail string `json:"detail" binding:"max=500"`
}

// CheckoutSessionRequest starts a hosted checkout for a catalog code
type CheckoutSessionRequest struct {
	Code string `json:"code" binding:"required,max=50"`
}

// CheckoutSessionResponse carries the processor-hosted URL to redirect to
type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

// ManualPaymentRequestInput registers a bank transfer purchase for review
type ManualPaymentRequestInput struct {
	Code      string `json:"code" binding:"required,max=50"`
	Kind      string `json:"kind" binding:"required,oneof=plan bot"`
	Reference string `json:"reference" binding:"max=100"`
}

// ManualPaymentResponse is one manual payment request on the wire
type ManualPaymentResponse struct {
	ID         string     `json:"id"`
	AccountID  string     `json:"account_id"`
	Code       string     `json:"code"`
	Kind       string     `json:"kind"`
	Role       string     `json:"role"`
	Status     string     `json:"status"`
	Reference  string     `json:"reference,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PaymentRecordResponse is one invoice ledger entry on the wire
type PaymentRecordResponse struct {
	ID        string     `json:"id"`
	InvoiceID string     `json:"invoice_id"`
	Amount    string     `json:"amount"`
	Currency  string     `json:"currency"`
	PeriodEnd *time.Time `json:"period_end,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// SubscriptionResponse is the raw subscription row on the wire
type SubscriptionResponse struct {
	ID               string     `json:"id"`
	AccountID        string     `json:"account_id"`
	Status           string     `json:"status"`
	PlanCode         string     `json:"plan_code,omitempty"`
	BillingMode      string     `json:"billing_mode"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	TrialEndsAt      *time.Time `json:"trial_ends_at,omitempty"`
	CanceledAt       *time.Time `json:"canceled_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// RecordUsageRequest increments a usage counter for the current period
type RecordUsageRequest struct {
	Feature string `json:"feature" binding:"required,oneof=cfdi_ai bot_message"`
	Amount  int64  `json:"amount" binding:"omitempty,min=1"`
}

// BotStatusResponse reports whether the account holds an active bot
type BotStatusResponse struct {
	Code   string `json:"code"`
	Active bool   `json:"active"`
}

// RfcLimitResponse reports the account's RFC capacity
type RfcLimitResponse struct {
	Limit int `json:"limit"`
}
