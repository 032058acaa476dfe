package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cuentia/backend/internal/domain/billing"
)

// SubscriptionModel is the persistence model for the Subscription aggregate.
type SubscriptionModel struct {
	AggregateModel
	AccountID               uuid.UUID                  `gorm:"type:uuid;not null;index"`
	ProcessorSubscriptionID string                     `gorm:"type:varchar(100);not null;index"`
	Status                  billing.SubscriptionStatus `gorm:"type:varchar(20);not null"`
	PlanCode                string                     `gorm:"type:varchar(50)"`
	PlanPriceID             string                     `gorm:"type:varchar(100)"`
	CurrentPeriodEnd        *time.Time
	TrialEndsAt             *time.Time
	CanceledAt              *time.Time
	LastPaymentAt           *time.Time
	DiscountAppliedAt       *time.Time
	RetentionReason         string `gorm:"type:varchar(100)"`
	RetentionDetail         string `gorm:"type:text"`
	LastEventAt             *time.Time
}

// TableName returns the table name for GORM
func (SubscriptionModel) TableName() string {
	return "billing_subscriptions"
}

// ToDomain converts the persistence model to a domain Subscription.
func (m *SubscriptionModel) ToDomain() *billing.Subscription {
	sub := &billing.Subscription{
		AccountID:               m.AccountID,
		ProcessorSubscriptionID: m.ProcessorSubscriptionID,
		Status:                  m.Status,
		PlanCode:                m.PlanCode,
		PlanPriceID:             m.PlanPriceID,
		CurrentPeriodEnd:        m.CurrentPeriodEnd,
		TrialEndsAt:             m.TrialEndsAt,
		CanceledAt:              m.CanceledAt,
		LastPaymentAt:           m.LastPaymentAt,
		DiscountAppliedAt:       m.DiscountAppliedAt,
		RetentionReason:         m.RetentionReason,
		RetentionDetail:         m.RetentionDetail,
		LastEventAt:             m.LastEventAt,
	}
	m.PopulateAggregateRoot(&sub.BaseAggregateRoot)
	return sub
}

// FromDomain populates the model from a domain Subscription.
func (m *SubscriptionModel) FromDomain(sub *billing.Subscription) {
	m.FromDomainAggregateRoot(sub.BaseAggregateRoot)
	m.AccountID = sub.AccountID
	m.ProcessorSubscriptionID = sub.ProcessorSubscriptionID
	m.Status = sub.Status
	m.PlanCode = sub.PlanCode
	m.PlanPriceID = sub.PlanPriceID
	m.CurrentPeriodEnd = sub.CurrentPeriodEnd
	m.TrialEndsAt = sub.TrialEndsAt
	m.CanceledAt = sub.CanceledAt
	m.LastPaymentAt = sub.LastPaymentAt
	m.DiscountAppliedAt = sub.DiscountAppliedAt
	m.RetentionReason = sub.RetentionReason
	m.RetentionDetail = sub.RetentionDetail
	m.LastEventAt = sub.LastEventAt
}

// SubscriptionItemModel is the persistence model for subscription items.
type SubscriptionItemModel struct {
	BaseModel
	// ProcessorItemID is not unique per subscription: manually approved items
	// all carry the manual processor reference, so lookups go through a plain
	// index and the domain layer dedupes by code.
	SubscriptionID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_sub_items_sub;index:idx_sub_items_processor"`
	ProcessorItemID    string           `gorm:"type:varchar(100);not null;index:idx_sub_items_processor"`
	ProcessorProductID string           `gorm:"type:varchar(100)"`
	ProcessorPriceID   string           `gorm:"type:varchar(100)"`
	ItemType           billing.ItemType `gorm:"type:varchar(20);not null"`
	Code               string           `gorm:"type:varchar(100);index"`
	Quantity           int64            `gorm:"not null;default:1"`
	Active             bool             `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (SubscriptionItemModel) TableName() string {
	return "billing_subscription_items"
}

// ToDomain converts the persistence model to a domain SubscriptionItem.
func (m *SubscriptionItemModel) ToDomain() *billing.SubscriptionItem {
	return &billing.SubscriptionItem{
		BaseEntity:         m.BaseModel.ToDomain(),
		SubscriptionID:     m.SubscriptionID,
		ProcessorItemID:    m.ProcessorItemID,
		ProcessorProductID: m.ProcessorProductID,
		ProcessorPriceID:   m.ProcessorPriceID,
		ItemType:           m.ItemType,
		Code:               m.Code,
		Quantity:           m.Quantity,
		Active:             m.Active,
	}
}

// FromDomain populates the model from a domain SubscriptionItem.
func (m *SubscriptionItemModel) FromDomain(item *billing.SubscriptionItem) {
	m.FromDomainBaseEntity(item.BaseEntity)
	m.SubscriptionID = item.SubscriptionID
	m.ProcessorItemID = item.ProcessorItemID
	m.ProcessorProductID = item.ProcessorProductID
	m.ProcessorPriceID = item.ProcessorPriceID
	m.ItemType = item.ItemType
	m.Code = item.Code
	m.Quantity = item.Quantity
	m.Active = item.Active
}

// PaymentRecordModel is the persistence model for invoice outcomes.
type PaymentRecordModel struct {
	BaseModel
	InvoiceID               string                `gorm:"type:varchar(100);not null;uniqueIndex"`
	ProcessorSubscriptionID string                `gorm:"type:varchar(100);not null;index"`
	Amount                  decimal.Decimal       `gorm:"type:numeric(12,2);not null"`
	Currency                string                `gorm:"type:varchar(10);not null"`
	PeriodEnd               *time.Time
	Status                  billing.PaymentStatus `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (PaymentRecordModel) TableName() string {
	return "billing_payment_records"
}

// ToDomain converts the persistence model to a domain PaymentRecord.
func (m *PaymentRecordModel) ToDomain() *billing.PaymentRecord {
	return &billing.PaymentRecord{
		BaseEntity:              m.BaseModel.ToDomain(),
		InvoiceID:               m.InvoiceID,
		ProcessorSubscriptionID: m.ProcessorSubscriptionID,
		Amount:                  m.Amount,
		Currency:                m.Currency,
		PeriodEnd:               m.PeriodEnd,
		Status:                  m.Status,
	}
}

// FromDomain populates the model from a domain PaymentRecord.
func (m *PaymentRecordModel) FromDomain(record *billing.PaymentRecord) {
	m.FromDomainBaseEntity(record.BaseEntity)
	m.InvoiceID = record.InvoiceID
	m.ProcessorSubscriptionID = record.ProcessorSubscriptionID
	m.Amount = record.Amount
	m.Currency = record.Currency
	m.PeriodEnd = record.PeriodEnd
	m.Status = record.Status
}

// ManualPaymentModel is the persistence model for transfer payment requests.
type ManualPaymentModel struct {
	BaseModel
	AccountID  uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Code       string                      `gorm:"type:varchar(100);not null"`
	Kind       billing.ManualPaymentKind   `gorm:"type:varchar(20);not null"`
	Role       billing.ManualPaymentRole   `gorm:"type:varchar(20);not null"`
	Status     billing.ManualPaymentStatus `gorm:"type:varchar(20);not null;index"`
	Reference  string                      `gorm:"type:varchar(200)"`
	ApprovedAt *time.Time
}

// TableName returns the table name for GORM
func (ManualPaymentModel) TableName() string {
	return "billing_manual_payments"
}

// ToDomain converts the persistence model to a domain ManualPaymentRequest.
func (m *ManualPaymentModel) ToDomain() *billing.ManualPaymentRequest {
	return &billing.ManualPaymentRequest{
		BaseEntity: m.BaseModel.ToDomain(),
		AccountID:  m.AccountID,
		Code:       m.Code,
		Kind:       m.Kind,
		Role:       m.Role,
		Status:     m.Status,
		Reference:  m.Reference,
		ApprovedAt: m.ApprovedAt,
	}
}

// FromDomain populates the model from a domain ManualPaymentRequest.
func (m *ManualPaymentModel) FromDomain(request *billing.ManualPaymentRequest) {
	m.FromDomainBaseEntity(request.BaseEntity)
	m.AccountID = request.AccountID
	m.Code = request.Code
	m.Kind = request.Kind
	m.Role = request.Role
	m.Status = request.Status
	m.Reference = request.Reference
	m.ApprovedAt = request.ApprovedAt
}

// ProcessorCustomerModel is the persistence model for account to processor
// customer mappings.
type ProcessorCustomerModel struct {
	BaseModel
	AccountID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ProcessorCustomerID string    `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName returns the table name for GORM
func (ProcessorCustomerModel) TableName() string {
	return "billing_processor_customers"
}

// ToDomain converts the persistence model to a domain ProcessorCustomer.
func (m *ProcessorCustomerModel) ToDomain() *billing.ProcessorCustomer {
	return &billing.ProcessorCustomer{
		BaseEntity:          m.BaseModel.ToDomain(),
		AccountID:           m.AccountID,
		ProcessorCustomerID: m.ProcessorCustomerID,
	}
}

// FromDomain populates the model from a domain ProcessorCustomer.
func (m *ProcessorCustomerModel) FromDomain(customer *billing.ProcessorCustomer) {
	m.FromDomainBaseEntity(customer.BaseEntity)
	m.AccountID = customer.AccountID
	m.ProcessorCustomerID = customer.ProcessorCustomerID
}

// UsageCounterModel is the persistence model for usage counters.
type UsageCounterModel struct {
	BaseModel
	AccountID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_usage_bucket"`
	Feature   billing.Feature `gorm:"type:varchar(50);not null;uniqueIndex:idx_usage_bucket"`
	Period    string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_usage_bucket"`
	Count     int64           `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (UsageCounterModel) TableName() string {
	return "billing_usage_counters"
}

// ToDomain converts the persistence model to a domain UsageCounter.
func (m *UsageCounterModel) ToDomain() *billing.UsageCounter {
	return &billing.UsageCounter{
		BaseEntity: m.BaseModel.ToDomain(),
		AccountID:  m.AccountID,
		Feature:    m.Feature,
		Period:     m.Period,
		Count:      m.Count,
	}
}

// FromDomain populates the model from a domain UsageCounter.
func (m *UsageCounterModel) FromDomain(counter *billing.UsageCounter) {
	m.FromDomainBaseEntity(counter.BaseEntity)
	m.AccountID = counter.AccountID
	m.Feature = counter.Feature
	m.Period = counter.Period
	m.Count = counter.Count
}

// AccountModel is the read-only slice of the identity subsystem's accounts
// table the billing core consumes.
type AccountModel struct {
	ID    uuid.UUID           `gorm:"type:uuid;primary_key"`
	Email string              `gorm:"type:varchar(200)"`
	Kind  billing.AccountKind `gorm:"type:varchar(20);not null;default:'individual'"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account.
func (m *AccountModel) ToDomain() *billing.Account {
	return &billing.Account{
		ID:    m.ID,
		Email: m.Email,
		Kind:  m.Kind,
	}
}
