package billing

import (
	"github.com/google/uuid"

	"github.com/cuentia/backend/internal/domain/shared"
)

// SubscriptionItem mirrors one processor line item. Reconciliation against the
// processor's item list is full-replace: items absent from the latest list are
// deactivated, never deleted, so history survives.
type SubscriptionItem struct {
	shared.BaseEntity
	SubscriptionID uuid.UUID
	// ProcessorItemID identifies the processor line item, or
	// ManualProcessorRef for manually granted items.
	ProcessorItemID    string
	ProcessorProductID string
	ProcessorPriceID   string
	ItemType           ItemType
	Code               string
	Quantity           int64
	Active             bool
}

// NewSubscriptionItem creates an active item for a subscription.
func NewSubscriptionItem(subscriptionID uuid.UUID, processorItemID string) *SubscriptionItem {
	return &SubscriptionItem{
		BaseEntity:      shared.NewBaseEntity(),
		SubscriptionID:  subscriptionID,
		ProcessorItemID: processorItemID,
		Quantity:        1,
		Active:          true,
	}
}

// NewManualItem creates an item granted through an approved transfer payment.
func NewManualItem(subscriptionID uuid.UUID, itemType ItemType, code string) *SubscriptionItem {
	return &SubscriptionItem{
		BaseEntity:         shared.NewBaseEntity(),
		SubscriptionID:     subscriptionID,
		ProcessorItemID:    ManualProcessorRef,
		ProcessorProductID: ManualProcessorRef,
		ProcessorPriceID:   ManualProcessorRef,
		ItemType:           itemType,
		Code:               code,
		Quantity:           1,
		Active:             true,
	}
}

// Update overwrites the mutable fields from the latest processor snapshot and
// reactivates the item.
func (i *SubscriptionItem) Update(itemType ItemType, code, productID, priceID string, quantity int64) {
	i.ItemType = itemType
	i.Code = code
	i.ProcessorProductID = productID
	i.ProcessorPriceID = priceID
	i.Quantity = quantity
	i.Active = true
}

// Deactivate marks the item as no longer part of the subscription.
func (i *SubscriptionItem) Deactivate() {
	i.Active = false
}
