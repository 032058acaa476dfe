package billing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cuentia/backend/internal/domain/billing"
	"github.com/cuentia/backend/internal/domain/shared"
)

// ErrInvalidItemSet rejects processor item lists that resolve to more than
// one plan item. Such a list would leave the ledger ambiguous about the
// account's plan, so it is refused before any row is touched.
var ErrInvalidItemSet = shared.NewDomainError("INVALID_ITEM_SET", "Item list resolves to more than one plan")

// LineItem is a processor subscription line item as seen by the reconciler.
type LineItem struct {
	ProcessorItemID string
	ProductID       string
	PriceID         string
	// MetadataType is the processor price metadata "type" field: plan, bot
	// or anything else (treated as addon).
	MetadataType string
	Quantity     int64
}

// classifiedItem is a line item with its resolved ledger type and code.
type classifiedItem struct {
	LineItem
	itemType billing.ItemType
	code     string
}

// planSelection is the plan the item list resolved to, if any.
type planSelection struct {
	Code    string
	PriceID string
}

// ItemReconciler replaces a subscription's item set with the processor's
// authoritative list. Classification happens up front so an invalid list is
// rejected without mutating anything; the mutation pass then deactivates all
// items and upserts the incoming ones by processor item ID.
type ItemReconciler struct {
	itemRepo billing.SubscriptionItemRepository
	catalog  *billing.Catalog
	logger   *zap.Logger
}

// NewItemReconciler creates an ItemReconciler
func NewItemReconciler(itemRepo billing.SubscriptionItemRepository, catalog *billing.Catalog, logger *zap.Logger) *ItemReconciler {
	return &ItemReconciler{
		itemRepo: itemRepo,
		catalog:  catalog,
		logger:   logger,
	}
}

// classify resolves each line item to a ledger type and code. For invited
// accounts a bot item stands in for the plan. Returns ErrInvalidItemSet when
// more than one item classifies as a plan.
func (r *ItemReconciler) classify(items []LineItem, invited bool) ([]classifiedItem, *planSelection, error) {
	classified := make([]classifiedItem, 0, len(items))
	var plan *planSelection

	for _, item := range items {
		ci := classifiedItem{LineItem: item, code: r.resolveCode(item)}
		switch {
		case item.MetadataType == "plan":
			ci.itemType = billing.ItemTypePlan
		case item.MetadataType == "bot" && invited:
			// An invited account's bot is its plan.
			ci.itemType = billing.ItemTypePlan
		case item.MetadataType == "bot":
			ci.itemType = billing.ItemTypeBot
		default:
			ci.itemType = billing.ItemTypeAddon
		}

		if ci.itemType == billing.ItemTypePlan {
			if plan != nil {
				return nil, nil, ErrInvalidItemSet
			}
			plan = &planSelection{Code: ci.code, PriceID: item.PriceID}
		}
		classified = append(classified, ci)
	}

	return classified, plan, nil
}

// apply makes the classified list the subscription's item set: every existing
// item is deactivated, then each incoming item is upserted by processor item
// ID and reactivated.
func (r *ItemReconciler) apply(ctx context.Context, sub *billing.Subscription, items []classifiedItem) error {
	if err := r.itemRepo.DeactivateAll(ctx, sub.ID); err != nil {
		return fmt.Errorf("failed to deactivate items: %w", err)
	}

	for _, ci := range items {
		existing, err := r.itemRepo.FindByProcessorItemID(ctx, sub.ID, ci.ProcessorItemID)
		if err != nil && err != shared.ErrNotFound {
			return fmt.Errorf("failed to look up item: %w", err)
		}
		if existing == nil {
			existing = billing.NewSubscriptionItem(sub.ID, ci.ProcessorItemID)
		}
		existing.Update(ci.itemType, ci.code, ci.ProductID, ci.PriceID, ci.Quantity)
		if err := r.itemRepo.Save(ctx, existing); err != nil {
			return fmt.Errorf("failed to save item: %w", err)
		}

		r.logger.Debug("Reconciled subscription item",
			zap.String("subscription_id", sub.ID.String()),
			zap.String("processor_item_id", ci.ProcessorItemID),
			zap.String("item_type", string(ci.itemType)),
			zap.String("code", ci.code))
	}

	return nil
}

// resolveCode maps a line item to its domain code: the price catalog wins,
// then the processor product ID stands in for unrecognized items.
func (r *ItemReconciler) resolveCode(item LineItem) string {
	if code, ok := r.catalog.CodeForPrice(item.PriceID); ok {
		return code
	}
	return item.ProductID
}
