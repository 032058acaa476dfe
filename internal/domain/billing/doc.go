// Package billing contains the subscription ledger: processor customer
// mappings, subscriptions and their items, payment records, manual payment
// requests and usage counters, together with the plan catalog that classifies
// processor line items into plans, bots and addons.
package billing
