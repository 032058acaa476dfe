package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/cuentia/backend/internal/domain/shared"
)

// ManualPaymentStatus is the review state of a bank-transfer payment claim.
type ManualPaymentStatus string

const (
	ManualPaymentPending  ManualPaymentStatus = "pending"
	ManualPaymentApproved ManualPaymentStatus = "approved"
	ManualPaymentRejected ManualPaymentStatus = "rejected"
)

// ManualPaymentKind is what the customer says they paid for.
type ManualPaymentKind string

const (
	ManualKindPlan ManualPaymentKind = "plan"
	ManualKindBot  ManualPaymentKind = "bot"
)

// ManualPaymentRole is how an approved payment is applied to the ledger:
// as the account's plan or as an addon item on the existing subscription.
type ManualPaymentRole string

const (
	ManualRolePlan  ManualPaymentRole = "plan"
	ManualRoleAddon ManualPaymentRole = "addon"
)

// ManualPaymentRequest is an operator-reviewed claim that a bank transfer was
// made for a plan or bot. At most one pending request exists per account.
type ManualPaymentRequest struct {
	shared.BaseEntity
	AccountID  uuid.UUID
	Code       string
	Kind       ManualPaymentKind
	Role       ManualPaymentRole
	Status     ManualPaymentStatus
	Reference  string
	ApprovedAt *time.Time
}

// NewManualPaymentRequest creates a pending request. For invited accounts a
// bot purchase acts as the account's plan, so its role is plan rather than
// addon.
func NewManualPaymentRequest(accountID uuid.UUID, code string, kind ManualPaymentKind, invited bool, reference string) *ManualPaymentRequest {
	role := ManualRolePlan
	if kind == ManualKindBot && !invited {
		role = ManualRoleAddon
	}
	return &ManualPaymentRequest{
		BaseEntity: shared.NewBaseEntity(),
		AccountID:  accountID,
		Code:       code,
		Kind:       kind,
		Role:       role,
		Status:     ManualPaymentPending,
		Reference:  reference,
	}
}

// Approve marks the request approved. Only pending requests can be approved.
func (r *ManualPaymentRequest) Approve(at time.Time) error {
	if r.Status != ManualPaymentPending {
		return shared.ErrInvalidState
	}
	r.Status = ManualPaymentApproved
	r.ApprovedAt = &at
	return nil
}

// Reject marks the request rejected. Only pending requests can be rejected.
func (r *ManualPaymentRequest) Reject() error {
	if r.Status != ManualPaymentPending {
		return shared.ErrInvalidState
	}
	r.Status = ManualPaymentRejected
	return nil
}
