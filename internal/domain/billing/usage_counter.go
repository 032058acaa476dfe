package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/cuentia/backend/internal/domain/shared"
)

// ResetPeriod is how often a feature's usage counter starts over.
type ResetPeriod string

const (
	ResetMonthly ResetPeriod = "monthly"
)

// featurePeriods declares the reset period per feature. Every metered feature
// must have an entry here; the period key format is derived from it in exactly
// one place (PeriodKey).
var featurePeriods = map[Feature]ResetPeriod{
	FeatureCfdiAI:     ResetMonthly,
	FeatureBotMessage: ResetMonthly,
}

// PeriodKey returns the counter bucket key for a feature at a point in time.
func PeriodKey(feature Feature, at time.Time) string {
	switch featurePeriods[feature] {
	case ResetMonthly:
		return at.UTC().Format("2006-01")
	default:
		return at.UTC().Format("2006-01")
	}
}

// UsageCounter counts consumption of one feature by one account within one
// period bucket. The (account, feature, period) triple is unique and the
// count only ever grows within a period.
type UsageCounter struct {
	shared.BaseEntity
	AccountID uuid.UUID
	Feature   Feature
	Period    string
	Count     int64
}

// NewUsageCounter creates a zeroed counter for the given bucket.
func NewUsageCounter(accountID uuid.UUID, feature Feature, period string) *UsageCounter {
	return &UsageCounter{
		BaseEntity: shared.NewBaseEntity(),
		AccountID:  accountID,
		Feature:    feature,
		Period:     period,
	}
}

// Increment adds to the counter. Amounts below one are rejected so a bad
// caller can never decrease recorded usage.
func (c *UsageCounter) Increment(amount int64) error {
	if amount < 1 {
		return shared.ErrInvalidInput
	}
	c.Count += amount
	return nil
}
