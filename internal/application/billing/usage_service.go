package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cuentia/backend/internal/domain/billing"
	"github.com/cuentia/backend/internal/domain/shared"
)

// Usage is the read model for one feature's counter in the current period.
type Usage struct {
	Feature billing.Feature `json:"feature"`
	Period  string          `json:"period"`
	Count   int64           `json:"count"`
	// Limit is the plan allowance; Metered is false when the feature is
	// unlimited for the account's plan and Limit is then zero.
	Limit   int  `json:"limit"`
	Metered bool `json:"metered"`
}

// UsageService tracks per-feature consumption. Callers gate work themselves
// (check, act, then record); RecordUsage never blocks an increment.
type UsageService struct {
	usageRepo billing.UsageRepository
	subRepo   billing.SubscriptionRepository
	catalog   *billing.Catalog
	logger    *zap.Logger
}

// NewUsageService creates a new UsageService
func NewUsageService(usageRepo billing.UsageRepository, subRepo billing.SubscriptionRepository, catalog *billing.Catalog, logger *zap.Logger) *UsageService {
	return &UsageService{
		usageRepo: usageRepo,
		subRepo:   subRepo,
		catalog:   catalog,
		logger:    logger,
	}
}

// GetUsage returns the current-period counter together with the plan limit.
// Accounts and periods with no recorded usage read as zero.
func (s *UsageService) GetUsage(ctx context.Context, accountID uuid.UUID, feature billing.Feature) (*Usage, error) {
	now := time.Now()
	period := billing.PeriodKey(feature, now)

	usage := &Usage{
		Feature: feature,
		Period:  period,
	}

	counter, err := s.usageRepo.Find(ctx, accountID, feature, period)
	if err != nil && err != shared.ErrNotFound {
		return nil, fmt.Errorf("failed to find usage counter: %w", err)
	}
	if counter != nil {
		usage.Count = counter.Count
	}

	usage.Limit, usage.Metered = s.catalog.UsageLimit(feature, s.currentPlanCode(ctx, accountID, now))
	return usage, nil
}

// CheckQuota returns shared.ErrQuotaExceeded when the feature's allowance for
// the current period is used up.
func (s *UsageService) CheckQuota(ctx context.Context, accountID uuid.UUID, feature billing.Feature) error {
	usage, err := s.GetUsage(ctx, accountID, feature)
	if err != nil {
		return err
	}
	if usage.Metered && usage.Count >= int64(usage.Limit) {
		return shared.ErrQuotaExceeded
	}
	return nil
}

// RecordUsage adds consumed units to the current-period counter, creating it
// on first use.
func (s *UsageService) RecordUsage(ctx context.Context, accountID uuid.UUID, feature billing.Feature, amount int64) error {
	period := billing.PeriodKey(feature, time.Now())

	counter, err := s.usageRepo.Find(ctx, accountID, feature, period)
	if err != nil {
		if err != shared.ErrNotFound {
			return fmt.Errorf("failed to find usage counter: %w", err)
		}
		counter = billing.NewUsageCounter(accountID, feature, period)
	}
	if err := counter.Increment(amount); err != nil {
		return err
	}
	if err := s.usageRepo.Save(ctx, counter); err != nil {
		return fmt.Errorf("failed to save usage counter: %w", err)
	}

	s.logger.Debug("Usage recorded",
		zap.String("account_id", accountID.String()),
		zap.String("feature", string(feature)),
		zap.String("period", period),
		zap.Int64("count", counter.Count))

	return nil
}

// currentPlanCode resolves the plan the account's limits derive from; the
// trial allowance applies when there is no entitled subscription.
func (s *UsageService) currentPlanCode(ctx context.Context, accountID uuid.UUID, now time.Time) string {
	sub, err := s.subRepo.FindCurrentByAccount(ctx, accountID)
	if err != nil || !sub.IsEntitled(now) {
		return billing.PlanTrial
	}
	return sub.PlanCode
}
