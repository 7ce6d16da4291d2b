// Package quota enforces per-plan generation limits. Free accounts get a
// fixed number of scripts per calendar month (UTC); paid accounts are
// unlimited. The check reads current usage and admits or rejects, so two
// concurrent requests near the boundary can both pass. That slack is
// accepted: the limit protects model spend, it is not a billing ledger.
package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reelsmith/internal/core"
)

// ErrQuotaExceeded indicates the user has used up their monthly allowance.
var ErrQuotaExceeded = errors.New("monthly script quota exceeded")

// PlanSource resolves a user's billing plan.
type PlanSource interface {
	GetPlan(ctx context.Context, userID string) (core.Plan, error)
}

// UsageCounter counts scripts created since a point in time.
type UsageCounter interface {
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// Guard makes admit/reject decisions for script generation.
type Guard struct {
	plans     PlanSource
	usage     UsageCounter
	freeLimit int
	now       func() time.Time
}

// NewGuard creates a quota guard. A non-positive freeLimit blocks all free
// generation, which is the safe reading of a misconfigured limit.
func NewGuard(plans PlanSource, usage UsageCounter, freeLimit int) *Guard {
	return &Guard{
		plans:     plans,
		usage:     usage,
		freeLimit: freeLimit,
		now:       time.Now,
	}
}

// CheckAndAdmit returns nil when the user may generate a script now, or
// ErrQuotaExceeded when the free allowance for the current month is spent.
// Lookup failures are returned as-is and never admit by accident.
func (g *Guard) CheckAndAdmit(ctx context.Context, userID string) error {
	plan, err := g.plans.GetPlan(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve plan: %w", err)
	}

	if plan == core.PlanPaid {
		return nil
	}

	used, err := g.usage.CountSince(ctx, userID, monthStartUTC(g.now()))
	if err != nil {
		return fmt.Errorf("failed to count monthly usage: %w", err)
	}

	if used >= g.freeLimit {
		return fmt.Errorf("%w: %d of %d used", ErrQuotaExceeded, used, g.freeLimit)
	}
	return nil
}

// Usage describes a user's standing against their monthly allowance.
type Usage struct {
	Plan  core.Plan
	Used  int
	Limit int // 0 means unlimited
	// ResetsAt is the start of the next calendar month (UTC).
	ResetsAt time.Time
}

// Usage reports current consumption for display purposes.
func (g *Guard) Usage(ctx context.Context, userID string) (Usage, error) {
	plan, err := g.plans.GetPlan(ctx, userID)
	if err != nil {
		return Usage{}, fmt.Errorf("failed to resolve plan: %w", err)
	}

	start := monthStartUTC(g.now())
	used, err := g.usage.CountSince(ctx, userID, start)
	if err != nil {
		return Usage{}, fmt.Errorf("failed to count monthly usage: %w", err)
	}

	usage := Usage{
		Plan:     plan,
		Used:     used,
		ResetsAt: start.AddDate(0, 1, 0),
	}
	if plan != core.PlanPaid {
		usage.Limit = g.freeLimit
	}
	return usage, nil
}

// monthStartUTC returns midnight on the first of t's month, in UTC.
func monthStartUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
