package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/storage"
)

// BehindPolicy is the behind-schedule heuristic: a goal is flagged when
// it is inside WindowDays of its target date and the required daily pace
// exceeds max(target * TargetPct, DailyFloor). The numbers are tunables,
// not business law.
type BehindPolicy struct {
	WindowDays int
	TargetPct  decimal.Decimal
	DailyFloor decimal.Decimal
}

// DefaultBehindPolicy: 30-day window, 2% of target per day, $10/day floor.
func DefaultBehindPolicy() BehindPolicy {
	return BehindPolicy{
		WindowDays: 30,
		TargetPct:  decimal.NewFromFloat(0.02),
		DailyFloor: decimal.NewFromInt(10),
	}
}

// GoalService manages goals and derives their progress. Progress is
// computed fresh on every call from current linked-entity values, never
// cached.
type GoalService struct {
	store  storage.Store
	policy BehindPolicy
}

func NewGoalService(store storage.Store, policy BehindPolicy) *GoalService {
	return &GoalService{store: store, policy: policy}
}

// AddGoal validates and persists a goal. For a debt_payoff goal linked to
// a debt, the debt's current balance is snapshotted as the start amount;
// the snapshot is taken exactly once and never recomputed.
func (s *GoalService) AddGoal(ctx context.Context, g core.Goal) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}

	if g.Type == core.GoalDebtPayoff && g.LinkType == core.LinkDebt && g.LinkID > 0 {
		debt, err := s.store.GetDebt(ctx, g.LinkID)
		if err != nil {
			return 0, fmt.Errorf("debt %d for payoff goal: %w", g.LinkID, err)
		}
		g.StartAmount = decimal.NewNullDecimal(debt.Balance)
	}

	if g.CreatedAt.IsZero() {
		g.CreatedAt = core.Today()
	}

	id, err := s.store.CreateGoal(ctx, g)
	if err != nil {
		return 0, fmt.Errorf("create goal: %w", err)
	}

	slog.InfoContext(ctx, "Goal created",
		applog.FieldGoalID, id,
		applog.FieldGoalType, string(g.Type),
		applog.FieldName, g.Name)
	return id, nil
}

// UpdateGoal replaces a goal's editable fields. Type, start amount, and
// creation date are kept from the stored row.
func (s *GoalService) UpdateGoal(ctx context.Context, g core.Goal) error {
	current, err := s.store.GetGoal(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("goal %d: %w", g.ID, err)
	}
	g.Type = current.Type
	g.StartAmount = current.StartAmount
	g.CreatedAt = current.CreatedAt
	if err := g.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, id int64) error {
	return s.store.DeleteGoal(ctx, id)
}

func (s *GoalService) ListGoals(ctx context.Context) ([]core.Goal, error) {
	return s.store.ListGoals(ctx)
}

// Progress derives the current progress of every goal as of today.
func (s *GoalService) Progress(ctx context.Context) ([]core.GoalProgress, error) {
	return s.ProgressAsOf(ctx, core.Today())
}

// ProgressAsOf derives goal progress against an explicit reference day.
func (s *GoalService) ProgressAsOf(ctx context.Context, today core.Date) ([]core.GoalProgress, error) {
	goals, err := s.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	progress := make([]core.GoalProgress, 0, len(goals))
	for _, g := range goals {
		p, err := s.progressFor(ctx, g, today)
		if err != nil {
			return nil, fmt.Errorf("goal %d progress: %w", g.ID, err)
		}
		progress = append(progress, p)
	}
	return progress, nil
}

func (s *GoalService) progressFor(ctx context.Context, g core.Goal, today core.Date) (core.GoalProgress, error) {
	current, err := s.currentAmount(ctx, g)
	if err != nil {
		return core.GoalProgress{}, err
	}

	var daysRemaining *int
	if !g.TargetDate.IsZero() {
		d := g.TargetDate.DaysSince(today)
		daysRemaining = &d
	}

	target := core.Round2(g.TargetAmount)
	var remaining decimal.Decimal
	var fraction decimal.NullDecimal

	switch g.Type {
	case core.GoalTargetBalance, core.GoalCustom:
		remaining = core.Round2(target.Sub(current))
	case core.GoalContributionCap:
		// The contribution limit overrides target_amount for display.
		target = core.Round2(g.ContributionLimit)
		remaining = core.Round2(target.Sub(current))
	case core.GoalDebtPayoff:
		remaining = core.Round2(current.Sub(target))
		if remaining.Sign() < 0 {
			remaining = decimal.Zero
		}
		start := current
		if g.StartAmount.Valid {
			start = g.StartAmount.Decimal
		}
		denom := start.Sub(target)
		if denom.Sign() > 0 {
			fraction = decimal.NewNullDecimal(core.Round4(start.Sub(current).Div(denom)))
		}
	default:
		return core.GoalProgress{}, fmt.Errorf("%w: %q", core.ErrUnsupportedGoalType, g.Type)
	}

	var dailyNeeded decimal.NullDecimal
	if daysRemaining != nil && *daysRemaining > 0 && remaining.Sign() > 0 {
		dailyNeeded = decimal.NewNullDecimal(core.Round2(remaining.Div(decimal.NewFromInt(int64(*daysRemaining)))))
	}

	status := core.StatusActive
	if remaining.Sign() <= 0 {
		status = core.StatusComplete
	}

	behind := false
	if status == core.StatusActive && dailyNeeded.Valid && daysRemaining != nil && *daysRemaining <= s.policy.WindowDays {
		threshold := target.Mul(s.policy.TargetPct)
		if threshold.LessThan(s.policy.DailyFloor) {
			threshold = s.policy.DailyFloor
		}
		behind = dailyNeeded.Decimal.GreaterThan(threshold)
	}

	return core.GoalProgress{
		GoalID:        g.ID,
		Name:          g.Name,
		Type:          g.Type,
		TargetAmount:  target,
		TargetDate:    g.TargetDate,
		CurrentAmount: core.Round2(current),
		Remaining:     remaining,
		DaysRemaining: daysRemaining,
		DailyNeeded:   dailyNeeded,
		Progress:      fraction,
		Status:        status,
		Behind:        behind,
	}, nil
}

// currentAmount resolves the value a goal measures itself against. A
// linked entity that no longer resolves falls back to the override value
// or zero rather than failing the whole progress listing.
func (s *GoalService) currentAmount(ctx context.Context, g core.Goal) (decimal.Decimal, error) {
	if g.Type == core.GoalCustom && g.CurrentOverride.Valid {
		return g.CurrentOverride.Decimal, nil
	}
	if g.Type == core.GoalContributionCap {
		return g.ContributedSoFar, nil
	}

	if g.LinkID > 0 {
		switch g.LinkType {
		case core.LinkAccount:
			acct, err := s.store.GetAccount(ctx, g.LinkID)
			if err == nil {
				return acct.Balance, nil
			}
			if !errors.Is(err, core.ErrNotFound) {
				return decimal.Zero, err
			}
		case core.LinkDebt:
			debt, err := s.store.GetDebt(ctx, g.LinkID)
			if err == nil {
				return debt.Balance, nil
			}
			if !errors.Is(err, core.ErrNotFound) {
				return decimal.Zero, err
			}
		case core.LinkCategory:
			allocated, spent, err := s.store.CategoryActivity(ctx, g.LinkID)
			if err == nil {
				return allocated.Sub(spent), nil
			}
			if !errors.Is(err, core.ErrNotFound) {
				return decimal.Zero, err
			}
		}
	}

	if g.CurrentOverride.Valid {
		return g.CurrentOverride.Decimal, nil
	}
	return decimal.Zero, nil
}
