// Package services implements the budget engine: paycheck and income
// allocation, expense payment tracking, goal progress, and reporting.
// Services read current state through storage.Store, compute, and write
// back through a single atomic apply per logical operation.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	applog "budget/internal/log"
	"budget/internal/storage"
)

var (
	hundred = decimal.NewFromInt(100)

	// paycheckTolerance is the allowed drift of the top-level category
	// percentage total from 100 before a paycheck may be allocated.
	paycheckTolerance = decimal.NewFromFloat(0.01)
)

// AllocationTarget is one percentage-weighted target of an income posting.
type AllocationTarget struct {
	Type    core.TargetType
	ID      int64
	Percent decimal.Decimal
}

// AllocationShare is a target with its computed share of the amount.
type AllocationShare struct {
	Target AllocationTarget
	Amount decimal.Decimal
}

// ValidateAllocationTotal reports whether the percentages round-trip to
// exactly 100.00 after cent rounding.
func ValidateAllocationTotal(percents []decimal.Decimal) bool {
	total := decimal.Zero
	for _, p := range percents {
		total = total.Add(p)
	}
	return core.Round2(total).Equal(hundred)
}

// ComputeAllocationAmounts splits amount across the weighted targets so
// the shares sum exactly to Round2(amount).
//
// Each share is Round2(amount * percent / 100). Independent rounding can
// leave a remainder; a nonzero remainder is added to the share of the
// target with the largest percentage weight, ties broken by first
// occurrence. An empty target list yields an empty result.
func ComputeAllocationAmounts(amount decimal.Decimal, targets []AllocationTarget) []AllocationShare {
	if len(targets) == 0 {
		return nil
	}

	shares := make([]AllocationShare, len(targets))
	allocated := decimal.Zero
	for i, t := range targets {
		share := core.Round2(amount.Mul(t.Percent).Div(hundred))
		shares[i] = AllocationShare{Target: t, Amount: share}
		allocated = allocated.Add(share)
	}

	remainder := core.Round2(amount).Sub(allocated)
	if !remainder.IsZero() {
		biggest := 0
		for i := 1; i < len(targets); i++ {
			if targets[i].Percent.GreaterThan(targets[biggest].Percent) {
				biggest = i
			}
		}
		shares[biggest].Amount = core.Round2(shares[biggest].Amount.Add(remainder))
	}

	return shares
}

// AllocationService posts paychecks and income against the store.
type AllocationService struct {
	store  storage.Store
	events EventPublisher
}

func NewAllocationService(store storage.Store, events EventPublisher) *AllocationService {
	return &AllocationService{store: store, events: events}
}

// AddPaycheck records a paycheck and splits it across the top-level
// categories in one transaction.
//
// Every category except the last (by id order) receives its rounded
// percentage share; the last receives the residual amount − running
// total, so the allocations always sum exactly to the paycheck amount.
// This residual rule intentionally differs from the largest-weight
// remainder rule in ComputeAllocationAmounts; the two call sites keep
// their own policies.
func (s *AllocationService) AddPaycheck(ctx context.Context, date core.Date, amount decimal.Decimal, note string) (int64, error) {
	p := core.Paycheck{Date: date, Amount: amount, Note: note}
	if err := p.Validate(); err != nil {
		return 0, err
	}

	cats, err := s.store.ListTopLevelCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("list top-level categories: %w", err)
	}
	if len(cats) == 0 {
		return 0, core.ErrNoCategories
	}

	total := decimal.Zero
	for _, c := range cats {
		total = total.Add(c.AllocationPct)
	}
	if total.Sub(hundred).Abs().GreaterThan(paycheckTolerance) {
		return 0, fmt.Errorf("%w: current total %s%%", core.ErrAllocationTotal, total.StringFixed(2))
	}

	allocs := make([]core.Allocation, len(cats))
	running := decimal.Zero
	for i, c := range cats {
		var share decimal.Decimal
		if i == len(cats)-1 {
			share = core.Round2(amount.Sub(running))
		} else {
			share = core.Round2(amount.Mul(c.AllocationPct).Div(hundred))
			running = running.Add(share)
		}
		allocs[i] = core.Allocation{CategoryID: c.ID, Amount: share}
	}

	id, err := s.store.ApplyPaycheck(ctx, p, allocs)
	if err != nil {
		return 0, fmt.Errorf("apply paycheck: %w", err)
	}

	slog.InfoContext(ctx, "Paycheck allocated",
		applog.FieldPaycheckID, id,
		applog.FieldAmount, amount.StringFixed(2),
		applog.FieldCategories, len(allocs))

	if s.events != nil {
		if err := s.events.PublishPaycheckAllocated(ctx, id, amount); err != nil {
			slog.ErrorContext(ctx, "Failed to publish paycheck event",
				applog.FieldPaycheckID, id, applog.FieldError, err)
			// Paycheck is persisted; event delivery is best effort.
		}
	}

	return id, nil
}

// PostIncome records an income transaction and applies the computed
// shares as balance deltas: added to account balances, subtracted from
// debt balances floored at zero. One allocation event is persisted per
// target, atomically with the transaction and the balance writes.
func (s *AllocationService) PostIncome(ctx context.Context, date core.Date, amount decimal.Decimal, note string, targets []AllocationTarget) (int64, error) {
	if amount.Sign() <= 0 {
		return 0, core.ErrInvalidAmount
	}
	if err := date.Validate(); err != nil {
		return 0, err
	}

	percents := make([]decimal.Decimal, len(targets))
	for i, t := range targets {
		percents[i] = t.Percent
	}
	if !ValidateAllocationTotal(percents) {
		total := decimal.Zero
		for _, p := range percents {
			total = total.Add(p)
		}
		return 0, fmt.Errorf("%w: current total %s%%", core.ErrAllocationTotal, total.StringFixed(2))
	}

	shares := ComputeAllocationAmounts(amount, targets)

	events := make([]core.AllocationEvent, 0, len(shares))
	balances := make([]storage.BalanceSet, 0, len(shares))
	for _, sh := range shares {
		switch sh.Target.Type {
		case core.TargetAccount:
			acct, err := s.store.GetAccount(ctx, sh.Target.ID)
			if err != nil {
				return 0, fmt.Errorf("account %d: %w", sh.Target.ID, err)
			}
			balances = append(balances, storage.BalanceSet{
				EntityType: core.LinkAccount,
				EntityID:   acct.ID,
				Balance:    core.Round2(acct.Balance.Add(sh.Amount)),
			})
		case core.TargetDebt:
			debt, err := s.store.GetDebt(ctx, sh.Target.ID)
			if err != nil {
				return 0, fmt.Errorf("debt %d: %w", sh.Target.ID, err)
			}
			next := core.Round2(debt.Balance.Sub(sh.Amount))
			if next.Sign() < 0 {
				next = decimal.Zero // debt balance floor
			}
			balances = append(balances, storage.BalanceSet{
				EntityType: core.LinkDebt,
				EntityID:   debt.ID,
				Balance:    next,
			})
		default:
			return 0, fmt.Errorf("%w: %q", core.ErrUnsupportedTargetType, sh.Target.Type)
		}
		events = append(events, core.AllocationEvent{
			TargetType: sh.Target.Type,
			TargetID:   sh.Target.ID,
			Amount:     sh.Amount,
		})
	}

	inc := core.Income{Date: date, Amount: amount, Note: note}
	id, err := s.store.ApplyIncome(ctx, inc, events, balances)
	if err != nil {
		return 0, fmt.Errorf("apply income: %w", err)
	}

	slog.InfoContext(ctx, "Income posted",
		applog.FieldIncomeID, id,
		applog.FieldAmount, amount.StringFixed(2),
		applog.FieldTargets, len(targets))

	return id, nil
}
