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

// BalanceService manages accounts, debts, and the category tree,
// including direct balance edits with their audit trail.
type BalanceService struct {
	store  storage.Store
	events EventPublisher
}

func NewBalanceService(store storage.Store, events EventPublisher) *BalanceService {
	return &BalanceService{store: store, events: events}
}

func (s *BalanceService) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = core.Today()
	}
	return s.store.CreateAccount(ctx, a)
}

// UpdateAccount edits account metadata. The balance is not touched here;
// balance changes go through SetBalance so the audit trail stays intact.
func (s *BalanceService) UpdateAccount(ctx context.Context, a core.Account) error {
	current, err := s.store.GetAccount(ctx, a.ID)
	if err != nil {
		return fmt.Errorf("account %d: %w", a.ID, err)
	}
	a.Balance = current.Balance
	a.CreatedAt = current.CreatedAt
	if err := a.Validate(); err != nil {
		return err
	}
	return s.store.UpdateAccount(ctx, a)
}

func (s *BalanceService) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *BalanceService) CreateDebt(ctx context.Context, d core.Debt) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = core.Today()
	}
	return s.store.CreateDebt(ctx, d)
}

func (s *BalanceService) UpdateDebt(ctx context.Context, d core.Debt) error {
	current, err := s.store.GetDebt(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("debt %d: %w", d.ID, err)
	}
	d.Balance = current.Balance
	d.CreatedAt = current.CreatedAt
	if err := d.Validate(); err != nil {
		return err
	}
	return s.store.UpdateDebt(ctx, d)
}

func (s *BalanceService) ListDebts(ctx context.Context) ([]core.Debt, error) {
	return s.store.ListDebts(ctx)
}

// SetBalance edits an account or debt balance directly and appends the
// audit row recording old and new values, in one transaction.
func (s *BalanceService) SetBalance(ctx context.Context, entityType core.LinkType, id int64, balance decimal.Decimal, date core.Date, note string) error {
	if err := date.Validate(); err != nil {
		return err
	}
	balance = core.Round2(balance)

	var old decimal.Decimal
	switch entityType {
	case core.LinkAccount:
		acct, err := s.store.GetAccount(ctx, id)
		if err != nil {
			return fmt.Errorf("account %d: %w", id, err)
		}
		old = acct.Balance
	case core.LinkDebt:
		debt, err := s.store.GetDebt(ctx, id)
		if err != nil {
			return fmt.Errorf("debt %d: %w", id, err)
		}
		if balance.Sign() < 0 {
			return core.ErrInvalidAmount
		}
		old = debt.Balance
	default:
		return fmt.Errorf("%w: %q", core.ErrUnsupportedTargetType, entityType)
	}

	audit := core.BalanceUpdate{
		Date:       date,
		EntityType: entityType,
		EntityID:   id,
		OldBalance: old,
		NewBalance: balance,
		Note:       note,
	}

	var err error
	if entityType == core.LinkAccount {
		err = s.store.SetAccountBalance(ctx, id, balance, audit)
	} else {
		err = s.store.SetDebtBalance(ctx, id, balance, audit)
	}
	if err != nil {
		return fmt.Errorf("set %s balance: %w", entityType, err)
	}

	slog.InfoContext(ctx, "Balance updated",
		applog.FieldEntityType, string(entityType),
		applog.FieldEntityID, id,
		applog.FieldOldBalance, old.StringFixed(2),
		applog.FieldNewBalance, balance.StringFixed(2))

	if s.events != nil {
		if err := s.events.PublishBalanceUpdated(ctx, audit); err != nil {
			slog.ErrorContext(ctx, "Failed to publish balance event",
				applog.FieldEntityID, id, applog.FieldError, err)
		}
	}
	return nil
}

func (s *BalanceService) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	if c.ParentID > 0 {
		parent, err := s.store.GetCategory(ctx, c.ParentID)
		if err != nil {
			return 0, fmt.Errorf("parent category %d: %w", c.ParentID, err)
		}
		if !parent.IsTopLevel() {
			// One level of nesting only.
			return 0, fmt.Errorf("category %d is not top-level: %w", c.ParentID, core.ErrNotFound)
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = core.Today()
	}
	return s.store.CreateCategory(ctx, c)
}

func (s *BalanceService) UpdateCategory(ctx context.Context, id int64, name string, pct decimal.Decimal) error {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("category %d: %w", id, err)
	}
	c.Name = name
	c.AllocationPct = pct
	if err := c.Validate(); err != nil {
		return err
	}
	return s.store.UpdateCategory(ctx, c)
}

// DeleteCategory removes a category; deleting a root cascades to its
// children.
func (s *BalanceService) DeleteCategory(ctx context.Context, id int64) error {
	return s.store.DeleteCategory(ctx, id)
}

// SetupCategories replaces the whole category tree with a fresh set of
// top-level categories whose percentages must total 100.
func (s *BalanceService) SetupCategories(ctx context.Context, cats []core.Category) error {
	percents := make([]decimal.Decimal, len(cats))
	for i, c := range cats {
		if err := c.Validate(); err != nil {
			return err
		}
		percents[i] = c.AllocationPct
	}
	if !ValidateAllocationTotal(percents) {
		total := decimal.Zero
		for _, p := range percents {
			total = total.Add(p)
		}
		return fmt.Errorf("%w: current total %s%%", core.ErrAllocationTotal, total.StringFixed(2))
	}

	now := core.Today()
	for i := range cats {
		cats[i].ParentID = 0
		if cats[i].CreatedAt.IsZero() {
			cats[i].CreatedAt = now
		}
	}
	if err := s.store.ReplaceTopLevelCategories(ctx, cats); err != nil {
		return fmt.Errorf("replace categories: %w", err)
	}

	slog.InfoContext(ctx, "Category tree replaced", applog.FieldCategories, len(cats))
	return nil
}

// AllocationTotal returns whether the top-level percentages currently
// total 100 (within the paycheck tolerance) and what the total is.
func (s *BalanceService) AllocationTotal(ctx context.Context) (bool, decimal.Decimal, error) {
	cats, err := s.store.ListTopLevelCategories(ctx)
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("list top-level categories: %w", err)
	}
	total := decimal.Zero
	for _, c := range cats {
		total = total.Add(c.AllocationPct)
	}
	valid := total.Sub(hundred).Abs().LessThanOrEqual(paycheckTolerance)
	return valid, total, nil
}
