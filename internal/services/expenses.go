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

// ExpenseService tracks expenses and transfers of funds from accounts
// toward expenses and debts.
type ExpenseService struct {
	store  storage.Store
	events EventPublisher
}

func NewExpenseService(store storage.Store, events EventPublisher) *ExpenseService {
	return &ExpenseService{store: store, events: events}
}

// AddExpense records an expense against a category with nothing paid yet.
func (s *ExpenseService) AddExpense(ctx context.Context, date core.Date, amount decimal.Decimal, categoryID int64, note, tags string) (int64, error) {
	e := core.Expense{
		Date:       date,
		Amount:     amount,
		CategoryID: categoryID,
		PaidAmount: decimal.Zero,
		Note:       note,
		Tags:       tags,
	}
	if err := e.Validate(); err != nil {
		return 0, err
	}
	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		return 0, fmt.Errorf("category %d: %w", categoryID, err)
	}

	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense recorded",
		applog.FieldExpenseID, id,
		applog.FieldCategoryID, categoryID,
		applog.FieldAmount, amount.StringFixed(2))
	return id, nil
}

// UpdateExpenseMeta changes expense metadata: category, note, tags. Nil
// fields are left untouched. Amount and paid amount are never editable
// here; paid amount moves only through AllocateFromAccount.
func (s *ExpenseService) UpdateExpenseMeta(ctx context.Context, id int64, categoryID *int64, note, tags *string) error {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("expense %d: %w", id, err)
	}
	if categoryID != nil {
		if _, err := s.store.GetCategory(ctx, *categoryID); err != nil {
			return fmt.Errorf("category %d: %w", *categoryID, err)
		}
		e.CategoryID = *categoryID
	}
	if note != nil {
		e.Note = *note
	}
	if tags != nil {
		e.Tags = *tags
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return nil
}

// AllocateFromAccount moves amount from an account toward an expense or
// debt. Preconditions are checked in order, each a distinct failure, and
// nothing is written unless all of them hold; the allocation record,
// balance writes, and audit row land in a single store transaction.
func (s *ExpenseService) AllocateFromAccount(ctx context.Context, accountID int64, targetType core.TargetType, targetID int64, amount decimal.Decimal, date core.Date, note string) (int64, error) {
	if amount.Sign() <= 0 {
		return 0, core.ErrInvalidAmount
	}
	if err := date.Validate(); err != nil {
		return 0, err
	}

	acct, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("account %d: %w", accountID, err)
	}
	if amount.GreaterThan(acct.Balance) {
		return 0, fmt.Errorf("%w: account balance is %s", core.ErrInsufficientFunds, core.FormatAmount(acct.Balance))
	}

	var target storage.TargetUpdate
	switch targetType {
	case core.TargetExpense:
		exp, err := s.store.GetExpense(ctx, targetID)
		if err != nil {
			return 0, fmt.Errorf("expense %d: %w", targetID, err)
		}
		remaining := exp.Remaining()
		if remaining.Sign() <= 0 {
			return 0, fmt.Errorf("expense %d already paid: %w", targetID, core.ErrAlreadySatisfied)
		}
		if amount.GreaterThan(remaining) {
			return 0, fmt.Errorf("%w: expense remaining is %s", core.ErrInsufficientFunds, core.FormatAmount(remaining))
		}
		target = storage.TargetUpdate{
			Type:  core.TargetExpense,
			ID:    targetID,
			Value: core.Round2(exp.PaidAmount.Add(amount)),
		}
	case core.TargetDebt:
		debt, err := s.store.GetDebt(ctx, targetID)
		if err != nil {
			return 0, fmt.Errorf("debt %d: %w", targetID, err)
		}
		if debt.Balance.Sign() <= 0 {
			return 0, fmt.Errorf("debt %d at zero: %w", targetID, core.ErrAlreadySatisfied)
		}
		if amount.GreaterThan(debt.Balance) {
			return 0, fmt.Errorf("%w: debt balance is %s", core.ErrInsufficientFunds, core.FormatAmount(debt.Balance))
		}
		target = storage.TargetUpdate{
			Type:  core.TargetDebt,
			ID:    targetID,
			Value: core.Round2(debt.Balance.Sub(amount)),
		}
	default:
		return 0, fmt.Errorf("%w: %q", core.ErrUnsupportedTargetType, targetType)
	}

	newBalance := core.Round2(acct.Balance.Sub(amount))
	audit := core.BalanceUpdate{
		Date:       date,
		EntityType: core.LinkAccount,
		EntityID:   accountID,
		OldBalance: acct.Balance,
		NewBalance: newBalance,
		Note:       fmt.Sprintf("allocation to %s %d", targetType, targetID),
	}
	alloc := core.AccountAllocation{
		Date:       date,
		AccountID:  accountID,
		TargetType: targetType,
		TargetID:   targetID,
		Amount:     amount,
		Note:       note,
	}

	id, err := s.store.ApplyAccountAllocation(ctx, alloc, newBalance, target, audit)
	if err != nil {
		return 0, fmt.Errorf("apply account allocation: %w", err)
	}

	slog.InfoContext(ctx, "Funds allocated from account",
		applog.FieldAllocationID, id,
		applog.FieldAccountID, accountID,
		applog.FieldTargetType, string(targetType),
		applog.FieldTargetID, targetID,
		applog.FieldAmount, amount.StringFixed(2))

	if s.events != nil {
		if err := s.events.PublishBalanceUpdated(ctx, audit); err != nil {
			slog.ErrorContext(ctx, "Failed to publish balance event",
				applog.FieldAccountID, accountID, applog.FieldError, err)
		}
	}

	return id, nil
}

// CategoryBalance is the derived spending view of one category.
type CategoryBalance struct {
	Category  core.Category
	Allocated decimal.Decimal
	Spent     decimal.Decimal
	Available decimal.Decimal
	Overspent bool
}

// CategoryBalances computes allocated, spent, and available for every
// category, roots first then children.
func (s *ExpenseService) CategoryBalances(ctx context.Context) ([]CategoryBalance, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	balances := make([]CategoryBalance, 0, len(cats))
	for _, c := range cats {
		allocated, spent, err := s.store.CategoryActivity(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("category %d activity: %w", c.ID, err)
		}
		available := core.Round2(allocated.Sub(spent))
		balances = append(balances, CategoryBalance{
			Category:  c,
			Allocated: core.Round2(allocated),
			Spent:     core.Round2(spent),
			Available: available,
			Overspent: available.Sign() < 0,
		})
	}
	return balances, nil
}

// PendingExpenses lists expenses with remaining > 0, most recent first.
func (s *ExpenseService) PendingExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	return s.store.ListPendingExpenses(ctx, limit)
}

// RecentExpenses lists the latest expenses regardless of payment state.
func (s *ExpenseService) RecentExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	return s.store.ListRecentExpenses(ctx, limit)
}
