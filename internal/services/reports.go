package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/storage"
)

// Dashboard is the aggregate read model backing the dashboard views.
type Dashboard struct {
	Accounts        []core.Account
	Debts           []core.Debt
	Categories      []CategoryBalance
	Goals           []core.GoalProgress
	PendingExpenses []core.Expense
	RecentExpenses  []core.Expense
	TotalAssets     decimal.Decimal
	TotalDebts      decimal.Decimal
	NetWorth        decimal.Decimal
}

// History is the recent-activity view: paychecks, expenses, and balance
// audit rows.
type History struct {
	Paychecks      []core.Paycheck
	Expenses       []core.Expense
	BalanceUpdates []core.BalanceUpdate
}

// ReportService assembles read-only views from the other services.
type ReportService struct {
	store    storage.Store
	expenses *ExpenseService
	goals    *GoalService
}

func NewReportService(store storage.Store, expenses *ExpenseService, goals *GoalService) *ReportService {
	return &ReportService{store: store, expenses: expenses, goals: goals}
}

// Dashboard reads every entity fresh and derives the totals.
func (s *ReportService) Dashboard(ctx context.Context, expenseLimit int) (Dashboard, error) {
	var d Dashboard
	var err error

	if d.Accounts, err = s.store.ListAccounts(ctx); err != nil {
		return d, fmt.Errorf("list accounts: %w", err)
	}
	if d.Debts, err = s.store.ListDebts(ctx); err != nil {
		return d, fmt.Errorf("list debts: %w", err)
	}
	if d.Categories, err = s.expenses.CategoryBalances(ctx); err != nil {
		return d, err
	}
	if d.Goals, err = s.goals.Progress(ctx); err != nil {
		return d, err
	}
	if d.PendingExpenses, err = s.expenses.PendingExpenses(ctx, expenseLimit); err != nil {
		return d, fmt.Errorf("list pending expenses: %w", err)
	}
	if d.RecentExpenses, err = s.expenses.RecentExpenses(ctx, expenseLimit); err != nil {
		return d, fmt.Errorf("list recent expenses: %w", err)
	}

	assets := decimal.Zero
	for _, a := range d.Accounts {
		assets = assets.Add(a.Balance)
	}
	debts := decimal.Zero
	for _, dd := range d.Debts {
		debts = debts.Add(dd.Balance)
	}
	d.TotalAssets = core.Round2(assets)
	d.TotalDebts = core.Round2(debts)
	d.NetWorth = core.Round2(assets.Sub(debts))

	return d, nil
}

// History returns the last limit records of each kind.
func (s *ReportService) History(ctx context.Context, limit int) (History, error) {
	var h History
	var err error

	if h.Paychecks, err = s.store.ListPaychecks(ctx, limit); err != nil {
		return h, fmt.Errorf("list paychecks: %w", err)
	}
	if h.Expenses, err = s.store.ListRecentExpenses(ctx, limit); err != nil {
		return h, fmt.Errorf("list expenses: %w", err)
	}
	if h.BalanceUpdates, err = s.store.ListBalanceUpdates(ctx, limit); err != nil {
		return h, fmt.Errorf("list balance updates: %w", err)
	}
	return h, nil
}
