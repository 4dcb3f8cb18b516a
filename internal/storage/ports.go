// Package storage persists the budget domain. The Store interface is what
// the engine services depend on; SQLiteRepository implements it against
// SQLite and memory.Store implements it in memory for tests and the
// memory backend.
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// BalanceSet is a new balance to write for one account or debt as part of
// an atomic apply.
type BalanceSet struct {
	EntityType core.LinkType // account or debt
	EntityID   int64
	Balance    decimal.Decimal
}

// TargetUpdate is the target-side write of an account allocation: the new
// paid amount of an expense or the new balance of a debt.
type TargetUpdate struct {
	Type  core.TargetType
	ID    int64
	Value decimal.Decimal
}

// AccountStore provides account rows and balance writes. Balance writes
// carry their audit row so both land in one transaction.
type AccountStore interface {
	CreateAccount(ctx context.Context, a core.Account) (int64, error)
	GetAccount(ctx context.Context, id int64) (core.Account, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	UpdateAccount(ctx context.Context, a core.Account) error
	SetAccountBalance(ctx context.Context, id int64, balance decimal.Decimal, audit core.BalanceUpdate) error
}

type DebtStore interface {
	CreateDebt(ctx context.Context, d core.Debt) (int64, error)
	GetDebt(ctx context.Context, id int64) (core.Debt, error)
	ListDebts(ctx context.Context) ([]core.Debt, error)
	UpdateDebt(ctx context.Context, d core.Debt) error
	SetDebtBalance(ctx context.Context, id int64, balance decimal.Decimal, audit core.BalanceUpdate) error
}

// CategoryStore provides the two-level category tree. List order is roots
// first, then children, by id. DeleteCategory cascades to children.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) (int64, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	ListTopLevelCategories(ctx context.Context) ([]core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	ReplaceTopLevelCategories(ctx context.Context, cats []core.Category) error

	// CategoryActivity returns the allocated and spent sums for one
	// category: sum of paycheck allocations into it and sum of expense
	// amounts recorded against it.
	CategoryActivity(ctx context.Context, id int64) (allocated, spent decimal.Decimal, err error)
}

type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (int64, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) error
	ListPendingExpenses(ctx context.Context, limit int) ([]core.Expense, error)
	ListRecentExpenses(ctx context.Context, limit int) ([]core.Expense, error)
}

// PaycheckStore persists a paycheck with its allocation rows atomically.
type PaycheckStore interface {
	ApplyPaycheck(ctx context.Context, p core.Paycheck, allocs []core.Allocation) (int64, error)
	ListPaychecks(ctx context.Context, limit int) ([]core.Paycheck, error)
}

// IncomeStore persists an income transaction, its allocation events, and
// the resulting target balances atomically.
type IncomeStore interface {
	ApplyIncome(ctx context.Context, inc core.Income, events []core.AllocationEvent, balances []BalanceSet) (int64, error)
}

// AllocationStore persists one account-to-target transfer: the allocation
// record, the new source account balance, the target-side update, and the
// balance audit row, all in one transaction.
type AllocationStore interface {
	ApplyAccountAllocation(ctx context.Context, alloc core.AccountAllocation, accountBalance decimal.Decimal, target TargetUpdate, audit core.BalanceUpdate) (int64, error)
}

type GoalStore interface {
	CreateGoal(ctx context.Context, g core.Goal) (int64, error)
	GetGoal(ctx context.Context, id int64) (core.Goal, error)
	ListGoals(ctx context.Context) ([]core.Goal, error)
	UpdateGoal(ctx context.Context, g core.Goal) error
	DeleteGoal(ctx context.Context, id int64) error
}

type AuditStore interface {
	ListBalanceUpdates(ctx context.Context, limit int) ([]core.BalanceUpdate, error)
}

// Store is the full persistence surface the engine operates against.
type Store interface {
	AccountStore
	DebtStore
	CategoryStore
	ExpenseStore
	PaycheckStore
	IncomeStore
	AllocationStore
	GoalStore
	AuditStore
}
