// Package memory is an in-memory storage.Store used by tests and the
// memory backend. All operations take one lock, so every apply is
// trivially atomic.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/storage"
)

type Store struct {
	mu sync.Mutex

	accounts   map[int64]core.Account
	debts      map[int64]core.Debt
	categories map[int64]core.Category
	expenses   map[int64]core.Expense
	goals      map[int64]core.Goal

	paychecks   []core.Paycheck
	allocations []core.Allocation
	incomes     []core.Income
	events      []core.AllocationEvent
	transfers   []core.AccountAllocation
	audits      []core.BalanceUpdate

	nextID int64
}

func New() *Store {
	return &Store{
		accounts:   make(map[int64]core.Account),
		debts:      make(map[int64]core.Debt),
		categories: make(map[int64]core.Category),
		expenses:   make(map[int64]core.Expense),
		goals:      make(map[int64]core.Goal),
	}
}

func (s *Store) nextIDLocked() int64 {
	s.nextID++
	return s.nextID
}

// Accounts

func (s *Store) CreateAccount(_ context.Context, a core.Account) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextIDLocked()
	s.accounts[a.ID] = a
	return a.ID, nil
}

func (s *Store) GetAccount(_ context.Context, id int64) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	return a, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateAccount(_ context.Context, a core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[a.ID]; !ok {
		return fmt.Errorf("account %d: %w", a.ID, core.ErrNotFound)
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *Store) SetAccountBalance(_ context.Context, id int64, balance decimal.Decimal, audit core.BalanceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	a.Balance = balance
	s.accounts[id] = a
	audit.ID = s.nextIDLocked()
	s.audits = append(s.audits, audit)
	return nil
}

// Debts

func (s *Store) CreateDebt(_ context.Context, d core.Debt) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.nextIDLocked()
	s.debts[d.ID] = d
	return d.ID, nil
}

func (s *Store) GetDebt(_ context.Context, id int64) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debts[id]
	if !ok {
		return core.Debt{}, fmt.Errorf("debt %d: %w", id, core.ErrNotFound)
	}
	return d, nil
}

func (s *Store) ListDebts(_ context.Context) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Debt, 0, len(s.debts))
	for _, d := range s.debts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateDebt(_ context.Context, d core.Debt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.debts[d.ID]; !ok {
		return fmt.Errorf("debt %d: %w", d.ID, core.ErrNotFound)
	}
	s.debts[d.ID] = d
	return nil
}

func (s *Store) SetDebtBalance(_ context.Context, id int64, balance decimal.Decimal, audit core.BalanceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debts[id]
	if !ok {
		return fmt.Errorf("debt %d: %w", id, core.ErrNotFound)
	}
	d.Balance = balance
	s.debts[id] = d
	audit.ID = s.nextIDLocked()
	s.audits = append(s.audits, audit)
	return nil
}

// Categories

func (s *Store) CreateCategory(_ context.Context, c core.Category) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.nextIDLocked()
	s.categories[c.ID] = c
	return c.ID, nil
}

func (s *Store) GetCategory(_ context.Context, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	// Roots first, then children, by id.
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsTopLevel() != out[j].IsTopLevel() {
			return out[i].IsTopLevel()
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) ListTopLevelCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if c.IsTopLevel() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[c.ID]; !ok {
		return fmt.Errorf("category %d: %w", c.ID, core.ErrNotFound)
	}
	s.categories[c.ID] = c
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	for cid, c := range s.categories {
		if c.ParentID == id {
			delete(s.categories, cid)
		}
	}
	delete(s.categories, id)
	return nil
}

func (s *Store) ReplaceTopLevelCategories(_ context.Context, cats []core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = make(map[int64]core.Category, len(cats))
	for _, c := range cats {
		c.ID = s.nextIDLocked()
		s.categories[c.ID] = c
	}
	return nil
}

func (s *Store) CategoryActivity(_ context.Context, id int64) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return decimal.Zero, decimal.Zero, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	allocated := decimal.Zero
	for _, a := range s.allocations {
		if a.CategoryID == id {
			allocated = allocated.Add(a.Amount)
		}
	}
	spent := decimal.Zero
	for _, e := range s.expenses {
		if e.CategoryID == id {
			spent = spent.Add(e.Amount)
		}
	}
	return allocated, spent, nil
}

// Expenses

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.nextIDLocked()
	s.expenses[e.ID] = e
	return e.ID, nil
}

func (s *Store) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[e.ID]; !ok {
		return fmt.Errorf("expense %d: %w", e.ID, core.ErrNotFound)
	}
	s.expenses[e.ID] = e
	return nil
}

func (s *Store) ListPendingExpenses(_ context.Context, limit int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if e.Remaining().Sign() > 0 {
			out = append(out, e)
		}
	}
	sortExpensesDesc(out)
	return clip(out, limit), nil
}

func (s *Store) ListRecentExpenses(_ context.Context, limit int) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, e)
	}
	sortExpensesDesc(out)
	return clip(out, limit), nil
}

// Paychecks

func (s *Store) ApplyPaycheck(_ context.Context, p core.Paycheck, allocs []core.Allocation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.nextIDLocked()
	s.paychecks = append(s.paychecks, p)
	for _, a := range allocs {
		a.ID = s.nextIDLocked()
		a.PaycheckID = p.ID
		s.allocations = append(s.allocations, a)
	}
	return p.ID, nil
}

func (s *Store) ListPaychecks(_ context.Context, limit int) ([]core.Paycheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Paycheck(nil), s.paychecks...)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return clip(out, limit), nil
}

// Income

func (s *Store) ApplyIncome(_ context.Context, inc core.Income, events []core.AllocationEvent, balances []storage.BalanceSet) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range balances {
		switch b.EntityType {
		case core.LinkAccount:
			if _, ok := s.accounts[b.EntityID]; !ok {
				return 0, fmt.Errorf("account %d: %w", b.EntityID, core.ErrNotFound)
			}
		case core.LinkDebt:
			if _, ok := s.debts[b.EntityID]; !ok {
				return 0, fmt.Errorf("debt %d: %w", b.EntityID, core.ErrNotFound)
			}
		}
	}

	inc.ID = s.nextIDLocked()
	s.incomes = append(s.incomes, inc)
	for _, ev := range events {
		ev.ID = s.nextIDLocked()
		ev.IncomeID = inc.ID
		s.events = append(s.events, ev)
	}
	for _, b := range balances {
		switch b.EntityType {
		case core.LinkAccount:
			a := s.accounts[b.EntityID]
			a.Balance = b.Balance
			s.accounts[b.EntityID] = a
		case core.LinkDebt:
			d := s.debts[b.EntityID]
			d.Balance = b.Balance
			s.debts[b.EntityID] = d
		}
	}
	return inc.ID, nil
}

// Account allocations

func (s *Store) ApplyAccountAllocation(_ context.Context, alloc core.AccountAllocation, accountBalance decimal.Decimal, target storage.TargetUpdate, audit core.BalanceUpdate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[alloc.AccountID]
	if !ok {
		return 0, fmt.Errorf("account %d: %w", alloc.AccountID, core.ErrNotFound)
	}
	switch target.Type {
	case core.TargetExpense:
		if _, ok := s.expenses[target.ID]; !ok {
			return 0, fmt.Errorf("expense %d: %w", target.ID, core.ErrNotFound)
		}
	case core.TargetDebt:
		if _, ok := s.debts[target.ID]; !ok {
			return 0, fmt.Errorf("debt %d: %w", target.ID, core.ErrNotFound)
		}
	default:
		return 0, fmt.Errorf("%w: %q", core.ErrUnsupportedTargetType, target.Type)
	}

	a.Balance = accountBalance
	s.accounts[alloc.AccountID] = a

	switch target.Type {
	case core.TargetExpense:
		e := s.expenses[target.ID]
		e.PaidAmount = target.Value
		s.expenses[target.ID] = e
	case core.TargetDebt:
		d := s.debts[target.ID]
		d.Balance = target.Value
		s.debts[target.ID] = d
	}

	alloc.ID = s.nextIDLocked()
	s.transfers = append(s.transfers, alloc)
	audit.ID = s.nextIDLocked()
	s.audits = append(s.audits, audit)
	return alloc.ID, nil
}

// Goals

func (s *Store) CreateGoal(_ context.Context, g core.Goal) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.nextIDLocked()
	s.goals[g.ID] = g
	return g.ID, nil
}

func (s *Store) GetGoal(_ context.Context, id int64) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}
	return g, nil
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[g.ID]; !ok {
		return fmt.Errorf("goal %d: %w", g.ID, core.ErrNotFound)
	}
	s.goals[g.ID] = g
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[id]; !ok {
		return fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}
	delete(s.goals, id)
	return nil
}

// Audit

func (s *Store) ListBalanceUpdates(_ context.Context, limit int) ([]core.BalanceUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.BalanceUpdate(nil), s.audits...)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return clip(out, limit), nil
}

func sortExpensesDesc(out []core.Expense) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
}

func clip[T any](in []T, limit int) []T {
	if limit > 0 && len(in) > limit {
		return in[:limit]
	}
	return in
}

// Compile-time check: Store implements the full persistence surface.
var _ storage.Store = (*Store)(nil)
