package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/storage"
)

func mustCreateAccount(t *testing.T, s *Store, name, balance string) int64 {
	t.Helper()
	id, err := s.CreateAccount(context.Background(), core.Account{
		Name:    name,
		Balance: decimal.RequireFromString(balance),
	})
	if err != nil {
		t.Fatalf("CreateAccount(%s): %v", name, err)
	}
	return id
}

func mustCreateDebt(t *testing.T, s *Store, name, balance string) int64 {
	t.Helper()
	id, err := s.CreateDebt(context.Background(), core.Debt{
		Name:    name,
		Balance: decimal.RequireFromString(balance),
	})
	if err != nil {
		t.Fatalf("CreateDebt(%s): %v", name, err)
	}
	return id
}

func TestAccountCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	id := mustCreateAccount(t, s, "Checking", "100")
	a, err := s.GetAccount(ctx, id)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if a.Name != "Checking" || a.Balance.String() != "100" {
		t.Errorf("stored account = %+v", a)
	}

	a.Institution = "Chase"
	if err := s.UpdateAccount(ctx, a); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}
	a, _ = s.GetAccount(ctx, id)
	if a.Institution != "Chase" {
		t.Errorf("institution = %q after update", a.Institution)
	}

	if _, err := s.GetAccount(ctx, 999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetAccount(999) error = %v, want ErrNotFound", err)
	}
	if err := s.UpdateAccount(ctx, core.Account{ID: 999, Name: "x"}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateAccount(999) error = %v, want ErrNotFound", err)
	}
}

func TestListAccountsOrderedByID(t *testing.T) {
	ctx := context.Background()
	s := New()

	mustCreateAccount(t, s, "Zeta", "1")
	mustCreateAccount(t, s, "Alpha", "2")
	mustCreateAccount(t, s, "Mid", "3")

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 3 {
		t.Fatalf("got %d accounts, want 3", len(accounts))
	}
	for i := 1; i < len(accounts); i++ {
		if accounts[i].ID <= accounts[i-1].ID {
			t.Errorf("accounts out of id order: %d before %d", accounts[i-1].ID, accounts[i].ID)
		}
	}
}

func TestSetBalanceWritesAudit(t *testing.T) {
	ctx := context.Background()
	s := New()
	id := mustCreateAccount(t, s, "Checking", "100")

	audit := core.BalanceUpdate{
		Date:       core.NewDate(2026, 8, 1),
		EntityType: core.LinkAccount,
		EntityID:   id,
		OldBalance: decimal.RequireFromString("100"),
		NewBalance: decimal.RequireFromString("250"),
		Note:       "correction",
	}
	if err := s.SetAccountBalance(ctx, id, decimal.RequireFromString("250"), audit); err != nil {
		t.Fatalf("SetAccountBalance: %v", err)
	}

	a, _ := s.GetAccount(ctx, id)
	if a.Balance.String() != "250" {
		t.Errorf("balance = %s, want 250", a.Balance)
	}

	updates, err := s.ListBalanceUpdates(ctx, 10)
	if err != nil {
		t.Fatalf("ListBalanceUpdates: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("got %d audit rows, want 1", len(updates))
	}
	if updates[0].Note != "correction" || updates[0].NewBalance.String() != "250" {
		t.Errorf("audit row = %+v", updates[0])
	}

	if err := s.SetAccountBalance(ctx, 999, decimal.Zero, audit); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("SetAccountBalance(999) error = %v, want ErrNotFound", err)
	}
	if got, _ := s.ListBalanceUpdates(ctx, 10); len(got) != 1 {
		t.Errorf("failed set wrote an audit row")
	}
}

func TestDeleteCategoryCascades(t *testing.T) {
	ctx := context.Background()
	s := New()

	rootID, err := s.CreateCategory(ctx, core.Category{Name: "Groceries", AllocationPct: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	childID, err := s.CreateCategory(ctx, core.Category{Name: "Produce", ParentID: rootID})
	if err != nil {
		t.Fatalf("CreateCategory child: %v", err)
	}
	otherID, err := s.CreateCategory(ctx, core.Category{Name: "Misc"})
	if err != nil {
		t.Fatalf("CreateCategory other: %v", err)
	}

	if err := s.DeleteCategory(ctx, rootID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, err := s.GetCategory(ctx, childID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("child survived the cascade: %v", err)
	}
	if _, err := s.GetCategory(ctx, otherID); err != nil {
		t.Errorf("unrelated category deleted: %v", err)
	}
}

func TestListCategoriesRootsFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	rootA, _ := s.CreateCategory(ctx, core.Category{Name: "A"})
	child, _ := s.CreateCategory(ctx, core.Category{Name: "A1", ParentID: rootA})
	rootB, _ := s.CreateCategory(ctx, core.Category{Name: "B"})

	cats, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	wantOrder := []int64{rootA, rootB, child}
	if len(cats) != len(wantOrder) {
		t.Fatalf("got %d categories, want %d", len(cats), len(wantOrder))
	}
	for i, id := range wantOrder {
		if cats[i].ID != id {
			t.Errorf("position %d has category %d, want %d", i, cats[i].ID, id)
		}
	}

	tops, err := s.ListTopLevelCategories(ctx)
	if err != nil {
		t.Fatalf("ListTopLevelCategories: %v", err)
	}
	if len(tops) != 2 {
		t.Errorf("got %d top-level categories, want 2", len(tops))
	}
}

func TestReplaceTopLevelCategories(t *testing.T) {
	ctx := context.Background()
	s := New()

	s.CreateCategory(ctx, core.Category{Name: "Old", AllocationPct: decimal.NewFromInt(100)})
	if err := s.ReplaceTopLevelCategories(ctx, []core.Category{
		{Name: "Savings", AllocationPct: decimal.NewFromInt(60)},
		{Name: "Spending", AllocationPct: decimal.NewFromInt(40)},
	}); err != nil {
		t.Fatalf("ReplaceTopLevelCategories: %v", err)
	}

	cats, _ := s.ListCategories(ctx)
	if len(cats) != 2 {
		t.Fatalf("got %d categories after replace, want 2", len(cats))
	}
	if cats[0].Name != "Savings" || cats[1].Name != "Spending" {
		t.Errorf("replaced set = [%s %s]", cats[0].Name, cats[1].Name)
	}
}

func TestApplyPaycheckAndCategoryActivity(t *testing.T) {
	ctx := context.Background()
	s := New()

	catID, _ := s.CreateCategory(ctx, core.Category{Name: "Savings", AllocationPct: decimal.NewFromInt(100)})

	pid, err := s.ApplyPaycheck(ctx,
		core.Paycheck{Date: core.NewDate(2026, 8, 1), Amount: decimal.NewFromInt(1000)},
		[]core.Allocation{{CategoryID: catID, Amount: decimal.NewFromInt(1000)}},
	)
	if err != nil {
		t.Fatalf("ApplyPaycheck: %v", err)
	}
	if pid == 0 {
		t.Fatal("expected nonzero paycheck id")
	}

	if _, err := s.CreateExpense(ctx, core.Expense{
		Date: core.NewDate(2026, 8, 2), Amount: decimal.NewFromInt(300), CategoryID: catID,
	}); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	allocated, spent, err := s.CategoryActivity(ctx, catID)
	if err != nil {
		t.Fatalf("CategoryActivity: %v", err)
	}
	if allocated.String() != "1000" || spent.String() != "300" {
		t.Errorf("activity allocated=%s spent=%s, want 1000 and 300", allocated, spent)
	}

	if _, _, err := s.CategoryActivity(ctx, 999); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("CategoryActivity(999) error = %v, want ErrNotFound", err)
	}
}

func TestApplyIncomeAtomicity(t *testing.T) {
	ctx := context.Background()
	s := New()
	acctID := mustCreateAccount(t, s, "Checking", "100")

	inc := core.Income{Date: core.NewDate(2026, 8, 5), Amount: decimal.NewFromInt(200)}
	_, err := s.ApplyIncome(ctx, inc,
		[]core.AllocationEvent{{TargetType: core.TargetAccount, TargetID: acctID, Amount: decimal.NewFromInt(200)}},
		[]storage.BalanceSet{
			{EntityType: core.LinkAccount, EntityID: acctID, Balance: decimal.NewFromInt(300)},
			{EntityType: core.LinkDebt, EntityID: 999, Balance: decimal.Zero},
		},
	)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("ApplyIncome with unknown debt error = %v, want ErrNotFound", err)
	}

	// The whole apply is rejected; the valid account write must not land.
	a, _ := s.GetAccount(ctx, acctID)
	if a.Balance.String() != "100" {
		t.Errorf("account balance = %s after failed apply, want 100", a.Balance)
	}

	if _, err := s.ApplyIncome(ctx, inc,
		[]core.AllocationEvent{{TargetType: core.TargetAccount, TargetID: acctID, Amount: decimal.NewFromInt(200)}},
		[]storage.BalanceSet{{EntityType: core.LinkAccount, EntityID: acctID, Balance: decimal.NewFromInt(300)}},
	); err != nil {
		t.Fatalf("ApplyIncome: %v", err)
	}
	a, _ = s.GetAccount(ctx, acctID)
	if a.Balance.String() != "300" {
		t.Errorf("account balance = %s, want 300", a.Balance)
	}
}

func TestApplyAccountAllocationAtomicity(t *testing.T) {
	ctx := context.Background()
	s := New()
	acctID := mustCreateAccount(t, s, "Checking", "500")

	alloc := core.AccountAllocation{
		Date:       core.NewDate(2026, 8, 6),
		AccountID:  acctID,
		TargetType: core.TargetExpense,
		TargetID:   999,
		Amount:     decimal.NewFromInt(50),
	}
	_, err := s.ApplyAccountAllocation(ctx, alloc, decimal.NewFromInt(450),
		storage.TargetUpdate{Type: core.TargetExpense, ID: 999, Value: decimal.NewFromInt(50)},
		core.BalanceUpdate{Date: alloc.Date, EntityType: core.LinkAccount, EntityID: acctID},
	)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown expense error = %v, want ErrNotFound", err)
	}

	a, _ := s.GetAccount(ctx, acctID)
	if a.Balance.String() != "500" {
		t.Errorf("account balance = %s after failed apply, want 500", a.Balance)
	}
	if updates, _ := s.ListBalanceUpdates(ctx, 10); len(updates) != 0 {
		t.Errorf("failed apply wrote %d audit rows", len(updates))
	}

	debtID := mustCreateDebt(t, s, "Visa", "200")
	alloc.TargetType = core.TargetDebt
	alloc.TargetID = debtID
	if _, err := s.ApplyAccountAllocation(ctx, alloc, decimal.NewFromInt(450),
		storage.TargetUpdate{Type: core.TargetDebt, ID: debtID, Value: decimal.NewFromInt(150)},
		core.BalanceUpdate{Date: alloc.Date, EntityType: core.LinkAccount, EntityID: acctID},
	); err != nil {
		t.Fatalf("ApplyAccountAllocation: %v", err)
	}

	a, _ = s.GetAccount(ctx, acctID)
	d, _ := s.GetDebt(ctx, debtID)
	if a.Balance.String() != "450" || d.Balance.String() != "150" {
		t.Errorf("balances account=%s debt=%s, want 450 and 150", a.Balance, d.Balance)
	}
}

func TestExpenseListsOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	s := New()
	catID, _ := s.CreateCategory(ctx, core.Category{Name: "Misc", AllocationPct: decimal.NewFromInt(100)})

	old, _ := s.CreateExpense(ctx, core.Expense{Date: core.NewDate(2026, 8, 1), Amount: decimal.NewFromInt(10), CategoryID: catID})
	mid, _ := s.CreateExpense(ctx, core.Expense{Date: core.NewDate(2026, 8, 3), Amount: decimal.NewFromInt(20), CategoryID: catID})
	newest, _ := s.CreateExpense(ctx, core.Expense{Date: core.NewDate(2026, 8, 5), Amount: decimal.NewFromInt(30), CategoryID: catID})

	recent, err := s.ListRecentExpenses(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentExpenses: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != newest || recent[1].ID != mid {
		t.Errorf("recent = %+v, want [%d %d]", recent, newest, mid)
	}

	// Paying off an expense removes it from the pending list.
	e, _ := s.GetExpense(ctx, old)
	e.PaidAmount = e.Amount
	if err := s.UpdateExpense(ctx, e); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	pending, err := s.ListPendingExpenses(ctx, 0)
	if err != nil {
		t.Fatalf("ListPendingExpenses: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("got %d pending, want 2", len(pending))
	}
	for _, p := range pending {
		if p.ID == old {
			t.Error("paid expense still pending")
		}
	}
}

func TestGoalCRUD(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.CreateGoal(ctx, core.Goal{Type: core.GoalCustom, Name: "Vacation", TargetAmount: decimal.NewFromInt(3000)})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	g, err := s.GetGoal(ctx, id)
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}
	g.Name = "Vacation 2027"
	if err := s.UpdateGoal(ctx, g); err != nil {
		t.Fatalf("UpdateGoal: %v", err)
	}

	goals, _ := s.ListGoals(ctx)
	if len(goals) != 1 || goals[0].Name != "Vacation 2027" {
		t.Errorf("goals = %+v", goals)
	}

	if err := s.DeleteGoal(ctx, id); err != nil {
		t.Fatalf("DeleteGoal: %v", err)
	}
	if err := s.DeleteGoal(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}
