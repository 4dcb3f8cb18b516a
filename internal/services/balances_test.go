package services

import (
	"context"
	"errors"
	"testing"

	"budget/internal/core"
	"budget/internal/storage/memory"
)

func TestUpdateAccountKeepsBalance(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewBalanceService(store, nil)

	id, err := svc.CreateAccount(ctx, core.Account{Name: "Checking", Balance: dec(t, "750")})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}

	// An edit smuggling a new balance must not stick; balances move only
	// through SetBalance.
	if err := svc.UpdateAccount(ctx, core.Account{
		ID: id, Name: "Checking", Institution: "Chase", Balance: dec(t, "9999"),
	}); err != nil {
		t.Fatalf("UpdateAccount: %v", err)
	}

	a, err := store.GetAccount(ctx, id)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if a.Balance.String() != "750" {
		t.Errorf("balance = %s after metadata edit, want 750", a.Balance)
	}
	if a.Institution != "Chase" {
		t.Errorf("institution = %q, want Chase", a.Institution)
	}
}

func TestCreateAccountRejectsBlankName(t *testing.T) {
	svc := NewBalanceService(memory.New(), nil)
	if _, err := svc.CreateAccount(context.Background(), core.Account{Name: "   "}); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("CreateAccount error = %v, want ErrEmptyName", err)
	}
}

func TestSetBalance(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewBalanceService(store, nil)
	date := core.NewDate(2026, 8, 10)

	acctID, err := svc.CreateAccount(ctx, core.Account{Name: "Checking", Balance: dec(t, "100")})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	debtID, err := svc.CreateDebt(ctx, core.Debt{Name: "Visa", Balance: dec(t, "400")})
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}

	if err := svc.SetBalance(ctx, core.LinkAccount, acctID, dec(t, "-25.5"), date, "overdraft"); err != nil {
		t.Fatalf("SetBalance account: %v", err)
	}
	a, _ := store.GetAccount(ctx, acctID)
	if a.Balance.String() != "-25.5" {
		t.Errorf("account balance = %s, want -25.5", a.Balance)
	}

	if err := svc.SetBalance(ctx, core.LinkDebt, debtID, dec(t, "350"), date, ""); err != nil {
		t.Fatalf("SetBalance debt: %v", err)
	}
	d, _ := store.GetDebt(ctx, debtID)
	if d.Balance.String() != "350" {
		t.Errorf("debt balance = %s, want 350", d.Balance)
	}

	updates, err := store.ListBalanceUpdates(ctx, 10)
	if err != nil {
		t.Fatalf("ListBalanceUpdates: %v", err)
	}
	if len(updates) != 2 {
		t.Errorf("got %d audit rows, want 2", len(updates))
	}
}

func TestSetBalanceErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewBalanceService(store, nil)
	date := core.NewDate(2026, 8, 10)

	debtID, err := svc.CreateDebt(ctx, core.Debt{Name: "Visa", Balance: dec(t, "400")})
	if err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}

	tests := []struct {
		name       string
		entityType core.LinkType
		id         int64
		balance    string
		date       core.Date
		wantErr    error
	}{
		{name: "zero date", entityType: core.LinkDebt, id: debtID, balance: "100", wantErr: core.ErrInvalidDate},
		{name: "negative debt balance", entityType: core.LinkDebt, id: debtID, balance: "-1", date: date, wantErr: core.ErrInvalidAmount},
		{name: "unknown account", entityType: core.LinkAccount, id: 999, balance: "100", date: date, wantErr: core.ErrNotFound},
		{name: "unsupported entity", entityType: core.LinkCategory, id: 1, balance: "100", date: date, wantErr: core.ErrUnsupportedTargetType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SetBalance(ctx, tt.entityType, tt.id, dec(t, tt.balance), tt.date, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SetBalance error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	d, _ := store.GetDebt(ctx, debtID)
	if d.Balance.String() != "400" {
		t.Errorf("debt balance moved to %s after failed edits", d.Balance)
	}
}

func TestCreateCategoryNesting(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewBalanceService(store, nil)

	rootID, err := svc.CreateCategory(ctx, core.Category{Name: "Groceries", AllocationPct: dec(t, "100")})
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	childID, err := svc.CreateCategory(ctx, core.Category{Name: "Produce", ParentID: rootID})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	// Only one level of nesting is allowed.
	if _, err := svc.CreateCategory(ctx, core.Category{Name: "Apples", ParentID: childID}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("grandchild error = %v, want ErrNotFound", err)
	}
	if _, err := svc.CreateCategory(ctx, core.Category{Name: "Orphan", ParentID: 999}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("missing parent error = %v, want ErrNotFound", err)
	}
}

func TestSetupCategories(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewBalanceService(store, nil)

	err := svc.SetupCategories(ctx, []core.Category{
		{Name: "Savings", AllocationPct: dec(t, "60")},
		{Name: "Spending", AllocationPct: dec(t, "30")},
	})
	if !errors.Is(err, core.ErrAllocationTotal) {
		t.Fatalf("short total error = %v, want ErrAllocationTotal", err)
	}

	if err := svc.SetupCategories(ctx, []core.Category{
		{Name: "Savings", AllocationPct: dec(t, "60")},
		{Name: "Spending", AllocationPct: dec(t, "40")},
	}); err != nil {
		t.Fatalf("SetupCategories: %v", err)
	}

	valid, total, err := svc.AllocationTotal(ctx)
	if err != nil {
		t.Fatalf("AllocationTotal: %v", err)
	}
	if !valid || total.String() != "100" {
		t.Errorf("AllocationTotal = %v %s, want valid 100", valid, total)
	}

	// A second setup replaces the previous tree entirely.
	if err := svc.SetupCategories(ctx, []core.Category{
		{Name: "Everything", AllocationPct: dec(t, "100")},
	}); err != nil {
		t.Fatalf("second SetupCategories: %v", err)
	}
	cats, _ := store.ListCategories(ctx)
	if len(cats) != 1 || cats[0].Name != "Everything" {
		t.Errorf("categories after replace = %+v", cats)
	}
}

func TestDashboardTotals(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	balances := NewBalanceService(store, nil)
	expenses := NewExpenseService(store, nil)
	goals := NewGoalService(store, DefaultBehindPolicy())
	reports := NewReportService(store, expenses, goals)

	if _, err := balances.CreateAccount(ctx, core.Account{Name: "Checking", Balance: dec(t, "1500.50")}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, err := balances.CreateAccount(ctx, core.Account{Name: "Savings", Balance: dec(t, "2000")}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, err := balances.CreateDebt(ctx, core.Debt{Name: "Visa", Balance: dec(t, "500.25")}); err != nil {
		t.Fatalf("CreateDebt: %v", err)
	}

	d, err := reports.Dashboard(ctx, 10)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TotalAssets.String() != "3500.5" {
		t.Errorf("total assets = %s, want 3500.5", d.TotalAssets)
	}
	if d.TotalDebts.String() != "500.25" {
		t.Errorf("total debts = %s, want 500.25", d.TotalDebts)
	}
	if d.NetWorth.String() != "3000.25" {
		t.Errorf("net worth = %s, want 3000.25", d.NetWorth)
	}
	if len(d.Accounts) != 2 || len(d.Debts) != 1 {
		t.Errorf("dashboard has %d accounts and %d debts", len(d.Accounts), len(d.Debts))
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedCategories(t, store, catSpec{"Everything", "100"})
	alloc := NewAllocationService(store, nil)
	balances := NewBalanceService(store, nil)
	expenses := NewExpenseService(store, nil)
	goals := NewGoalService(store, DefaultBehindPolicy())
	reports := NewReportService(store, expenses, goals)

	if _, err := alloc.AddPaycheck(ctx, core.NewDate(2026, 8, 1), dec(t, "1000"), ""); err != nil {
		t.Fatalf("AddPaycheck: %v", err)
	}
	acctID, err := balances.CreateAccount(ctx, core.Account{Name: "Checking", Balance: dec(t, "100")})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := balances.SetBalance(ctx, core.LinkAccount, acctID, dec(t, "200"), core.NewDate(2026, 8, 2), ""); err != nil {
		t.Fatalf("SetBalance: %v", err)
	}

	h, err := reports.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(h.Paychecks) != 1 || len(h.BalanceUpdates) != 1 {
		t.Errorf("history has %d paychecks and %d balance updates, want 1 each", len(h.Paychecks), len(h.BalanceUpdates))
	}
}
