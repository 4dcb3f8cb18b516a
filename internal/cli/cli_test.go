package cli

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/services"
)

func TestParseCategorySpec(t *testing.T) {
	cats, err := parseCategorySpec("Savings:40, Groceries:20,Misc:40")
	if err != nil {
		t.Fatalf("parseCategorySpec() error = %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("got %d categories, want 3", len(cats))
	}
	if cats[0].Name != "Savings" || !cats[0].AllocationPct.Equal(decimal.NewFromInt(40)) {
		t.Errorf("first category = %+v, want Savings at 40", cats[0])
	}
	if cats[1].Name != "Groceries" {
		t.Errorf("second category name = %q, want Groceries (whitespace trimmed)", cats[1].Name)
	}

	if _, err := parseCategorySpec("NoPercent"); err == nil {
		t.Error("parseCategorySpec(NoPercent) error = nil, want error")
	}
	if _, err := parseCategorySpec("Bad:notanumber"); err == nil {
		t.Error("parseCategorySpec(Bad:notanumber) error = nil, want error")
	}
}

func TestTargetFlags(t *testing.T) {
	var targets targetFlags

	if err := targets.Set("account:1:60"); err != nil {
		t.Fatalf("Set(account:1:60) error = %v", err)
	}
	if err := targets.Set("debt:2:40"); err != nil {
		t.Fatalf("Set(debt:2:40) error = %v", err)
	}

	if len(targets) != 2 {
		t.Fatalf("got %d targets, want 2", len(targets))
	}
	if targets[0].Type != core.TargetAccount || targets[0].ID != 1 || !targets[0].Percent.Equal(decimal.NewFromInt(60)) {
		t.Errorf("first target = %+v, want account:1:60", targets[0])
	}

	for _, bad := range []string{"account:1", "account:x:60", "account:1:sixty"} {
		if err := targets.Set(bad); err == nil {
			t.Errorf("Set(%q) error = nil, want error", bad)
		}
	}
}

func TestDefaultCategoriesTotalHundred(t *testing.T) {
	cats := defaultCategories()
	percents := make([]decimal.Decimal, len(cats))
	for i, c := range cats {
		percents[i] = c.AllocationPct
	}
	if !services.ValidateAllocationTotal(percents) {
		t.Error("default categories do not total 100%")
	}
}

func TestRenderDashboard(t *testing.T) {
	days := 10
	d := services.Dashboard{
		Accounts: []core.Account{
			{ID: 1, Name: "Checking", Type: "checking", Balance: decimal.NewFromFloat(1500.50)},
		},
		Debts: []core.Debt{
			{ID: 1, Name: "Card", Type: "credit_card", Balance: decimal.NewFromInt(500)},
		},
		Categories: []services.CategoryBalance{
			{
				Category:  core.Category{ID: 1, Name: "Groceries", AllocationPct: decimal.NewFromInt(20)},
				Allocated: decimal.NewFromInt(200),
				Spent:     decimal.NewFromInt(250),
				Available: decimal.NewFromInt(-50),
				Overspent: true,
			},
		},
		Goals: []core.GoalProgress{
			{
				GoalID:        1,
				Name:          "Emergency fund",
				Type:          core.GoalTargetBalance,
				TargetAmount:  decimal.NewFromInt(10000),
				CurrentAmount: decimal.NewFromInt(4000),
				Remaining:     decimal.NewFromInt(6000),
				DaysRemaining: &days,
				DailyNeeded:   decimal.NewNullDecimal(decimal.NewFromInt(600)),
				Status:        core.StatusActive,
				Behind:        true,
			},
		},
		TotalAssets: decimal.NewFromFloat(1500.50),
		TotalDebts:  decimal.NewFromInt(500),
		NetWorth:    decimal.NewFromFloat(1000.50),
	}

	var b strings.Builder
	renderDashboard(&b, d)
	out := b.String()

	for _, want := range []string{
		"[1] Checking (checking) - $1500.50",
		"[1] Card (credit_card) - $500.00",
		"OVERSPENT",
		"daily_needed=$600.00/day",
		"status=ACTIVE BEHIND",
		"Net worth:     $1000.50",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard output missing %q\n%s", want, out)
		}
	}
}
