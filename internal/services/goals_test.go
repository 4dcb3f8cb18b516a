package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/storage/memory"
)

func singleProgress(t *testing.T, svc *GoalService, today core.Date) core.GoalProgress {
	t.Helper()
	progress, err := svc.ProgressAsOf(context.Background(), today)
	if err != nil {
		t.Fatalf("ProgressAsOf: %v", err)
	}
	if len(progress) != 1 {
		t.Fatalf("got %d progress entries, want 1", len(progress))
	}
	return progress[0]
}

func TestAddGoalSnapshotsDebtStart(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewGoalService(store, DefaultBehindPolicy())

	debtID, err := store.CreateDebt(ctx, core.Debt{Name: "Car loan", Balance: dec(t, "5000")})
	if err != nil {
		t.Fatalf("create debt: %v", err)
	}

	goalID, err := svc.AddGoal(ctx, core.Goal{
		Type:         core.GoalDebtPayoff,
		Name:         "Pay off car",
		LinkType:     core.LinkDebt,
		LinkID:       debtID,
		TargetAmount: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("AddGoal: %v", err)
	}

	g, err := store.GetGoal(ctx, goalID)
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}
	if !g.StartAmount.Valid || g.StartAmount.Decimal.String() != "5000" {
		t.Fatalf("start amount = %+v, want snapshot of 5000", g.StartAmount)
	}

	// The snapshot never moves, even as the debt balance does.
	if err := store.SetDebtBalance(ctx, debtID, dec(t, "2000"), core.BalanceUpdate{
		Date: core.NewDate(2026, 8, 1), EntityType: core.LinkDebt, EntityID: debtID,
		OldBalance: dec(t, "5000"), NewBalance: dec(t, "2000"),
	}); err != nil {
		t.Fatalf("SetDebtBalance: %v", err)
	}
	g, _ = store.GetGoal(ctx, goalID)
	if g.StartAmount.Decimal.String() != "5000" {
		t.Errorf("start amount moved to %s", g.StartAmount.Decimal)
	}
}

func TestAddGoalErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewGoalService(memory.New(), DefaultBehindPolicy())

	tests := []struct {
		name    string
		goal    core.Goal
		wantErr error
	}{
		{name: "unknown type", goal: core.Goal{Type: "teleport", Name: "x"}, wantErr: core.ErrUnsupportedGoalType},
		{name: "blank name", goal: core.Goal{Type: core.GoalCustom, Name: "  "}, wantErr: core.ErrEmptyName},
		{name: "unknown link type", goal: core.Goal{Type: core.GoalCustom, Name: "x", LinkType: "wallet", LinkID: 1}, wantErr: core.ErrUnsupportedLinkType},
		{name: "missing linked debt", goal: core.Goal{Type: core.GoalDebtPayoff, Name: "x", LinkType: core.LinkDebt, LinkID: 999}, wantErr: core.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddGoal(ctx, tt.goal); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddGoal error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDebtPayoffProgress(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewGoalService(store, DefaultBehindPolicy())

	debtID, err := store.CreateDebt(ctx, core.Debt{Name: "Car loan", Balance: dec(t, "5000")})
	if err != nil {
		t.Fatalf("create debt: %v", err)
	}
	if _, err := svc.AddGoal(ctx, core.Goal{
		Type:         core.GoalDebtPayoff,
		Name:         "Pay off car",
		LinkType:     core.LinkDebt,
		LinkID:       debtID,
		TargetAmount: decimal.Zero,
	}); err != nil {
		t.Fatalf("AddGoal: %v", err)
	}

	if err := store.SetDebtBalance(ctx, debtID, dec(t, "2000"), core.BalanceUpdate{
		Date: core.NewDate(2026, 8, 1), EntityType: core.LinkDebt, EntityID: debtID,
		OldBalance: dec(t, "5000"), NewBalance: dec(t, "2000"),
	}); err != nil {
		t.Fatalf("SetDebtBalance: %v", err)
	}

	p := singleProgress(t, svc, core.NewDate(2026, 8, 15))
	if p.CurrentAmount.String() != "2000" {
		t.Errorf("current = %s, want 2000", p.CurrentAmount)
	}
	if p.Remaining.String() != "2000" {
		t.Errorf("remaining = %s, want 2000", p.Remaining)
	}
	if !p.Progress.Valid || p.Progress.Decimal.String() != "0.6" {
		t.Errorf("progress = %+v, want 0.6", p.Progress)
	}
	if p.Status != core.StatusActive {
		t.Errorf("status = %s, want ACTIVE", p.Status)
	}
	if p.DaysRemaining != nil {
		t.Error("days remaining should be nil without a target date")
	}
	if p.DailyNeeded.Valid {
		t.Error("daily needed should be unset without a target date")
	}
}

func TestDebtPayoffComplete(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewGoalService(store, DefaultBehindPolicy())

	debtID, err := store.CreateDebt(ctx, core.Debt{Name: "Visa", Balance: dec(t, "500")})
	if err != nil {
		t.Fatalf("create debt: %v", err)
	}
	if _, err := svc.AddGoal(ctx, core.Goal{
		Type: core.GoalDebtPayoff, Name: "Clear visa",
		LinkType: core.LinkDebt, LinkID: debtID, TargetAmount: decimal.Zero,
	}); err != nil {
		t.Fatalf("AddGoal: %v", err)
	}
	if err := store.SetDebtBalance(ctx, debtID, decimal.Zero, core.BalanceUpdate{
		Date: core.NewDate(2026, 8, 1), EntityType: core.LinkDebt, EntityID: debtID,
		OldBalance: dec(t, "500"), NewBalance: decimal.Zero,
	}); err != nil {
		t.Fatalf("SetDebtBalance: %v", err)
	}

	p := singleProgress(t, svc, core.NewDate(2026, 8, 15))
	if p.Status != core.StatusComplete {
		t.Errorf("status = %s, want COMPLETE", p.Status)
	}
	if !p.Remaining.IsZero() {
		t.Errorf("remaining = %s, want 0", p.Remaining)
	}
	if !p.Progress.Valid || p.Progress.Decimal.String() != "1" {
		t.Errorf("progress = %+v, want 1", p.Progress)
	}
}

func TestTargetBalanceProgress(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewGoalService(store, DefaultBehindPolicy())

	acctID, err := store.CreateAccount(ctx, core.Account{Name: "HYSA", Balance: dec(t, "6500")})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := svc.AddGoal(ctx, core.Goal{
		Type: core.GoalTargetBalance, Name: "Emergency fund",
		LinkType: core.LinkAccount, LinkID: acctID,
		TargetAmount: dec(t, "10000"),
		TargetDate:   core.NewDate(2026, 12, 31),
	}); err != nil {
		t.Fatalf("AddGoal: %v", err)
	}

	// 100 days out, 3500 to go: 35/day needed.
	p := singleProgress(t, svc, core.NewDate(2026, 9, 22))
	if p.CurrentAmount.String() != "6500" || p.Remaining.String() != "3500" {
		t.Errorf("current=%s remaining=%s", p.CurrentAmount, p.Remaining)
	}
	if p.DaysRemaining == nil || *p.DaysRemaining != 100 {
		t.Fatalf("days remaining = %v, want 100", p.DaysRemaining)
	}
	if !p.DailyNeeded.Valid || p.DailyNeeded.Decimal.String() != "35" {
		t.Errorf("daily needed = %+v, want 35", p.DailyNeeded)
	}
	if p.Behind {
		t.Error("goal outside the warning window should not be behind")
	}
	if p.Progress.Valid {
		t.Error("progress fraction applies only to payoff goals")
	}
}

func TestBehindFlag(t *testing.T) {
	policy := BehindPolicy{
		WindowDays: 30,
		TargetPct:  decimal.NewFromFloat(0.02),
		DailyFloor: decimal.NewFromInt(10),
	}

	tests := []struct {
		name    string
		target  string
		current string
		today   core.Date
		want    bool
	}{
		{
			// 10 days out, 500 remaining: 50/day > max(20, 10).
			name: "inside window and over threshold", target: "1000", current: "500",
			today: core.NewDate(2026, 12, 21), want: true,
		},
		{
			// 10 days out, 100 remaining: 10/day is under the 2% threshold of 20.
			name: "inside window at threshold", target: "1000", current: "900",
			today: core.NewDate(2026, 12, 21), want: false,
		},
		{
			// 100 days out; pace is irrelevant outside the window.
			name: "outside window", target: "1000", current: "0",
			today: core.NewDate(2026, 9, 22), want: false,
		},
		{
			// Small target: floor of 10 dominates 2% of 200.
			name: "floor dominates small target", target: "200", current: "50",
			today: core.NewDate(2026, 12, 21), want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.New()
			svc := NewGoalService(store, policy)
			if _, err := svc.AddGoal(ctx, core.Goal{
				Type: core.GoalCustom, Name: "goal",
				TargetAmount:    dec(t, tt.target),
				TargetDate:      core.NewDate(2026, 12, 31),
				CurrentOverride: decimal.NewNullDecimal(dec(t, tt.current)),
			}); err != nil {
				t.Fatalf("AddGoal: %v", err)
			}
			p := singleProgress(t, svc, tt.today)
			if p.Behind != tt.want {
				t.Errorf("behind = %v, want %v (daily needed %+v)", p.Behind, tt.want, p.DailyNeeded)
			}
		})
	}
}

func TestContributionCapProgress(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewGoalService(store, DefaultBehindPolicy())

	if _, err := svc.AddGoal(ctx, core.Goal{
		Type:              core.GoalContributionCap,
		Name:              "Roth IRA 2026",
		Year:              2026,
		ContributionLimit: dec(t, "7000"),
		ContributedSoFar:  dec(t, "4200"),
	}); err != nil {
		t.Fatalf("AddGoal: %v", err)
	}

	p := singleProgress(t, svc, core.NewDate(2026, 8, 31))
	if p.TargetAmount.String() != "7000" {
		t.Errorf("target = %s, want the contribution limit", p.TargetAmount)
	}
	if p.CurrentAmount.String() != "4200" || p.Remaining.String() != "2800" {
		t.Errorf("current=%s remaining=%s", p.CurrentAmount, p.Remaining)
	}
}

func TestCustomGoalFallsBackToOverride(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewGoalService(store, DefaultBehindPolicy())

	// Linked account is gone; the override still supplies the current amount.
	if _, err := svc.AddGoal(ctx, core.Goal{
		Type: core.GoalTargetBalance, Name: "Old fund",
		LinkType: core.LinkAccount, LinkID: 999,
		TargetAmount:    dec(t, "1000"),
		CurrentOverride: decimal.NewNullDecimal(dec(t, "250")),
	}); err != nil {
		t.Fatalf("AddGoal: %v", err)
	}

	p := singleProgress(t, svc, core.NewDate(2026, 8, 31))
	if p.CurrentAmount.String() != "250" {
		t.Errorf("current = %s, want override 250", p.CurrentAmount)
	}
}

func TestCategoryLinkedGoal(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	catIDs := seedCategories(t, store, catSpec{"Savings", "100"})
	alloc := NewAllocationService(store, nil)
	expenses := NewExpenseService(store, nil)
	svc := NewGoalService(store, DefaultBehindPolicy())

	if _, err := alloc.AddPaycheck(ctx, core.NewDate(2026, 8, 1), dec(t, "1000"), ""); err != nil {
		t.Fatalf("AddPaycheck: %v", err)
	}
	if _, err := expenses.AddExpense(ctx, core.NewDate(2026, 8, 2), dec(t, "300"), catIDs[0], "", ""); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if _, err := svc.AddGoal(ctx, core.Goal{
		Type: core.GoalTargetBalance, Name: "Savings pool",
		LinkType: core.LinkCategory, LinkID: catIDs[0],
		TargetAmount: dec(t, "2000"),
	}); err != nil {
		t.Fatalf("AddGoal: %v", err)
	}

	p := singleProgress(t, svc, core.NewDate(2026, 8, 31))
	if p.CurrentAmount.String() != "700" {
		t.Errorf("current = %s, want allocated minus spent 700", p.CurrentAmount)
	}
}

func TestUpdateGoalPreservesImmutableFields(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewGoalService(store, DefaultBehindPolicy())

	debtID, err := store.CreateDebt(ctx, core.Debt{Name: "Loan", Balance: dec(t, "3000")})
	if err != nil {
		t.Fatalf("create debt: %v", err)
	}
	goalID, err := svc.AddGoal(ctx, core.Goal{
		Type: core.GoalDebtPayoff, Name: "Pay loan",
		LinkType: core.LinkDebt, LinkID: debtID, TargetAmount: decimal.Zero,
	})
	if err != nil {
		t.Fatalf("AddGoal: %v", err)
	}
	created, _ := store.GetGoal(ctx, goalID)

	if err := svc.UpdateGoal(ctx, core.Goal{
		ID:           goalID,
		Type:         core.GoalCustom, // ignored
		Name:         "Pay loan faster",
		LinkType:     core.LinkDebt,
		LinkID:       debtID,
		StartAmount:  decimal.NewNullDecimal(dec(t, "1")), // ignored
		TargetAmount: dec(t, "500"),
	}); err != nil {
		t.Fatalf("UpdateGoal: %v", err)
	}

	g, err := store.GetGoal(ctx, goalID)
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}
	if g.Name != "Pay loan faster" || g.TargetAmount.String() != "500" {
		t.Errorf("editable fields not applied: %+v", g)
	}
	if g.Type != core.GoalDebtPayoff {
		t.Errorf("type changed to %s", g.Type)
	}
	if g.StartAmount.Decimal.String() != "3000" {
		t.Errorf("start amount changed to %s", g.StartAmount.Decimal)
	}
	if !g.CreatedAt.Equal(created.CreatedAt.Time) {
		t.Errorf("created at changed to %s", g.CreatedAt)
	}

	if err := svc.UpdateGoal(ctx, core.Goal{ID: 999, Name: "x"}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown goal error = %v, want ErrNotFound", err)
	}
}
