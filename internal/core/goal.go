package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GoalType discriminates the four goal variants. Each variant reads a
// different subset of the Goal fields; Validate enforces the subset on
// entry so reads never have to special-case stray values.
type GoalType string

const (
	GoalTargetBalance   GoalType = "target_balance"
	GoalContributionCap GoalType = "contribution_cap"
	GoalDebtPayoff      GoalType = "debt_payoff"
	GoalCustom          GoalType = "custom"
)

// GoalStatus is derived from remaining amount, never stored.
type GoalStatus string

const (
	StatusActive   GoalStatus = "ACTIVE"
	StatusComplete GoalStatus = "COMPLETE"
)

// Goal is a savings or payoff target, optionally linked to an account,
// debt, or category that supplies its current amount.
//
// StartAmount is captured once at creation for debt_payoff goals (a
// snapshot of the linked debt's balance at that instant) and never
// recomputed. For debt_payoff, TargetAmount is the payoff floor, often 0.
type Goal struct {
	ID       int64
	Type     GoalType
	Name     string
	LinkType LinkType // "" when unlinked
	LinkID   int64

	StartAmount  decimal.NullDecimal
	TargetAmount decimal.Decimal
	TargetDate   Date // zero when none

	// contribution_cap fields
	Year              int
	ContributionLimit decimal.Decimal
	ContributedSoFar  decimal.Decimal

	// custom fields
	CurrentOverride decimal.NullDecimal

	CreatedAt Date
}

func (t GoalType) Valid() bool {
	switch t {
	case GoalTargetBalance, GoalContributionCap, GoalDebtPayoff, GoalCustom:
		return true
	}
	return false
}

func (l LinkType) Valid() bool {
	switch l {
	case LinkAccount, LinkDebt, LinkCategory:
		return true
	}
	return false
}

func (g Goal) Validate() error {
	if !g.Type.Valid() {
		return ErrUnsupportedGoalType
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.LinkType != "" && !g.LinkType.Valid() {
		return ErrUnsupportedLinkType
	}
	return nil
}

// GoalProgress is the derived view of one goal, computed fresh per call
// from current linked-entity values.
type GoalProgress struct {
	GoalID        int64
	Name          string
	Type          GoalType
	TargetAmount  decimal.Decimal
	TargetDate    Date
	CurrentAmount decimal.Decimal
	Remaining     decimal.Decimal
	DaysRemaining *int                // nil when no target date
	DailyNeeded   decimal.NullDecimal // pace required to hit the date
	Progress      decimal.NullDecimal // debt_payoff fraction, 4 decimals
	Status        GoalStatus
	Behind        bool
}
