package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TargetType identifies what an allocation of funds is applied to.
type TargetType string

const (
	TargetAccount TargetType = "account"
	TargetDebt    TargetType = "debt"
	TargetExpense TargetType = "expense"
)

// LinkType identifies the entity a goal derives its current amount from.
type LinkType string

const (
	LinkAccount  LinkType = "account"
	LinkDebt     LinkType = "debt"
	LinkCategory LinkType = "category"
)

type (
	// Account is a cash or investment account. Balance is signed and is
	// mutated only through allocation, payment, and balance-edit
	// operations.
	Account struct {
		ID           int64
		Name         string
		Institution  string
		Type         string // checking/savings/hysa/401k/brokerage/...
		Balance      decimal.Decimal
		InterestRate decimal.NullDecimal
		CreatedAt    Date
	}

	// Debt is an owed balance decreasing toward zero. Allocations can
	// never take it negative.
	Debt struct {
		ID           int64
		Name         string
		Institution  string
		Type         string // credit_card/loan/personal/medical/...
		Balance      decimal.Decimal
		InterestRate decimal.NullDecimal
		MinPayment   decimal.NullDecimal
		DueDay       int // 1-31, 0 when unset
		CreatedAt    Date
	}

	// Category is a budget category. Categories form a two-level tree:
	// ParentID is 0 for a root category. AllocationPct is meaningful only
	// for roots, whose percentages must total 100 before a paycheck may
	// be allocated.
	Category struct {
		ID            int64
		Name          string
		ParentID      int64
		AllocationPct decimal.Decimal
		CreatedAt     Date
	}

	// Expense tracks spending against a category with partial payment:
	// PaidAmount grows monotonically from 0 up to Amount.
	Expense struct {
		ID         int64
		Date       Date
		Amount     decimal.Decimal
		CategoryID int64
		PaidAmount decimal.Decimal
		Note       string
		Tags       string
	}

	// Paycheck is an income record, immutable once created.
	Paycheck struct {
		ID     int64
		Date   Date
		Amount decimal.Decimal
		Note   string
	}

	// Allocation is one paycheck-to-category split row. The set for a
	// paycheck is created atomically, one row per root category.
	Allocation struct {
		ID         int64
		PaycheckID int64
		CategoryID int64
		Amount     decimal.Decimal
	}

	// Income is an income transaction posted against weighted
	// account/debt targets.
	Income struct {
		ID     int64
		Date   Date
		Amount decimal.Decimal
		Note   string
	}

	// AllocationEvent links an income transaction to one target and the
	// share it received.
	AllocationEvent struct {
		ID         int64
		IncomeID   int64
		TargetType TargetType
		TargetID   int64
		Amount     decimal.Decimal
	}

	// AccountAllocation records a transfer of funds from an account
	// toward an expense or debt.
	AccountAllocation struct {
		ID         int64
		Date       Date
		AccountID  int64
		TargetType TargetType
		TargetID   int64
		Amount     decimal.Decimal
		Note       string
	}

	// BalanceUpdate is an audit row appended whenever an account or debt
	// balance changes via direct edit or transfer.
	BalanceUpdate struct {
		ID         int64
		Date       Date
		EntityType LinkType // account or debt
		EntityID   int64
		OldBalance decimal.Decimal
		NewBalance decimal.Decimal
		Note       string
	}
)

// IsTopLevel reports whether the category is a root of the tree.
func (c Category) IsTopLevel() bool {
	return c.ParentID == 0
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.AllocationPct.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Remaining is the unpaid portion of the expense.
func (e Expense) Remaining() decimal.Decimal {
	return Round2(e.Amount.Sub(e.PaidAmount))
}

// IsPaid reports whether nothing remains to pay.
func (e Expense) IsPaid() bool {
	return e.Remaining().Sign() <= 0
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if e.CategoryID <= 0 {
		return ErrNotFound
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if d.Balance.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p Paycheck) Validate() error {
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if p.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
