package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestExpenseRemaining(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		paid     string
		want     string
		wantPaid bool
	}{
		{name: "nothing paid", amount: "200", paid: "0", want: "200"},
		{name: "partially paid", amount: "200", paid: "150", want: "50"},
		{name: "exactly paid", amount: "200", paid: "200", want: "0", wantPaid: true},
		{name: "fractional cents round", amount: "10.005", paid: "0", want: "10.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Expense{
				Amount:     decimal.RequireFromString(tt.amount),
				PaidAmount: decimal.RequireFromString(tt.paid),
			}
			if got := e.Remaining(); got.String() != tt.want {
				t.Errorf("Remaining() = %s, want %s", got, tt.want)
			}
			if got := e.IsPaid(); got != tt.wantPaid {
				t.Errorf("IsPaid() = %v, want %v", got, tt.wantPaid)
			}
		})
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{
		Date:       NewDate(2026, 3, 15),
		Amount:     decimal.NewFromInt(50),
		CategoryID: 1,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Expense)
		wantErr error
	}{
		{name: "zero date", mutate: func(e *Expense) { e.Date = Date{} }, wantErr: ErrInvalidDate},
		{name: "zero amount", mutate: func(e *Expense) { e.Amount = decimal.Zero }, wantErr: ErrInvalidAmount},
		{name: "negative amount", mutate: func(e *Expense) { e.Amount = decimal.NewFromInt(-1) }, wantErr: ErrInvalidAmount},
		{name: "missing category", mutate: func(e *Expense) { e.CategoryID = 0 }, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			if err := e.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryValidate(t *testing.T) {
	c := Category{Name: "Groceries", AllocationPct: decimal.NewFromInt(20)}
	if err := c.Validate(); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}
	c.Name = "  "
	if err := c.Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("blank name error = %v, want ErrEmptyName", err)
	}
	c.Name = "Groceries"
	c.AllocationPct = decimal.NewFromInt(-5)
	if err := c.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative percent error = %v, want ErrInvalidAmount", err)
	}
}

func TestCategoryIsTopLevel(t *testing.T) {
	if !(Category{Name: "Misc"}).IsTopLevel() {
		t.Error("category without parent should be top level")
	}
	if (Category{Name: "Coffee", ParentID: 3}).IsTopLevel() {
		t.Error("category with parent should not be top level")
	}
}

func TestDebtValidate(t *testing.T) {
	d := Debt{Name: "Visa", Balance: decimal.NewFromInt(500)}
	if err := d.Validate(); err != nil {
		t.Fatalf("valid debt rejected: %v", err)
	}
	d.Balance = decimal.NewFromInt(-1)
	if err := d.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative balance error = %v, want ErrInvalidAmount", err)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-08-31")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.String() != "2026-08-31" {
		t.Errorf("String() = %q, want 2026-08-31", d.String())
	}

	for _, bad := range []string{"", "31-08-2026", "2026/08/31", "2026-13-01", "not a date"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) error = %v, want ErrInvalidDate", bad, err)
		}
	}
}

func TestDateDaysSince(t *testing.T) {
	tests := []struct {
		name string
		from Date
		to   Date
		want int
	}{
		{name: "same day", from: NewDate(2026, 1, 10), to: NewDate(2026, 1, 10), want: 0},
		{name: "one week", from: NewDate(2026, 1, 3), to: NewDate(2026, 1, 10), want: 7},
		{name: "across month", from: NewDate(2026, 1, 31), to: NewDate(2026, 2, 2), want: 2},
		{name: "negative when before", from: NewDate(2026, 1, 10), to: NewDate(2026, 1, 3), want: -7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.to.DaysSince(tt.from); got != tt.want {
				t.Errorf("DaysSince = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2026, 8, 31)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(b) != `"2026-08-31"` {
		t.Errorf("Marshal = %s, want %q", b, "2026-08-31")
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip = %s, want %s", back, d)
	}

	var zero Date
	b, err = json.Marshal(zero)
	if err != nil {
		t.Fatalf("Marshal zero: %v", err)
	}
	if string(b) != "null" {
		t.Errorf("zero date marshals to %s, want null", b)
	}

	var fromNull Date
	if err := json.Unmarshal([]byte("null"), &fromNull); err != nil {
		t.Fatalf("Unmarshal null: %v", err)
	}
	if !fromNull.IsZero() {
		t.Error("null should unmarshal to the zero date")
	}

	var bad Date
	if err := json.Unmarshal([]byte(`"08/31/2026"`), &bad); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("bad format error = %v, want ErrInvalidDate", err)
	}
}
