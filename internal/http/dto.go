package http

import (
	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/services"
)

// Response shapes. Monetary values serialize as decimal strings.

type accountDTO struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	Institution  string              `json:"institution,omitempty"`
	Type         string              `json:"type"`
	Balance      decimal.Decimal     `json:"balance"`
	InterestRate decimal.NullDecimal `json:"interest_rate"`
	CreatedAt    core.Date           `json:"created_at"`
}

func toAccountDTO(a core.Account) accountDTO {
	return accountDTO{
		ID:           a.ID,
		Name:         a.Name,
		Institution:  a.Institution,
		Type:         a.Type,
		Balance:      a.Balance,
		InterestRate: a.InterestRate,
		CreatedAt:    a.CreatedAt,
	}
}

type debtDTO struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	Institution  string              `json:"institution,omitempty"`
	Type         string              `json:"type"`
	Balance      decimal.Decimal     `json:"balance"`
	InterestRate decimal.NullDecimal `json:"interest_rate"`
	MinPayment   decimal.NullDecimal `json:"min_payment"`
	DueDay       int                 `json:"due_day,omitempty"`
	CreatedAt    core.Date           `json:"created_at"`
}

func toDebtDTO(d core.Debt) debtDTO {
	return debtDTO{
		ID:           d.ID,
		Name:         d.Name,
		Institution:  d.Institution,
		Type:         d.Type,
		Balance:      d.Balance,
		InterestRate: d.InterestRate,
		MinPayment:   d.MinPayment,
		DueDay:       d.DueDay,
		CreatedAt:    d.CreatedAt,
	}
}

type categoryDTO struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	ParentID      int64           `json:"parent_id,omitempty"`
	AllocationPct decimal.Decimal `json:"allocation_pct"`
}

type categoryBalanceDTO struct {
	categoryDTO
	Allocated decimal.Decimal `json:"allocated"`
	Spent     decimal.Decimal `json:"spent"`
	Available decimal.Decimal `json:"available"`
	Overspent bool            `json:"overspent"`
}

func toCategoryBalanceDTO(b services.CategoryBalance) categoryBalanceDTO {
	return categoryBalanceDTO{
		categoryDTO: categoryDTO{
			ID:            b.Category.ID,
			Name:          b.Category.Name,
			ParentID:      b.Category.ParentID,
			AllocationPct: b.Category.AllocationPct,
		},
		Allocated: b.Allocated,
		Spent:     b.Spent,
		Available: b.Available,
		Overspent: b.Overspent,
	}
}

type expenseDTO struct {
	ID         int64           `json:"id"`
	Date       core.Date       `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	CategoryID int64           `json:"category_id"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Remaining  decimal.Decimal `json:"remaining"`
	Paid       bool            `json:"paid"`
	Note       string          `json:"note,omitempty"`
	Tags       string          `json:"tags,omitempty"`
}

func toExpenseDTO(e core.Expense) expenseDTO {
	return expenseDTO{
		ID:         e.ID,
		Date:       e.Date,
		Amount:     e.Amount,
		CategoryID: e.CategoryID,
		PaidAmount: e.PaidAmount,
		Remaining:  e.Remaining(),
		Paid:       e.IsPaid(),
		Note:       e.Note,
		Tags:       e.Tags,
	}
}

type paycheckDTO struct {
	ID     int64           `json:"id"`
	Date   core.Date       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}

type goalProgressDTO struct {
	GoalID        int64               `json:"goal_id"`
	Name          string              `json:"name"`
	Type          core.GoalType       `json:"type"`
	TargetAmount  decimal.Decimal     `json:"target_amount"`
	TargetDate    core.Date           `json:"target_date"`
	CurrentAmount decimal.Decimal     `json:"current_amount"`
	Remaining     decimal.Decimal     `json:"remaining"`
	DaysRemaining *int                `json:"days_remaining"`
	DailyNeeded   decimal.NullDecimal `json:"daily_needed"`
	Progress      decimal.NullDecimal `json:"progress"`
	Status        core.GoalStatus     `json:"status"`
	Behind        bool                `json:"behind"`
}

func toGoalProgressDTO(p core.GoalProgress) goalProgressDTO {
	return goalProgressDTO{
		GoalID:        p.GoalID,
		Name:          p.Name,
		Type:          p.Type,
		TargetAmount:  p.TargetAmount,
		TargetDate:    p.TargetDate,
		CurrentAmount: p.CurrentAmount,
		Remaining:     p.Remaining,
		DaysRemaining: p.DaysRemaining,
		DailyNeeded:   p.DailyNeeded,
		Progress:      p.Progress,
		Status:        p.Status,
		Behind:        p.Behind,
	}
}

type balanceUpdateDTO struct {
	ID         int64           `json:"id"`
	Date       core.Date       `json:"date"`
	EntityType core.LinkType   `json:"entity_type"`
	EntityID   int64           `json:"entity_id"`
	OldBalance decimal.Decimal `json:"old_balance"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Note       string          `json:"note,omitempty"`
}

type dashboardDTO struct {
	Accounts        []accountDTO         `json:"accounts"`
	Debts           []debtDTO            `json:"debts"`
	Categories      []categoryBalanceDTO `json:"categories"`
	Goals           []goalProgressDTO    `json:"goals"`
	PendingExpenses []expenseDTO         `json:"pending_expenses"`
	RecentExpenses  []expenseDTO         `json:"recent_expenses"`
	TotalAssets     decimal.Decimal      `json:"total_assets"`
	TotalDebts      decimal.Decimal      `json:"total_debts"`
	NetWorth        decimal.Decimal      `json:"net_worth"`
}

func toDashboardDTO(d services.Dashboard) dashboardDTO {
	out := dashboardDTO{
		Accounts:        make([]accountDTO, 0, len(d.Accounts)),
		Debts:           make([]debtDTO, 0, len(d.Debts)),
		Categories:      make([]categoryBalanceDTO, 0, len(d.Categories)),
		Goals:           make([]goalProgressDTO, 0, len(d.Goals)),
		PendingExpenses: make([]expenseDTO, 0, len(d.PendingExpenses)),
		RecentExpenses:  make([]expenseDTO, 0, len(d.RecentExpenses)),
		TotalAssets:     d.TotalAssets,
		TotalDebts:      d.TotalDebts,
		NetWorth:        d.NetWorth,
	}
	for _, a := range d.Accounts {
		out.Accounts = append(out.Accounts, toAccountDTO(a))
	}
	for _, dd := range d.Debts {
		out.Debts = append(out.Debts, toDebtDTO(dd))
	}
	for _, c := range d.Categories {
		out.Categories = append(out.Categories, toCategoryBalanceDTO(c))
	}
	for _, g := range d.Goals {
		out.Goals = append(out.Goals, toGoalProgressDTO(g))
	}
	for _, e := range d.PendingExpenses {
		out.PendingExpenses = append(out.PendingExpenses, toExpenseDTO(e))
	}
	for _, e := range d.RecentExpenses {
		out.RecentExpenses = append(out.RecentExpenses, toExpenseDTO(e))
	}
	return out
}

type historyDTO struct {
	Paychecks      []paycheckDTO      `json:"paychecks"`
	Expenses       []expenseDTO       `json:"expenses"`
	BalanceUpdates []balanceUpdateDTO `json:"balance_updates"`
}

func toHistoryDTO(h services.History) historyDTO {
	out := historyDTO{
		Paychecks:      make([]paycheckDTO, 0, len(h.Paychecks)),
		Expenses:       make([]expenseDTO, 0, len(h.Expenses)),
		BalanceUpdates: make([]balanceUpdateDTO, 0, len(h.BalanceUpdates)),
	}
	for _, p := range h.Paychecks {
		out.Paychecks = append(out.Paychecks, paycheckDTO{ID: p.ID, Date: p.Date, Amount: p.Amount, Note: p.Note})
	}
	for _, e := range h.Expenses {
		out.Expenses = append(out.Expenses, toExpenseDTO(e))
	}
	for _, u := range h.BalanceUpdates {
		out.BalanceUpdates = append(out.BalanceUpdates, balanceUpdateDTO{
			ID:         u.ID,
			Date:       u.Date,
			EntityType: u.EntityType,
			EntityID:   u.EntityID,
			OldBalance: u.OldBalance,
			NewBalance: u.NewBalance,
			Note:       u.Note,
		})
	}
	return out
}
