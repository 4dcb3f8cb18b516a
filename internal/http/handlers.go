package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/services"
)

const defaultListLimit = 20

// Reports

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.reports.Dashboard(r.Context(), parseLimit(r, defaultListLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardDTO(d))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.reports.History(r.Context(), parseLimit(r, defaultListLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toHistoryDTO(h))
}

// Accounts

type accountRequest struct {
	Name         string  `json:"name"`
	Institution  string  `json:"institution"`
	Type         string  `json:"type"`
	Balance      string  `json:"balance"`
	InterestRate *string `json:"interest_rate"`
}

func (req accountRequest) toAccount() (core.Account, error) {
	a := core.Account{
		Name:        req.Name,
		Institution: req.Institution,
		Type:        req.Type,
		Balance:     decimal.Zero,
	}
	if req.Balance != "" {
		balance, err := parseMoney(req.Balance)
		if err != nil {
			return core.Account{}, err
		}
		a.Balance = balance
	}
	if req.InterestRate != nil {
		rate, err := parseMoney(*req.InterestRate)
		if err != nil {
			return core.Account{}, err
		}
		a.InterestRate = decimal.NewNullDecimal(rate)
	}
	return a, nil
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.balances.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]accountDTO, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountDTO(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a, err := req.toAccount()
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := s.balances.CreateAccount(r.Context(), a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req accountRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	a, err := req.toAccount()
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.ID = id
	if err := s.balances.UpdateAccount(r.Context(), a); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type setBalanceRequest struct {
	Balance string `json:"balance"`
	Date    string `json:"date"`
	Note    string `json:"note"`
}

func (s *Server) handleSetAccountBalance(w http.ResponseWriter, r *http.Request) {
	s.handleSetBalance(w, r, core.LinkAccount)
}

func (s *Server) handleSetDebtBalance(w http.ResponseWriter, r *http.Request) {
	s.handleSetBalance(w, r, core.LinkDebt)
}

func (s *Server) handleSetBalance(w http.ResponseWriter, r *http.Request, entityType core.LinkType) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req setBalanceRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	balance, err := parseMoney(req.Balance)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.balances.SetBalance(r.Context(), entityType, id, balance, date, req.Note); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Debts

type debtRequest struct {
	Name         string  `json:"name"`
	Institution  string  `json:"institution"`
	Type         string  `json:"type"`
	Balance      string  `json:"balance"`
	InterestRate *string `json:"interest_rate"`
	MinPayment   *string `json:"min_payment"`
	DueDay       int     `json:"due_day"`
}

func (req debtRequest) toDebt() (core.Debt, error) {
	d := core.Debt{
		Name:        req.Name,
		Institution: req.Institution,
		Type:        req.Type,
		Balance:     decimal.Zero,
		DueDay:      req.DueDay,
	}
	if req.Balance != "" {
		balance, err := parseMoney(req.Balance)
		if err != nil {
			return core.Debt{}, err
		}
		d.Balance = balance
	}
	if req.InterestRate != nil {
		rate, err := parseMoney(*req.InterestRate)
		if err != nil {
			return core.Debt{}, err
		}
		d.InterestRate = decimal.NewNullDecimal(rate)
	}
	if req.MinPayment != nil {
		payment, err := parseMoney(*req.MinPayment)
		if err != nil {
			return core.Debt{}, err
		}
		d.MinPayment = decimal.NewNullDecimal(payment)
	}
	return d, nil
}

func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := s.balances.ListDebts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]debtDTO, 0, len(debts))
	for _, d := range debts {
		out = append(out, toDebtDTO(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req debtRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	d, err := req.toDebt()
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := s.balances.CreateDebt(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateDebt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req debtRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	d, err := req.toDebt()
	if err != nil {
		writeError(w, r, err)
		return
	}
	d.ID = id
	if err := s.balances.UpdateDebt(r.Context(), d); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Categories

type categoryRequest struct {
	Name          string `json:"name"`
	ParentID      int64  `json:"parent_id"`
	AllocationPct string `json:"allocation_pct"`
}

func (req categoryRequest) toCategory() (core.Category, error) {
	c := core.Category{
		Name:          req.Name,
		ParentID:      req.ParentID,
		AllocationPct: decimal.Zero,
	}
	if req.AllocationPct != "" {
		pct, err := decimal.NewFromString(req.AllocationPct)
		if err != nil {
			return core.Category{}, core.ErrInvalidAmount
		}
		c.AllocationPct = pct
	}
	return c, nil
}

func (s *Server) handleCategoryBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.expenses.CategoryBalances(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryBalanceDTO, 0, len(balances))
	for _, b := range balances {
		out = append(out, toCategoryBalanceDTO(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	c, err := req.toCategory()
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := s.balances.CreateCategory(r.Context(), c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req categoryRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	c, err := req.toCategory()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.balances.UpdateCategory(r.Context(), id, c.Name, c.AllocationPct); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.balances.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type setupCategoriesRequest struct {
	Categories []categoryRequest `json:"categories"`
}

func (s *Server) handleSetupCategories(w http.ResponseWriter, r *http.Request) {
	var req setupCategoriesRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	cats := make([]core.Category, 0, len(req.Categories))
	for _, cr := range req.Categories {
		c, err := cr.toCategory()
		if err != nil {
			writeError(w, r, err)
			return
		}
		cats = append(cats, c)
	}
	if err := s.balances.SetupCategories(r.Context(), cats); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// Paychecks and income

type paycheckRequest struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
	Note   string `json:"note"`
}

func (s *Server) handleAddPaycheck(w http.ResponseWriter, r *http.Request) {
	var req paycheckRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	amount, err := parseMoney(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := s.allocations.AddPaycheck(r.Context(), date, amount, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

type incomeTargetRequest struct {
	Type    string `json:"type"`
	ID      int64  `json:"id"`
	Percent string `json:"percent"`
}

type incomeRequest struct {
	Date    string                `json:"date"`
	Amount  string                `json:"amount"`
	Note    string                `json:"note"`
	Targets []incomeTargetRequest `json:"targets"`
}

func (s *Server) handlePostIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	amount, err := parseMoney(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	targets := make([]services.AllocationTarget, 0, len(req.Targets))
	for _, t := range req.Targets {
		pct, err := decimal.NewFromString(t.Percent)
		if err != nil {
			writeError(w, r, core.ErrInvalidAmount)
			return
		}
		targets = append(targets, services.AllocationTarget{
			Type:    core.TargetType(t.Type),
			ID:      t.ID,
			Percent: pct,
		})
	}
	id, err := s.allocations.PostIncome(r.Context(), date, amount, req.Note, targets)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Expenses

type expenseRequest struct {
	Date       string `json:"date"`
	Amount     string `json:"amount"`
	CategoryID int64  `json:"category_id"`
	Note       string `json:"note"`
	Tags       string `json:"tags"`
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	amount, err := parseMoney(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := s.expenses.AddExpense(r.Context(), date, amount, req.CategoryID, req.Note, req.Tags)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

type updateExpenseRequest struct {
	CategoryID *int64  `json:"category_id"`
	Note       *string `json:"note"`
	Tags       *string `json:"tags"`
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req updateExpenseRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.expenses.UpdateExpenseMeta(r.Context(), id, req.CategoryID, req.Note, req.Tags); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handlePendingExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.PendingExpenses(r.Context(), parseLimit(r, defaultListLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]expenseDTO, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecentExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.RecentExpenses(r.Context(), parseLimit(r, defaultListLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]expenseDTO, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseDTO(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// Account allocations

type accountAllocationRequest struct {
	AccountID  int64  `json:"account_id"`
	TargetType string `json:"target_type"`
	TargetID   int64  `json:"target_id"`
	Amount     string `json:"amount"`
	Date       string `json:"date"`
	Note       string `json:"note"`
}

func (s *Server) handleAccountAllocation(w http.ResponseWriter, r *http.Request) {
	var req accountAllocationRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	amount, err := parseMoney(req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	date, err := parseDateOrToday(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := s.expenses.AllocateFromAccount(r.Context(), req.AccountID, core.TargetType(req.TargetType), req.TargetID, amount, date, req.Note)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// Goals

type goalRequest struct {
	Type              string  `json:"type"`
	Name              string  `json:"name"`
	LinkType          string  `json:"link_type"`
	LinkID            int64   `json:"link_id"`
	TargetAmount      string  `json:"target_amount"`
	TargetDate        string  `json:"target_date"`
	Year              int     `json:"year"`
	ContributionLimit string  `json:"contribution_limit"`
	ContributedSoFar  string  `json:"contributed_so_far"`
	CurrentOverride   *string `json:"current_override"`
}

func (req goalRequest) toGoal() (core.Goal, error) {
	g := core.Goal{
		Type:     core.GoalType(req.Type),
		Name:     req.Name,
		LinkType: core.LinkType(req.LinkType),
		LinkID:   req.LinkID,
		Year:     req.Year,
	}
	var err error
	if req.TargetAmount != "" {
		if g.TargetAmount, err = parseMoney(req.TargetAmount); err != nil {
			return core.Goal{}, err
		}
	}
	if req.TargetDate != "" {
		if g.TargetDate, err = core.ParseDate(req.TargetDate); err != nil {
			return core.Goal{}, err
		}
	}
	if req.ContributionLimit != "" {
		if g.ContributionLimit, err = parseMoney(req.ContributionLimit); err != nil {
			return core.Goal{}, err
		}
	}
	if req.ContributedSoFar != "" {
		if g.ContributedSoFar, err = parseMoney(req.ContributedSoFar); err != nil {
			return core.Goal{}, err
		}
	}
	if req.CurrentOverride != nil {
		override, err := parseMoney(*req.CurrentOverride)
		if err != nil {
			return core.Goal{}, err
		}
		g.CurrentOverride = decimal.NewNullDecimal(override)
	}
	return g, nil
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.goals.Progress(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]goalProgressDTO, 0, len(progress))
	for _, p := range progress {
		out = append(out, toGoalProgressDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	g, err := req.toGoal()
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := s.goals.AddGoal(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var req goalRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	g, err := req.toGoal()
	if err != nil {
		writeError(w, r, err)
		return
	}
	g.ID = id
	if err := s.goals.UpdateGoal(r.Context(), g); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.goals.DeleteGoal(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
