package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"budget/internal/core"
)

// SQLiteRepository is the SQLite implementation of Store. Monetary
// amounts are stored as integer cents; every value crossing the boundary
// is already rounded to 2 decimals by the engine, so the conversion is
// lossless. Each Apply* method runs in one transaction.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// cents conversion

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

func toNullCents(d decimal.NullDecimal) sql.NullInt64 {
	if !d.Valid {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toCents(d.Decimal), Valid: true}
}

func fromNullCents(n sql.NullInt64) decimal.NullDecimal {
	if !n.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(fromCents(n.Int64))
}

func toNullDate(d core.Date) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseDate(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

// Accounts

const accountColumns = "id, name, institution, type, balance_cents, interest_rate, created_at"

func scanAccount(row interface{ Scan(...any) error }) (core.Account, error) {
	var a core.Account
	var balance int64
	var rate sql.NullFloat64
	var created string
	if err := row.Scan(&a.ID, &a.Name, &a.Institution, &a.Type, &balance, &rate, &created); err != nil {
		return core.Account{}, err
	}
	a.Balance = fromCents(balance)
	if rate.Valid {
		a.InterestRate = decimal.NewNullDecimal(decimal.NewFromFloat(rate.Float64))
	}
	a.CreatedAt = parseDate(created)
	return a, nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO accounts(name, institution, type, balance_cents, interest_rate, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		a.Name, a.Institution, a.Type, toCents(a.Balance), nullRate(a.InterestRate), a.CreatedAt.String())
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, a core.Account) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET name = ?, institution = ?, type = ?, interest_rate = ? WHERE id = ?",
		a.Name, a.Institution, a.Type, nullRate(a.InterestRate), a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res, "account", a.ID)
}

func (r *SQLiteRepository) SetAccountBalance(ctx context.Context, id int64, balance decimal.Decimal, audit core.BalanceUpdate) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE accounts SET balance_cents = ? WHERE id = ?", toCents(balance), id)
		if err != nil {
			return fmt.Errorf("update account balance: %w", err)
		}
		if err := requireRow(res, "account", id); err != nil {
			return err
		}
		return insertBalanceUpdate(ctx, tx, audit)
	})
}

// Debts

const debtColumns = "id, name, institution, type, balance_cents, interest_rate, min_payment_cents, due_day, created_at"

func scanDebt(row interface{ Scan(...any) error }) (core.Debt, error) {
	var d core.Debt
	var balance int64
	var rate sql.NullFloat64
	var minPayment, dueDay sql.NullInt64
	var created string
	if err := row.Scan(&d.ID, &d.Name, &d.Institution, &d.Type, &balance, &rate, &minPayment, &dueDay, &created); err != nil {
		return core.Debt{}, err
	}
	d.Balance = fromCents(balance)
	if rate.Valid {
		d.InterestRate = decimal.NewNullDecimal(decimal.NewFromFloat(rate.Float64))
	}
	d.MinPayment = fromNullCents(minPayment)
	d.DueDay = int(dueDay.Int64)
	d.CreatedAt = parseDate(created)
	return d, nil
}

func (r *SQLiteRepository) CreateDebt(ctx context.Context, d core.Debt) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO debts(name, institution, type, balance_cents, interest_rate, min_payment_cents, due_day, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		d.Name, d.Institution, d.Type, toCents(d.Balance), nullRate(d.InterestRate), toNullCents(d.MinPayment), nullDay(d.DueDay), d.CreatedAt.String())
	if err != nil {
		return 0, fmt.Errorf("insert debt: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetDebt(ctx context.Context, id int64) (core.Debt, error) {
	d, err := scanDebt(r.db.QueryRowContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Debt{}, fmt.Errorf("debt %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt: %w", err)
	}
	return d, nil
}

func (r *SQLiteRepository) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+debtColumns+" FROM debts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var out []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateDebt(ctx context.Context, d core.Debt) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE debts SET name = ?, institution = ?, type = ?, interest_rate = ?, min_payment_cents = ?, due_day = ? WHERE id = ?",
		d.Name, d.Institution, d.Type, nullRate(d.InterestRate), toNullCents(d.MinPayment), nullDay(d.DueDay), d.ID)
	if err != nil {
		return fmt.Errorf("update debt: %w", err)
	}
	return requireRow(res, "debt", d.ID)
}

func (r *SQLiteRepository) SetDebtBalance(ctx context.Context, id int64, balance decimal.Decimal, audit core.BalanceUpdate) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE debts SET balance_cents = ? WHERE id = ?", toCents(balance), id)
		if err != nil {
			return fmt.Errorf("update debt balance: %w", err)
		}
		if err := requireRow(res, "debt", id); err != nil {
			return err
		}
		return insertBalanceUpdate(ctx, tx, audit)
	})
}

// Categories

const categoryColumns = "id, name, COALESCE(parent_id, 0), allocation_pct, created_at"

func scanCategory(row interface{ Scan(...any) error }) (core.Category, error) {
	var c core.Category
	var pct float64
	var created string
	if err := row.Scan(&c.ID, &c.Name, &c.ParentID, &pct, &created); err != nil {
		return core.Category{}, err
	}
	c.AllocationPct = decimal.NewFromFloat(pct)
	c.CreatedAt = parseDate(created)
	return c, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO categories(name, parent_id, allocation_pct, created_at) VALUES (?, ?, ?, ?)",
		c.Name, nullParent(c.ParentID), c.AllocationPct.InexactFloat64(), c.CreatedAt.String())
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	return r.queryCategories(ctx,
		"SELECT "+categoryColumns+" FROM categories ORDER BY parent_id IS NOT NULL, id")
}

func (r *SQLiteRepository) ListTopLevelCategories(ctx context.Context) ([]core.Category, error) {
	return r.queryCategories(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE parent_id IS NULL ORDER BY id")
}

func (r *SQLiteRepository) queryCategories(ctx context.Context, query string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, allocation_pct = ? WHERE id = ?",
		c.Name, c.AllocationPct.InexactFloat64(), c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res, "category", c.ID)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE parent_id = ?", id); err != nil {
			return fmt.Errorf("delete subcategories: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return requireRow(res, "category", id)
	})
}

func (r *SQLiteRepository) ReplaceTopLevelCategories(ctx context.Context, cats []core.Category) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM categories"); err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}
		for _, c := range cats {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO categories(name, parent_id, allocation_pct, created_at) VALUES (?, NULL, ?, ?)",
				c.Name, c.AllocationPct.InexactFloat64(), c.CreatedAt.String()); err != nil {
				return fmt.Errorf("insert category %q: %w", c.Name, err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) CategoryActivity(ctx context.Context, id int64) (decimal.Decimal, decimal.Decimal, error) {
	if _, err := r.GetCategory(ctx, id); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	var allocated, spent int64
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT SUM(amount_cents) FROM allocations WHERE category_id = ?), 0),
			COALESCE((SELECT SUM(amount_cents) FROM expenses WHERE category_id = ?), 0)`,
		id, id).Scan(&allocated, &spent)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("category activity: %w", err)
	}
	return fromCents(allocated), fromCents(spent), nil
}

// Expenses

const expenseColumns = "id, date, amount_cents, category_id, paid_amount_cents, note, tags"

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var e core.Expense
	var date string
	var amount, paid int64
	if err := row.Scan(&e.ID, &date, &amount, &e.CategoryID, &paid, &e.Note, &e.Tags); err != nil {
		return core.Expense{}, err
	}
	e.Date = parseDate(date)
	e.Amount = fromCents(amount)
	e.PaidAmount = fromCents(paid)
	return e, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO expenses(date, amount_cents, category_id, paid_amount_cents, note, tags) VALUES (?, ?, ?, ?, ?, ?)",
		e.Date.String(), toCents(e.Amount), e.CategoryID, toCents(e.PaidAmount), e.Note, e.Tags)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE expenses SET date = ?, amount_cents = ?, category_id = ?, paid_amount_cents = ?, note = ?, tags = ? WHERE id = ?",
		e.Date.String(), toCents(e.Amount), e.CategoryID, toCents(e.PaidAmount), e.Note, e.Tags, e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res, "expense", e.ID)
}

func (r *SQLiteRepository) ListPendingExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE amount_cents - paid_amount_cents > 0 ORDER BY date DESC, id DESC LIMIT ?", limit)
}

func (r *SQLiteRepository) ListRecentExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses ORDER BY date DESC, id DESC LIMIT ?", limit)
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Paychecks

func (r *SQLiteRepository) ApplyPaycheck(ctx context.Context, p core.Paycheck, allocs []core.Allocation) (int64, error) {
	var id int64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO paychecks(date, amount_cents, note) VALUES (?, ?, ?)",
			p.Date.String(), toCents(p.Amount), p.Note)
		if err != nil {
			return fmt.Errorf("insert paycheck: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
		for _, a := range allocs {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO allocations(paycheck_id, category_id, amount_cents) VALUES (?, ?, ?)",
				id, a.CategoryID, toCents(a.Amount)); err != nil {
				return fmt.Errorf("insert allocation: %w", err)
			}
		}
		return nil
	})
	return id, err
}

func (r *SQLiteRepository) ListPaychecks(ctx context.Context, limit int) ([]core.Paycheck, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, date, amount_cents, note FROM paychecks ORDER BY date DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list paychecks: %w", err)
	}
	defer rows.Close()

	var out []core.Paycheck
	for rows.Next() {
		var p core.Paycheck
		var date string
		var amount int64
		if err := rows.Scan(&p.ID, &date, &amount, &p.Note); err != nil {
			return nil, fmt.Errorf("scan paycheck: %w", err)
		}
		p.Date = parseDate(date)
		p.Amount = fromCents(amount)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Income

func (r *SQLiteRepository) ApplyIncome(ctx context.Context, inc core.Income, events []core.AllocationEvent, balances []BalanceSet) (int64, error) {
	var id int64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO incomes(date, amount_cents, note) VALUES (?, ?, ?)",
			inc.Date.String(), toCents(inc.Amount), inc.Note)
		if err != nil {
			return fmt.Errorf("insert income: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}
		for _, ev := range events {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO allocation_events(income_id, target_type, target_id, amount_cents) VALUES (?, ?, ?, ?)",
				id, string(ev.TargetType), ev.TargetID, toCents(ev.Amount)); err != nil {
				return fmt.Errorf("insert allocation event: %w", err)
			}
		}
		for _, b := range balances {
			table := "accounts"
			if b.EntityType == core.LinkDebt {
				table = "debts"
			}
			res, err := tx.ExecContext(ctx,
				"UPDATE "+table+" SET balance_cents = ? WHERE id = ?", toCents(b.Balance), b.EntityID)
			if err != nil {
				return fmt.Errorf("update %s balance: %w", b.EntityType, err)
			}
			if err := requireRow(res, string(b.EntityType), b.EntityID); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

// Account allocations

func (r *SQLiteRepository) ApplyAccountAllocation(ctx context.Context, alloc core.AccountAllocation, accountBalance decimal.Decimal, target TargetUpdate, audit core.BalanceUpdate) (int64, error) {
	var id int64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE accounts SET balance_cents = ? WHERE id = ?",
			toCents(accountBalance), alloc.AccountID)
		if err != nil {
			return fmt.Errorf("update account balance: %w", err)
		}
		if err := requireRow(res, "account", alloc.AccountID); err != nil {
			return err
		}

		switch target.Type {
		case core.TargetExpense:
			res, err = tx.ExecContext(ctx,
				"UPDATE expenses SET paid_amount_cents = ? WHERE id = ?",
				toCents(target.Value), target.ID)
		case core.TargetDebt:
			res, err = tx.ExecContext(ctx,
				"UPDATE debts SET balance_cents = ? WHERE id = ?",
				toCents(target.Value), target.ID)
		default:
			return fmt.Errorf("%w: %q", core.ErrUnsupportedTargetType, target.Type)
		}
		if err != nil {
			return fmt.Errorf("update %s: %w", target.Type, err)
		}
		if err := requireRow(res, string(target.Type), target.ID); err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx,
			"INSERT INTO account_allocations(date, account_id, target_type, target_id, amount_cents, note) VALUES (?, ?, ?, ?, ?, ?)",
			alloc.Date.String(), alloc.AccountID, string(alloc.TargetType), alloc.TargetID, toCents(alloc.Amount), alloc.Note)
		if err != nil {
			return fmt.Errorf("insert account allocation: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}

		return insertBalanceUpdate(ctx, tx, audit)
	})
	return id, err
}

// Goals

const goalColumns = "id, type, name, link_type, link_id, start_amount_cents, target_amount_cents, target_date, year, contribution_limit_cents, contributed_cents, override_cents, created_at"

func scanGoal(row interface{ Scan(...any) error }) (core.Goal, error) {
	var g core.Goal
	var gtype, ltype, created string
	var start, override sql.NullInt64
	var target, limit, contributed int64
	var targetDate sql.NullString
	if err := row.Scan(&g.ID, &gtype, &g.Name, &ltype, &g.LinkID, &start, &target, &targetDate, &g.Year, &limit, &contributed, &override, &created); err != nil {
		return core.Goal{}, err
	}
	g.Type = core.GoalType(gtype)
	g.LinkType = core.LinkType(ltype)
	g.StartAmount = fromNullCents(start)
	g.TargetAmount = fromCents(target)
	if targetDate.Valid {
		g.TargetDate = parseDate(targetDate.String)
	}
	g.ContributionLimit = fromCents(limit)
	g.ContributedSoFar = fromCents(contributed)
	g.CurrentOverride = fromNullCents(override)
	g.CreatedAt = parseDate(created)
	return g, nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO goals(type, name, link_type, link_id, start_amount_cents, target_amount_cents,
			target_date, year, contribution_limit_cents, contributed_cents, override_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(g.Type), g.Name, string(g.LinkType), g.LinkID, toNullCents(g.StartAmount), toCents(g.TargetAmount),
		toNullDate(g.TargetDate), g.Year, toCents(g.ContributionLimit), toCents(g.ContributedSoFar),
		toNullCents(g.CurrentOverride), g.CreatedAt.String())
	if err != nil {
		return 0, fmt.Errorf("insert goal: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id int64) (core.Goal, error) {
	g, err := scanGoal(r.db.QueryRowContext(ctx,
		"SELECT "+goalColumns+" FROM goals WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, fmt.Errorf("goal %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+goalColumns+" FROM goals ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals SET name = ?, link_type = ?, link_id = ?, target_amount_cents = ?, target_date = ?,
			year = ?, contribution_limit_cents = ?, contributed_cents = ?, override_cents = ?
		WHERE id = ?`,
		g.Name, string(g.LinkType), g.LinkID, toCents(g.TargetAmount), toNullDate(g.TargetDate),
		g.Year, toCents(g.ContributionLimit), toCents(g.ContributedSoFar), toNullCents(g.CurrentOverride), g.ID)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireRow(res, "goal", g.ID)
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM goals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireRow(res, "goal", id)
}

// Audit

func (r *SQLiteRepository) ListBalanceUpdates(ctx context.Context, limit int) ([]core.BalanceUpdate, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, date, entity_type, entity_id, old_balance_cents, new_balance_cents, note FROM balance_updates ORDER BY date DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list balance updates: %w", err)
	}
	defer rows.Close()

	var out []core.BalanceUpdate
	for rows.Next() {
		var u core.BalanceUpdate
		var date, etype string
		var old, newBal int64
		if err := rows.Scan(&u.ID, &date, &etype, &u.EntityID, &old, &newBal, &u.Note); err != nil {
			return nil, fmt.Errorf("scan balance update: %w", err)
		}
		u.Date = parseDate(date)
		u.EntityType = core.LinkType(etype)
		u.OldBalance = fromCents(old)
		u.NewBalance = fromCents(newBal)
		out = append(out, u)
	}
	return out, rows.Err()
}

// helpers

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func insertBalanceUpdate(ctx context.Context, tx *sql.Tx, u core.BalanceUpdate) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO balance_updates(date, entity_type, entity_id, old_balance_cents, new_balance_cents, note) VALUES (?, ?, ?, ?, ?, ?)",
		u.Date.String(), string(u.EntityType), u.EntityID, toCents(u.OldBalance), toCents(u.NewBalance), u.Note)
	if err != nil {
		return fmt.Errorf("insert balance update: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
	}
	return nil
}

func nullRate(d decimal.NullDecimal) sql.NullFloat64 {
	if !d.Valid {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: d.Decimal.InexactFloat64(), Valid: true}
}

func nullParent(id int64) sql.NullInt64 {
	if id <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

func nullDay(day int) sql.NullInt64 {
	if day <= 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(day), Valid: true}
}

// Compile-time check: SQLiteRepository implements the full Store surface.
var _ Store = (*SQLiteRepository)(nil)
