package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"budget/internal/core"
	"budget/internal/services"
)

// dashboardCmd prints the full dashboard: accounts, debts, category
// balances, and goal progress.
type dashboardCmd struct {
	app   *App
	limit int
}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "display accounts, debts, categories, and goals" }
func (*dashboardCmd) Usage() string {
	return `budget-cli dashboard [-n <limit>]

  Displays the current state of every account, debt, budget category,
  and goal, along with pending expenses and net worth.
`
}

func (c *dashboardCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 10, "Number of pending/recent expenses to show")
}

func (c *dashboardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	d, err := c.app.Reports.Dashboard(ctx, c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building dashboard: %v\n", err)
		return subcommands.ExitFailure
	}
	renderDashboard(os.Stdout, d)
	return subcommands.ExitSuccess
}

func renderDashboard(w io.Writer, d services.Dashboard) {
	fmt.Fprintln(w, "=== DASHBOARD ===")

	fmt.Fprintln(w, "\nAccounts")
	if len(d.Accounts) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, a := range d.Accounts {
		fmt.Fprintf(w, "  [%d] %s (%s) - %s\n", a.ID, a.Name, a.Type, core.FormatAmount(a.Balance))
	}

	fmt.Fprintln(w, "\nDebts")
	if len(d.Debts) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, dd := range d.Debts {
		fmt.Fprintf(w, "  [%d] %s (%s) - %s\n", dd.ID, dd.Name, dd.Type, core.FormatAmount(dd.Balance))
	}

	fmt.Fprintln(w, "\nCategory Balances")
	if len(d.Categories) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, c := range d.Categories {
		indent := "  "
		pct := fmt.Sprintf(" (%s%%)", c.Category.AllocationPct.StringFixed(2))
		if !c.Category.IsTopLevel() {
			indent = "    "
			pct = ""
		}
		status := ""
		if c.Overspent {
			status = " OVERSPENT"
		}
		fmt.Fprintf(w, "%s[%d] %s%s: allocated=%s spent=%s available=%s%s\n",
			indent, c.Category.ID, c.Category.Name, pct,
			core.FormatAmount(c.Allocated), core.FormatAmount(c.Spent), core.FormatAmount(c.Available), status)
	}

	fmt.Fprintln(w, "\nGoals")
	if len(d.Goals) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, g := range d.Goals {
		days := "N/A"
		if g.DaysRemaining != nil {
			days = fmt.Sprintf("%d", *g.DaysRemaining)
		}
		daily := "N/A"
		if g.DailyNeeded.Valid {
			daily = core.FormatAmount(g.DailyNeeded.Decimal) + "/day"
		}
		behind := ""
		if g.Behind {
			behind = " BEHIND"
		}
		fmt.Fprintf(w, "  [%d] %s (%s) | target=%s current=%s remaining=%s days=%s daily_needed=%s status=%s%s\n",
			g.GoalID, g.Name, g.Type,
			core.FormatAmount(g.TargetAmount), core.FormatAmount(g.CurrentAmount), core.FormatAmount(g.Remaining),
			days, daily, g.Status, behind)
	}

	fmt.Fprintln(w, "\nPending Expenses")
	if len(d.PendingExpenses) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, e := range d.PendingExpenses {
		fmt.Fprintf(w, "  [%d] %s category=%d amount=%s remaining=%s note=%s\n",
			e.ID, e.Date, e.CategoryID, core.FormatAmount(e.Amount), core.FormatAmount(e.Remaining()), orDash(e.Note))
	}

	fmt.Fprintf(w, "\nTotal assets:  %s\n", core.FormatAmount(d.TotalAssets))
	fmt.Fprintf(w, "Total debts:   %s\n", core.FormatAmount(d.TotalDebts))
	fmt.Fprintf(w, "Net worth:     %s\n", core.FormatAmount(d.NetWorth))
}

// historyCmd prints recent paychecks, expenses, and balance updates.
type historyCmd struct {
	app   *App
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "display recent paychecks, expenses, and balance edits" }
func (*historyCmd) Usage() string {
	return `budget-cli history [-n <limit>]

  Displays the most recent paychecks, expenses, and balance updates.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 10, "Number of records of each kind to show")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	h, err := c.app.Reports.History(ctx, c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building history: %v\n", err)
		return subcommands.ExitFailure
	}
	renderHistory(os.Stdout, h)
	return subcommands.ExitSuccess
}

func renderHistory(w io.Writer, h services.History) {
	fmt.Fprintln(w, "=== HISTORY ===")

	fmt.Fprintln(w, "\nRecent Paychecks")
	if len(h.Paychecks) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, p := range h.Paychecks {
		fmt.Fprintf(w, "  [%d] %s amount=%s note=%s\n", p.ID, p.Date, core.FormatAmount(p.Amount), orDash(p.Note))
	}

	fmt.Fprintln(w, "\nRecent Expenses")
	if len(h.Expenses) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, e := range h.Expenses {
		fmt.Fprintf(w, "  [%d] %s category=%d amount=%s note=%s tags=%s\n",
			e.ID, e.Date, e.CategoryID, core.FormatAmount(e.Amount), orDash(e.Note), orDash(e.Tags))
	}

	fmt.Fprintln(w, "\nRecent Balance Updates")
	if len(h.BalanceUpdates) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, u := range h.BalanceUpdates {
		fmt.Fprintf(w, "  [%d] %s %s:%d %s -> %s note=%s\n",
			u.ID, u.Date, u.EntityType, u.EntityID,
			core.FormatAmount(u.OldBalance), core.FormatAmount(u.NewBalance), orDash(u.Note))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
