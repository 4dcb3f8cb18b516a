package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// goalAddCmd creates a goal of any of the four types.
type goalAddCmd struct {
	app      *App
	goalType string
	name     string
	linkType string
	linkID   int64
	target   string
	date     string
	year     int
	limit    string
	override string
}

func (*goalAddCmd) Name() string     { return "goal-add" }
func (*goalAddCmd) Synopsis() string { return "create a savings or payoff goal" }
func (*goalAddCmd) Usage() string {
	return `budget-cli goal-add -type <target_balance|contribution_cap|debt_payoff|custom> -name <name> [flags]

  Creates a goal. Link it to an account, debt, or category with
  -link-type and -link-id so progress tracks that entity's value.
  For debt_payoff goals, the linked debt's balance is snapshotted as
  the starting amount.
`
}

func (c *goalAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.goalType, "type", "", "Goal type")
	f.StringVar(&c.name, "name", "", "Goal name")
	f.StringVar(&c.linkType, "link-type", "", "Linked entity type: account, debt, or category")
	f.Int64Var(&c.linkID, "link-id", 0, "Linked entity id")
	f.StringVar(&c.target, "target", "0", "Target amount (payoff floor for debt_payoff)")
	f.StringVar(&c.date, "date", "", "Target date (YYYY-MM-DD)")
	f.IntVar(&c.year, "year", 0, "Contribution year (contribution_cap)")
	f.StringVar(&c.limit, "limit", "0", "Contribution limit (contribution_cap)")
	f.StringVar(&c.override, "current", "", "Manual current amount (custom)")
}

func (c *goalAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	g := core.Goal{
		Type:     core.GoalType(c.goalType),
		Name:     c.name,
		LinkType: core.LinkType(c.linkType),
		LinkID:   c.linkID,
		Year:     c.year,
	}

	var err error
	if g.TargetAmount, err = core.ParseAmount(c.target); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing target %q: %v\n", c.target, err)
		return subcommands.ExitUsageError
	}
	if g.ContributionLimit, err = core.ParseAmount(c.limit); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing limit %q: %v\n", c.limit, err)
		return subcommands.ExitUsageError
	}
	if c.date != "" {
		if g.TargetDate, err = core.ParseDate(c.date); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing date %q: %v\n", c.date, err)
			return subcommands.ExitUsageError
		}
	}
	if c.override != "" {
		override, err := core.ParseAmount(c.override)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing current amount %q: %v\n", c.override, err)
			return subcommands.ExitUsageError
		}
		g.CurrentOverride = decimal.NewNullDecimal(override)
	}

	id, err := c.app.Goals.AddGoal(ctx, g)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating goal: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Created goal %d (%s)\n", id, c.name)
	return subcommands.ExitSuccess
}

// goalsCmd lists goal progress.
type goalsCmd struct {
	app *App
}

func (*goalsCmd) Name() string     { return "goals" }
func (*goalsCmd) Synopsis() string { return "display progress for every goal" }
func (*goalsCmd) Usage() string {
	return `budget-cli goals

  Displays current amount, remaining, pace, and status for every goal.
`
}

func (*goalsCmd) SetFlags(*flag.FlagSet) {}

func (c *goalsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	progress, err := c.app.Goals.Progress(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing goal progress: %v\n", err)
		return subcommands.ExitFailure
	}

	if len(progress) == 0 {
		fmt.Println("(none)")
		return subcommands.ExitSuccess
	}
	for _, g := range progress {
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
		fmt.Printf("[%d] %s (%s) | target=%s current=%s remaining=%s days=%s daily_needed=%s status=%s%s\n",
			g.GoalID, g.Name, g.Type,
			core.FormatAmount(g.TargetAmount), core.FormatAmount(g.CurrentAmount), core.FormatAmount(g.Remaining),
			days, daily, g.Status, behind)
	}
	return subcommands.ExitSuccess
}

// goalDeleteCmd deletes a goal.
type goalDeleteCmd struct {
	app *App
	id  int64
}

func (*goalDeleteCmd) Name() string     { return "goal-delete" }
func (*goalDeleteCmd) Synopsis() string { return "delete a goal" }
func (*goalDeleteCmd) Usage() string {
	return `budget-cli goal-delete -id <id>

  Deletes a goal. Linked accounts, debts, and categories are untouched.
`
}

func (c *goalDeleteCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.id, "id", 0, "Goal id")
}

func (c *goalDeleteCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.app.Goals.DeleteGoal(ctx, c.id); err != nil {
		fmt.Fprintf(os.Stderr, "Error deleting goal %d: %v\n", c.id, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Deleted goal %d\n", c.id)
	return subcommands.ExitSuccess
}
