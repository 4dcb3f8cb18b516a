package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/services"
)

// paycheckCmd records a paycheck and splits it across the top-level
// categories by their allocation percentages.
type paycheckCmd struct {
	app    *App
	date   string
	amount string
	note   string
}

func (*paycheckCmd) Name() string     { return "paycheck" }
func (*paycheckCmd) Synopsis() string { return "record a paycheck and allocate it across categories" }
func (*paycheckCmd) Usage() string {
	return `budget-cli paycheck -a <amount> [-d <date>] [-note <note>]

  Records a paycheck and creates one allocation row per top-level
  category. Requires the category percentages to total 100.
`
}

func (c *paycheckCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Paycheck amount")
	f.StringVar(&c.date, "d", "", "Paycheck date (YYYY-MM-DD), defaults to today")
	f.StringVar(&c.note, "note", "", "Optional note")
}

func (c *paycheckCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount %q: %v\n", c.amount, err)
		return subcommands.ExitUsageError
	}
	date, err := parseDateFlag(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date %q: %v\n", c.date, err)
		return subcommands.ExitUsageError
	}

	id, err := c.app.Allocations.AddPaycheck(ctx, date, amount, c.note)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error recording paycheck: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Recorded paycheck %d for %s\n", id, core.FormatAmount(amount))
	return subcommands.ExitSuccess
}

// targetFlags collects repeated -t type:id:percent flags.
type targetFlags []services.AllocationTarget

func (t *targetFlags) String() string { return fmt.Sprintf("%d targets", len(*t)) }

func (t *targetFlags) Set(v string) error {
	parts := strings.Split(v, ":")
	if len(parts) != 3 {
		return fmt.Errorf("expected type:id:percent, got %q", v)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id in %q: %w", v, err)
	}
	pct, err := decimal.NewFromString(parts[2])
	if err != nil {
		return fmt.Errorf("invalid percent in %q: %w", v, err)
	}
	*t = append(*t, services.AllocationTarget{
		Type:    core.TargetType(parts[0]),
		ID:      id,
		Percent: pct,
	})
	return nil
}

// incomeCmd posts an income transaction against weighted account and
// debt targets.
type incomeCmd struct {
	app     *App
	date    string
	amount  string
	note    string
	targets targetFlags
}

func (*incomeCmd) Name() string     { return "income" }
func (*incomeCmd) Synopsis() string { return "post income across weighted account and debt targets" }
func (*incomeCmd) Usage() string {
	return `budget-cli income -a <amount> -t account:1:60 -t debt:2:40 [-d <date>]

  Posts an income transaction. Each -t flag names one target as
  type:id:percent; percentages must total 100. Account targets gain
  their share, debt targets shrink toward zero.
`
}

func (c *incomeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Income amount")
	f.StringVar(&c.date, "d", "", "Income date (YYYY-MM-DD), defaults to today")
	f.StringVar(&c.note, "note", "", "Optional note")
	f.Var(&c.targets, "t", "Target as type:id:percent (repeatable)")
}

func (c *incomeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount %q: %v\n", c.amount, err)
		return subcommands.ExitUsageError
	}
	date, err := parseDateFlag(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date %q: %v\n", c.date, err)
		return subcommands.ExitUsageError
	}

	id, err := c.app.Allocations.PostIncome(ctx, date, amount, c.note, c.targets)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error posting income: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Posted income %d for %s across %d targets\n", id, core.FormatAmount(amount), len(c.targets))
	return subcommands.ExitSuccess
}

func parseDateFlag(s string) (core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return core.Today(), nil
	}
	return core.ParseDate(s)
}
