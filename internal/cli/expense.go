package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"budget/internal/core"
)

// expenseCmd records an expense against a category.
type expenseCmd struct {
	app      *App
	date     string
	amount   string
	category int64
	note     string
	tags     string
}

func (*expenseCmd) Name() string     { return "expense" }
func (*expenseCmd) Synopsis() string { return "record an expense against a category" }
func (*expenseCmd) Usage() string {
	return `budget-cli expense -a <amount> -c <category-id> [-d <date>] [-note <note>] [-tags <tags>]

  Records an expense. The expense starts unpaid; use 'pay' to settle it
  from an account.
`
}

func (c *expenseCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Expense amount")
	f.Int64Var(&c.category, "c", 0, "Category id")
	f.StringVar(&c.date, "d", "", "Expense date (YYYY-MM-DD), defaults to today")
	f.StringVar(&c.note, "note", "", "Optional note")
	f.StringVar(&c.tags, "tags", "", "Optional comma-separated tags")
}

func (c *expenseCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	id, err := c.app.Expenses.AddExpense(ctx, date, amount, c.category, c.note, c.tags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error recording expense: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Recorded expense %d for %s\n", id, core.FormatAmount(amount))
	return subcommands.ExitSuccess
}

// payCmd moves funds from an account to an expense or debt.
type payCmd struct {
	app        *App
	account    int64
	targetType string
	targetID   int64
	amount     string
	date       string
	note       string
}

func (*payCmd) Name() string     { return "pay" }
func (*payCmd) Synopsis() string { return "pay an expense or debt from an account" }
func (*payCmd) Usage() string {
	return `budget-cli pay -from <account-id> -type <expense|debt> -to <target-id> -a <amount>

  Transfers funds from an account toward an expense or a debt. The
  amount must fit both the account balance and what the target still
  owes.
`
}

func (c *payCmd) SetFlags(f *flag.FlagSet) {
	f.Int64Var(&c.account, "from", 0, "Source account id")
	f.StringVar(&c.targetType, "type", "expense", "Target type: expense or debt")
	f.Int64Var(&c.targetID, "to", 0, "Target expense or debt id")
	f.StringVar(&c.amount, "a", "", "Amount to pay")
	f.StringVar(&c.date, "d", "", "Payment date (YYYY-MM-DD), defaults to today")
	f.StringVar(&c.note, "note", "", "Optional note")
}

func (c *payCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	id, err := c.app.Expenses.AllocateFromAccount(ctx, c.account, core.TargetType(c.targetType), c.targetID, amount, date, c.note)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error paying %s %d: %v\n", c.targetType, c.targetID, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Paid %s from account %d (allocation %d)\n", core.FormatAmount(amount), c.account, id)
	return subcommands.ExitSuccess
}
