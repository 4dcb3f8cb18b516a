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

// accountAddCmd creates an account.
type accountAddCmd struct {
	app         *App
	name        string
	institution string
	accType     string
	balance     string
	rate        string
}

func (*accountAddCmd) Name() string     { return "account-add" }
func (*accountAddCmd) Synopsis() string { return "create an account" }
func (*accountAddCmd) Usage() string {
	return `budget-cli account-add -name <name> -type <type> [-balance <amount>] [-institution <name>] [-rate <pct>]

  Creates a cash or investment account.
`
}

func (c *accountAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Account name")
	f.StringVar(&c.institution, "institution", "", "Institution holding the account")
	f.StringVar(&c.accType, "type", "checking", "Account type (checking, savings, hysa, 401k, brokerage, ...)")
	f.StringVar(&c.balance, "balance", "0", "Starting balance")
	f.StringVar(&c.rate, "rate", "", "Interest rate percent, if any")
}

func (c *accountAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	balance, err := core.ParseAmount(c.balance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing balance %q: %v\n", c.balance, err)
		return subcommands.ExitUsageError
	}

	a := core.Account{
		Name:        c.name,
		Institution: c.institution,
		Type:        c.accType,
		Balance:     balance,
	}
	if c.rate != "" {
		rate, err := decimal.NewFromString(c.rate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing rate %q: %v\n", c.rate, err)
			return subcommands.ExitUsageError
		}
		a.InterestRate = decimal.NewNullDecimal(rate)
	}

	id, err := c.app.Balances.CreateAccount(ctx, a)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating account: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Created account %d (%s)\n", id, c.name)
	return subcommands.ExitSuccess
}

// debtAddCmd creates a debt.
type debtAddCmd struct {
	app         *App
	name        string
	institution string
	debtType    string
	balance     string
	rate        string
	minPayment  string
	dueDay      int
}

func (*debtAddCmd) Name() string     { return "debt-add" }
func (*debtAddCmd) Synopsis() string { return "create a debt" }
func (*debtAddCmd) Usage() string {
	return `budget-cli debt-add -name <name> -type <type> -balance <amount> [-min <amount>] [-due <day>]

  Creates a debt with an owed balance that payments shrink toward zero.
`
}

func (c *debtAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Debt name")
	f.StringVar(&c.institution, "institution", "", "Institution holding the debt")
	f.StringVar(&c.debtType, "type", "credit_card", "Debt type (credit_card, loan, personal, medical, ...)")
	f.StringVar(&c.balance, "balance", "0", "Current owed balance")
	f.StringVar(&c.rate, "rate", "", "Interest rate percent, if any")
	f.StringVar(&c.minPayment, "min", "", "Minimum payment, if any")
	f.IntVar(&c.dueDay, "due", 0, "Due day of month (1-31)")
}

func (c *debtAddCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	balance, err := core.ParseAmount(c.balance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing balance %q: %v\n", c.balance, err)
		return subcommands.ExitUsageError
	}

	d := core.Debt{
		Name:        c.name,
		Institution: c.institution,
		Type:        c.debtType,
		Balance:     balance,
		DueDay:      c.dueDay,
	}
	if c.rate != "" {
		rate, err := decimal.NewFromString(c.rate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing rate %q: %v\n", c.rate, err)
			return subcommands.ExitUsageError
		}
		d.InterestRate = decimal.NewNullDecimal(rate)
	}
	if c.minPayment != "" {
		payment, err := core.ParseAmount(c.minPayment)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing minimum payment %q: %v\n", c.minPayment, err)
			return subcommands.ExitUsageError
		}
		d.MinPayment = decimal.NewNullDecimal(payment)
	}

	id, err := c.app.Balances.CreateDebt(ctx, d)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating debt: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Created debt %d (%s)\n", id, c.name)
	return subcommands.ExitSuccess
}

// setBalanceCmd edits an account or debt balance directly.
type setBalanceCmd struct {
	app        *App
	entityType string
	id         int64
	balance    string
	date       string
	note       string
}

func (*setBalanceCmd) Name() string     { return "set-balance" }
func (*setBalanceCmd) Synopsis() string { return "edit an account or debt balance directly" }
func (*setBalanceCmd) Usage() string {
	return `budget-cli set-balance -type <account|debt> -id <id> -balance <amount> [-note <note>]

  Sets a balance to a new value and records the change in the audit
  trail. Use this for statement reconciliation, not for payments.
`
}

func (c *setBalanceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.entityType, "type", "account", "Entity type: account or debt")
	f.Int64Var(&c.id, "id", 0, "Entity id")
	f.StringVar(&c.balance, "balance", "", "New balance")
	f.StringVar(&c.date, "d", "", "Effective date (YYYY-MM-DD), defaults to today")
	f.StringVar(&c.note, "note", "", "Optional note")
}

func (c *setBalanceCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	balance, err := core.ParseAmount(c.balance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing balance %q: %v\n", c.balance, err)
		return subcommands.ExitUsageError
	}
	date, err := parseDateFlag(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date %q: %v\n", c.date, err)
		return subcommands.ExitUsageError
	}

	if err := c.app.Balances.SetBalance(ctx, core.LinkType(c.entityType), c.id, balance, date, c.note); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting balance: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Set %s %d balance to %s\n", c.entityType, c.id, core.FormatAmount(balance))
	return subcommands.ExitSuccess
}
