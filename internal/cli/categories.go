package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"budget/internal/core"
)

// categoriesCmd lists categories with their balances.
type categoriesCmd struct {
	app *App
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list categories with allocated/spent/available" }
func (*categoriesCmd) Usage() string {
	return `budget-cli categories

  Lists every category with its allocation percentage and balance.
`
}

func (*categoriesCmd) SetFlags(*flag.FlagSet) {}

func (c *categoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	balances, err := c.app.Expenses.CategoryBalances(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing categories: %v\n", err)
		return subcommands.ExitFailure
	}

	if len(balances) == 0 {
		fmt.Println("(none)")
		return subcommands.ExitSuccess
	}
	for _, b := range balances {
		indent := ""
		pct := fmt.Sprintf(" (%s%%)", b.Category.AllocationPct.StringFixed(2))
		if !b.Category.IsTopLevel() {
			indent = "  "
			pct = ""
		}
		status := ""
		if b.Overspent {
			status = " OVERSPENT"
		}
		fmt.Printf("%s[%d] %s%s: allocated=%s spent=%s available=%s%s\n",
			indent, b.Category.ID, b.Category.Name, pct,
			core.FormatAmount(b.Allocated), core.FormatAmount(b.Spent), core.FormatAmount(b.Available), status)
	}
	return subcommands.ExitSuccess
}

// setupCategoriesCmd replaces the category tree with a fresh set of
// top-level categories.
type setupCategoriesCmd struct {
	app  *App
	spec string
}

func (*setupCategoriesCmd) Name() string { return "setup-categories" }
func (*setupCategoriesCmd) Synopsis() string {
	return "replace the category tree with new top-level categories"
}
func (*setupCategoriesCmd) Usage() string {
	return `budget-cli setup-categories [-set "Name:pct,Name:pct,..."]

  Replaces every category with the given top-level set. Percentages
  must total 100. Without -set, installs the default five categories.
`
}

func (c *setupCategoriesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.spec, "set", "", `Categories as "Name:pct,Name:pct"; empty installs the defaults`)
}

// defaultCategories is the starter allocation installed by setup when
// no explicit set is given.
func defaultCategories() []core.Category {
	return []core.Category{
		{Name: "Savings & Debt", AllocationPct: decimal.NewFromInt(40)},
		{Name: "Groceries", AllocationPct: decimal.NewFromInt(20)},
		{Name: "Entertainment", AllocationPct: decimal.NewFromInt(15)},
		{Name: "Clothing", AllocationPct: decimal.NewFromInt(10)},
		{Name: "Misc", AllocationPct: decimal.NewFromInt(15)},
	}
}

func (c *setupCategoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cats := defaultCategories()
	if c.spec != "" {
		var err error
		cats, err = parseCategorySpec(c.spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing categories: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	if err := c.app.Balances.SetupCategories(ctx, cats); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up categories: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Installed %d categories\n", len(cats))
	return subcommands.ExitSuccess
}

func parseCategorySpec(spec string) ([]core.Category, error) {
	var cats []core.Category
	for _, part := range strings.Split(spec, ",") {
		name, pctStr, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok {
			return nil, fmt.Errorf("expected Name:pct, got %q", part)
		}
		pct, err := decimal.NewFromString(pctStr)
		if err != nil {
			return nil, fmt.Errorf("invalid percent in %q: %w", part, err)
		}
		cats = append(cats, core.Category{Name: name, AllocationPct: pct})
	}
	return cats, nil
}
