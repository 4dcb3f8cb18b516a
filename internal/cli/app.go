// Package cli implements the budget command line application.
package cli

import (
	"github.com/google/subcommands"

	"budget/internal/services"
)

// App bundles the services every subcommand runs against.
type App struct {
	Allocations *services.AllocationService
	Expenses    *services.ExpenseService
	Goals       *services.GoalService
	Balances    *services.BalanceService
	Reports     *services.ReportService
}

// Register registers all subcommands on the commander.
func Register(c *subcommands.Commander, app *App) {
	c.Register(&dashboardCmd{app: app}, "reports")
	c.Register(&historyCmd{app: app}, "reports")

	c.Register(&paycheckCmd{app: app}, "income")
	c.Register(&incomeCmd{app: app}, "income")

	c.Register(&expenseCmd{app: app}, "spending")
	c.Register(&payCmd{app: app}, "spending")

	c.Register(&accountAddCmd{app: app}, "balances")
	c.Register(&debtAddCmd{app: app}, "balances")
	c.Register(&setBalanceCmd{app: app}, "balances")

	c.Register(&categoriesCmd{app: app}, "categories")
	c.Register(&setupCategoriesCmd{app: app}, "categories")

	c.Register(&goalAddCmd{app: app}, "goals")
	c.Register(&goalsCmd{app: app}, "goals")
	c.Register(&goalDeleteCmd{app: app}, "goals")
}
