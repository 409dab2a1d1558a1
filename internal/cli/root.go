package cli

import (
	"github.com/andy/bizhaven/internal/app"
	"github.com/spf13/cobra"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "bizhaven",
	Short: "A CLI back office for small businesses",
	Long: `BizHaven keeps a small business's books in one encrypted local database:
clients, projects, invoices, payments, expenses, and recurring billing.

Use subcommands to manage each area. Run 'bizhaven reports dashboard'
for a quick overview.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	// Add all subcommands
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(paymentsCmd)
	rootCmd.AddCommand(recurringCmd)
	rootCmd.AddCommand(expensesCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(remindersCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(resetCmd)
}
