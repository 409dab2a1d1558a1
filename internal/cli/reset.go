package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset data in the database",
	Long: `Reset data in the database.

Examples:
  bizhaven reset invoices   # Delete all invoices, payments, and reminders
  bizhaven reset all        # Wipe everything: clients, projects, invoices, expenses`,
}

var resetInvoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Delete all invoices, payments, and reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL invoices, payments, and reminders. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		db := appInstance.DB

		// Order matters due to foreign keys
		tables := []string{
			"reminders",
			"payments",
			"invoice_items",
			"invoices",
		}

		for _, table := range tables {
			if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		fmt.Println("All invoices, payments, and reminders have been deleted.")
		return nil
	},
}

var resetAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Delete all data from every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmPrompt("This will delete ALL data (clients, projects, invoices, everything). Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}

		db := appInstance.DB

		// Order matters due to foreign keys
		tables := []string{
			"reminders",
			"payments",
			"invoice_items",
			"invoices",
			"expenses",
			"jobs",
			"projects",
			"memories",
			"agent_tasks",
			"contracts",
			"clients",
		}

		for _, table := range tables {
			if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		fmt.Println("All data has been deleted.")
		return nil
	},
}

func init() {
	resetCmd.AddCommand(resetInvoicesCmd)
	resetCmd.AddCommand(resetAllCmd)
}
