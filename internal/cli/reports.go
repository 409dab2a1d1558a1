package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Business reports and exports",
	Long:  `Dashboard overview, monthly tax estimates, and CSV exports.`,
}

var reportsDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the business overview",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		summary, err := appInstance.ReportService.Dashboard(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("failed to build dashboard: %w", err)
		}

		fmt.Println("Business overview")
		fmt.Println("-----------------")
		fmt.Printf("  Earnings (all time):  $%.2f\n", summary.Earnings)
		fmt.Printf("  Outstanding:          $%.2f\n", summary.Outstanding)
		fmt.Printf("  Upcoming invoices:    %d\n", summary.UpcomingInvoices)
		fmt.Printf("  Expenses (all time):  $%.2f\n", summary.Expenses)
		return nil
	},
}

var reportsTaxCmd = &cobra.Command{
	Use:   "tax [month]",
	Short: "Estimate tax to set aside for a month (YYYY-MM)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		month := time.Now().Format("2006-01")
		if len(args) > 0 {
			month = args[0]
		}

		rate := appInstance.Config.Tax.EstimateRate
		if cmd.Flags().Changed("rate") {
			rate, _ = cmd.Flags().GetFloat64("rate")
		}

		estimate, err := appInstance.ReportService.EstimateTax(ctx, month, rate)
		if err != nil {
			return fmt.Errorf("failed to estimate tax: %w", err)
		}

		fmt.Printf("Tax estimate for %s (rate %.0f%%)\n", estimate.Month, rate*100)
		fmt.Printf("  Income:   $%.2f\n", estimate.Income)
		fmt.Printf("  Expenses: $%.2f\n", estimate.Costs)
		fmt.Printf("  Taxable:  $%.2f\n", estimate.Taxable)
		fmt.Printf("  Set aside: $%.2f\n", estimate.Estimate)
		return nil
	},
}

var reportsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all invoices to CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		outPath, _ := cmd.Flags().GetString("out")
		if outPath == "" {
			dir := appInstance.Config.Invoice.ExportDir
			if dir == "" {
				dir = "."
			}
			outPath = filepath.Join(dir, fmt.Sprintf("invoices-%s.csv", time.Now().Format("20060102")))
		}

		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("failed to create export file: %w", err)
		}
		defer f.Close()

		if err := appInstance.ReportService.ExportInvoicesCSV(ctx, f); err != nil {
			return fmt.Errorf("failed to export invoices: %w", err)
		}

		fmt.Printf("✓ Invoices exported to %s\n", outPath)
		return nil
	},
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Invoice reminders",
}

var remindersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending invoice reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		reminders, err := appInstance.ReportService.PendingReminders(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("failed to list reminders: %w", err)
		}

		if len(reminders) == 0 {
			fmt.Println("No pending reminders")
			return nil
		}

		fmt.Printf("%-5s %-10s %-12s %-10s\n", "ID", "Invoice", "Due", "Channel")
		fmt.Println("------------------------------------------")

		for _, reminder := range reminders {
			fmt.Printf("%-5d %-10d %-12s %-10s\n",
				reminder.ID,
				reminder.InvoiceID,
				reminder.ReminderDate.Format("2006-01-02"),
				reminder.Channel,
			)
		}

		fmt.Printf("\nTotal: %d reminder(s)\n", len(reminders))
		return nil
	},
}

func init() {
	remindersCmd.AddCommand(remindersListCmd)

	reportsCmd.AddCommand(reportsDashboardCmd)
	reportsCmd.AddCommand(reportsTaxCmd)
	reportsCmd.AddCommand(reportsExportCmd)

	reportsTaxCmd.Flags().Float64("rate", 0, "Override the configured estimate rate")
	reportsExportCmd.Flags().String("out", "", "Output file path")
}
