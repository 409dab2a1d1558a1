package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "Manage recurring billing",
	Long:  `Generate invoices from recurring schedules that have come due.`,
}

var recurringRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate invoices for all recurring schedules due",
	Long: `Scan for recurring invoices whose next run date has arrived and
generate a fresh invoice from each. Failures are reported per invoice
and never stop the rest of the batch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		today := time.Now().Truncate(24 * time.Hour)
		if cmd.Flags().Changed("date") {
			dateStr, _ := cmd.Flags().GetString("date")
			parsed, err := parseDate(dateStr)
			if err != nil {
				return fmt.Errorf("invalid date: %w", err)
			}
			today = parsed
		}

		report, err := appInstance.RecurrenceService.RunRecurring(ctx, today)
		if err != nil {
			return fmt.Errorf("failed to run recurring billing: %w", err)
		}

		if len(report.Results) == 0 {
			fmt.Println("No recurring invoices due")
			return nil
		}

		for _, result := range report.Results {
			if result.Err != nil {
				fmt.Printf("✗ %s: %v\n", result.SourceNumber, result.Err)
				continue
			}
			fmt.Printf("✓ %s generated %s (ID: %d)\n", result.SourceNumber, result.NewNumber, result.NewID)
		}

		fmt.Printf("\nGenerated %d of %d due invoice(s)\n", report.Created, len(report.Results))
		return nil
	},
}

func init() {
	recurringCmd.AddCommand(recurringRunCmd)

	recurringRunCmd.Flags().String("date", "", "Run as of this date (YYYY-MM-DD, default today)")
}
