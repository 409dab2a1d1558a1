package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andy/bizhaven/internal/domain"
	"github.com/spf13/cobra"
)

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Record and list payments",
	Long:  `Record payments against invoices. Invoice status follows the payment sum.`,
}

var paymentsAddCmd = &cobra.Command{
	Use:   "add [invoice_id_or_number] [amount]",
	Short: "Record a payment against an invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve invoice: %w", err)
		}

		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid amount: %w", err)
		}

		method, _ := cmd.Flags().GetString("method")
		notes, _ := cmd.Flags().GetString("notes")

		dateStr, _ := cmd.Flags().GetString("date")
		paidOn, err := parseDate(dateStr)
		if err != nil {
			return fmt.Errorf("invalid payment date: %w", err)
		}

		payment, err := appInstance.InvoiceService.RecordPayment(ctx, invoice.ID, amount, method, paidOn, notes)
		if err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}

		// Re-read to show the recomputed status
		updated, err := appInstance.InvoiceService.GetInvoice(ctx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}

		fmt.Printf("✓ Payment of $%.2f recorded against %s (ID: %d)\n",
			payment.Amount, updated.InvoiceNumber, payment.ID)
		fmt.Printf("  Invoice status: %s\n", updated.Status)
		return nil
	},
}

var paymentsListCmd = &cobra.Command{
	Use:   "list [invoice_id_or_number]",
	Short: "List payments for an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoice, err := resolveInvoice(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve invoice: %w", err)
		}

		payments, err := appInstance.PaymentRepo.ListByInvoice(ctx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}

		if len(payments) == 0 {
			fmt.Println("No payments found")
			return nil
		}

		fmt.Printf("%-5s %-12s %-12s %-15s %-30s\n", "ID", "Date", "Amount", "Method", "Notes")
		fmt.Println("------------------------------------------------------------------------------")

		var paid float64
		for _, payment := range payments {
			fmt.Printf("%-5d %-12s $%-11.2f %-15s %-30s\n",
				payment.ID,
				payment.PaidOn.Format("2006-01-02"),
				payment.Amount,
				truncate(payment.Method, 15),
				truncate(payment.Notes, 30),
			)
			paid += payment.Amount
		}

		fmt.Printf("\nPaid $%.2f of $%.2f (%s)\n", paid, invoice.Total, invoice.Status)
		return nil
	},
}

// resolveInvoice resolves an invoice by ID or invoice number
func resolveInvoice(ctx context.Context, idOrNumber string) (*domain.Invoice, error) {
	if id, err := strconv.ParseInt(idOrNumber, 10, 64); err == nil {
		return appInstance.InvoiceService.GetInvoice(ctx, id)
	}
	return appInstance.InvoiceService.GetInvoiceByNumber(ctx, idOrNumber)
}

func init() {
	paymentsCmd.AddCommand(paymentsAddCmd)
	paymentsCmd.AddCommand(paymentsListCmd)

	paymentsAddCmd.Flags().String("method", "bank_transfer", "Payment method")
	paymentsAddCmd.Flags().String("date", "", "Payment date (YYYY-MM-DD, default today)")
	paymentsAddCmd.Flags().String("notes", "", "Notes")
}
