package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/bizhaven/internal/domain"
	"github.com/andy/bizhaven/internal/service"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample data for trying things out",
	Long:  `Insert a couple of sample clients, an invoice with a partial payment, and an expense.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		acme := domain.NewClient("Acme Bakery")
		acme.Email = "hello@acme.test"
		acme.Phone = "555-1000"
		acme.Notes = "Prefers morning calls."
		if err := appInstance.ClientRepo.Create(ctx, acme); err != nil {
			return fmt.Errorf("failed to create sample client: %w", err)
		}

		northside := domain.NewClient("Northside Repairs")
		northside.Email = "ops@northside.test"
		northside.Phone = "555-2000"
		northside.Notes = "Needs monthly maintenance invoices."
		if err := appInstance.ClientRepo.Create(ctx, northside); err != nil {
			return fmt.Errorf("failed to create sample client: %w", err)
		}

		today := time.Now().Truncate(24 * time.Hour)
		invoice, err := appInstance.InvoiceService.CreateInvoice(ctx, service.InvoiceDraft{
			ClientID:      acme.ID,
			InvoiceNumber: "INV-1001",
			IssueDate:     today,
			DueDate:       today.AddDate(0, 0, 14),
			Items: []service.ItemDraft{
				{Description: "Website refresh", Quantity: 1, Rate: 1200, Taxable: true},
			},
			TaxRate: 0.08,
			Notes:   "Website refresh",
		})
		if err != nil {
			return fmt.Errorf("failed to create sample invoice: %w", err)
		}

		if _, err := appInstance.InvoiceService.RecordPayment(ctx, invoice.ID, 600, "bank", today, "Partial deposit"); err != nil {
			return fmt.Errorf("failed to record sample payment: %w", err)
		}

		expense := &domain.Expense{
			Category:    "Software",
			Vendor:      "Hosting Co",
			Amount:      49,
			ExpenseDate: today,
			Notes:       "Monthly infra",
		}
		if err := appInstance.ExpenseRepo.Create(ctx, expense); err != nil {
			return fmt.Errorf("failed to create sample expense: %w", err)
		}

		fmt.Println("✓ Sample data loaded:")
		fmt.Printf("  Clients:  %s, %s\n", acme.Name, northside.Name)
		fmt.Printf("  Invoice:  %s ($%.2f, %s)\n", invoice.InvoiceNumber, invoice.Total, domain.InvoiceStatusPartial)
		fmt.Println("  Payment:  $600.00 partial deposit")
		fmt.Println("  Expense:  $49.00 hosting")
		return nil
	},
}
