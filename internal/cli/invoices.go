package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andy/bizhaven/internal/domain"
	"github.com/andy/bizhaven/internal/service"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage invoices",
	Long:  `Create, list, and inspect invoices.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		// Parse filters
		var clientID *int64
		if cmd.Flags().Changed("client") {
			clientArg, _ := cmd.Flags().GetString("client")
			resolved, err := resolveClientID(ctx, clientArg)
			if err != nil {
				return fmt.Errorf("failed to resolve client: %w", err)
			}
			clientID = &resolved
		}

		var status *domain.InvoiceStatus
		if cmd.Flags().Changed("status") {
			statusStr, _ := cmd.Flags().GetString("status")
			s := domain.InvoiceStatus(statusStr)
			if !domain.ValidInvoiceStatus(s) {
				return fmt.Errorf("unknown status %q (expected draft, sent, partial, or paid)", statusStr)
			}
			status = &s
		}

		invoices, err := appInstance.InvoiceService.ListInvoices(ctx, clientID, status)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		// Print table header
		fmt.Printf("%-5s %-18s %-12s %-12s %-12s %-10s\n", "ID", "Number", "Issued", "Due", "Total", "Status")
		fmt.Println("----------------------------------------------------------------------------")

		for _, invoice := range invoices {
			fmt.Printf("%-5d %-18s %-12s %-12s $%-11.2f %-10s\n",
				invoice.ID,
				truncate(invoice.InvoiceNumber, 18),
				invoice.IssueDate.Format("2006-01-02"),
				invoice.DueDate.Format("2006-01-02"),
				invoice.Total,
				invoice.Status,
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create [client_id_or_name]",
	Short: "Create a new invoice",
	Long: `Create a new invoice with line items. Each --item is "description:qty:rate";
use --nontaxable-item for lines that tax should not apply to.

Examples:
  bizhaven invoices create "Acme Corp" --item "Design work:10:85" --tax 0.08
  bizhaven invoices create 3 --item "Retainer:1:500" --recurring monthly --next-run 2026-10-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, err := resolveClientID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve client: %w", err)
		}

		itemSpecs, _ := cmd.Flags().GetStringArray("item")
		nontaxableSpecs, _ := cmd.Flags().GetStringArray("nontaxable-item")
		if len(itemSpecs)+len(nontaxableSpecs) == 0 {
			return fmt.Errorf("at least one --item or --nontaxable-item is required")
		}

		items := make([]service.ItemDraft, 0, len(itemSpecs)+len(nontaxableSpecs))
		for _, spec := range itemSpecs {
			item, err := parseItemSpec(spec, true)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		for _, spec := range nontaxableSpecs {
			item, err := parseItemSpec(spec, false)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		// Dates default to today / today + configured due days
		issueStr, _ := cmd.Flags().GetString("issue")
		issueDate, err := parseDate(issueStr)
		if err != nil {
			return fmt.Errorf("invalid issue date: %w", err)
		}

		var dueDate time.Time
		if cmd.Flags().Changed("due") {
			dueStr, _ := cmd.Flags().GetString("due")
			dueDate, err = parseDate(dueStr)
			if err != nil {
				return fmt.Errorf("invalid due date: %w", err)
			}
		} else {
			dueDate = issueDate.AddDate(0, 0, appInstance.Config.Invoice.DefaultDueDays)
		}

		number, _ := cmd.Flags().GetString("number")
		if number == "" {
			prefix := appInstance.Config.Invoice.NumberPrefix
			if prefix == "" {
				prefix = "INV"
			}
			number = fmt.Sprintf("%s-%s", prefix, time.Now().Format("20060102-150405"))
		}

		taxRate := appInstance.Config.Invoice.DefaultTaxRate
		if cmd.Flags().Changed("tax") {
			taxRate, _ = cmd.Flags().GetFloat64("tax")
		}

		discount, _ := cmd.Flags().GetFloat64("discount")
		notes, _ := cmd.Flags().GetString("notes")

		reminderDays := 0
		if cmd.Flags().Changed("reminder-days") {
			reminderDays, _ = cmd.Flags().GetInt("reminder-days")
		}

		draft := service.InvoiceDraft{
			ClientID:      clientID,
			InvoiceNumber: number,
			IssueDate:     issueDate,
			DueDate:       dueDate,
			Items:         items,
			TaxRate:       taxRate,
			Discount:      discount,
			Notes:         notes,
			ReminderDays:  reminderDays,
			Recurring:     domain.RecurringNone,
		}

		if cmd.Flags().Changed("project") {
			projectID, _ := cmd.Flags().GetInt64("project")
			draft.ProjectID = &projectID
		}
		if cmd.Flags().Changed("job") {
			jobID, _ := cmd.Flags().GetInt64("job")
			draft.JobID = &jobID
		}

		if cmd.Flags().Changed("recurring") {
			ruleStr, _ := cmd.Flags().GetString("recurring")
			rule := domain.RecurringRule(ruleStr)
			if !domain.ValidRecurringRule(rule) || rule == domain.RecurringNone {
				return fmt.Errorf("unknown recurring rule %q (expected weekly, monthly, or quarterly)", ruleStr)
			}
			draft.Recurring = rule

			// Default the first run to one period from the issue date
			next := issueDate.AddDate(0, 0, rule.PeriodDays())
			if cmd.Flags().Changed("next-run") {
				nextStr, _ := cmd.Flags().GetString("next-run")
				next, err = parseDate(nextStr)
				if err != nil {
					return fmt.Errorf("invalid next-run date: %w", err)
				}
			}
			draft.NextRunDate = &next
		}

		fieldPairs, _ := cmd.Flags().GetStringArray("field")
		if len(fieldPairs) > 0 {
			fields := make(map[string]any, len(fieldPairs))
			for _, pair := range fieldPairs {
				key, value, found := strings.Cut(pair, "=")
				if !found || key == "" {
					return fmt.Errorf("invalid --field %q (expected key=value)", pair)
				}
				fields[key] = value
			}
			draft.CustomFields = fields
		}

		invoice, err := appInstance.InvoiceService.CreateInvoice(ctx, draft)
		if err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return fmt.Errorf("invoice number %q already exists", number)
			}
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		fmt.Printf("✓ Invoice created: %s (ID: %d)\n", invoice.InvoiceNumber, invoice.ID)
		fmt.Printf("  Subtotal: $%.2f\n", invoice.Subtotal)
		if invoice.Discount > 0 {
			fmt.Printf("  Discount: $%.2f\n", invoice.Discount)
		}
		fmt.Printf("  Tax:      $%.2f\n", invoice.Tax)
		fmt.Printf("  Total:    $%.2f\n", invoice.Total)
		fmt.Printf("  Due:      %s\n", invoice.DueDate.Format("2006-01-02"))
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [id_or_number]",
	Short: "Show an invoice with its line items and payments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var invoice *domain.Invoice
		var err error
		if id, parseErr := strconv.ParseInt(args[0], 10, 64); parseErr == nil {
			invoice, err = appInstance.InvoiceService.GetInvoice(ctx, id)
		} else {
			invoice, err = appInstance.InvoiceService.GetInvoiceByNumber(ctx, args[0])
		}
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}

		fmt.Printf("Invoice %s (ID: %d)\n", invoice.InvoiceNumber, invoice.ID)
		fmt.Printf("  Status:  %s\n", invoice.Status)
		fmt.Printf("  Issued:  %s\n", invoice.IssueDate.Format("2006-01-02"))
		fmt.Printf("  Due:     %s\n", invoice.DueDate.Format("2006-01-02"))
		if invoice.Recurring != domain.RecurringNone {
			fmt.Printf("  Repeats: %s", invoice.Recurring)
			if invoice.NextRunDate != nil {
				fmt.Printf(" (next run %s)", invoice.NextRunDate.Format("2006-01-02"))
			}
			fmt.Println()
		}
		fmt.Println()

		fmt.Printf("  %-40s %10s %10s %12s\n", "Description", "Qty", "Rate", "Amount")
		for _, item := range invoice.Items {
			marker := ""
			if !item.Taxable {
				marker = " *"
			}
			fmt.Printf("  %-40s %10.2f %10.2f %12.2f%s\n",
				truncate(item.Description, 40), item.Quantity, item.Rate, item.Amount, marker)
		}
		fmt.Println()

		fmt.Printf("  Subtotal: $%.2f\n", invoice.Subtotal)
		if invoice.Discount > 0 {
			fmt.Printf("  Discount: $%.2f\n", invoice.Discount)
		}
		fmt.Printf("  Tax:      $%.2f\n", invoice.Tax)
		fmt.Printf("  Total:    $%.2f\n", invoice.Total)

		payments, err := appInstance.PaymentRepo.ListByInvoice(ctx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to list payments: %w", err)
		}
		if len(payments) > 0 {
			var paid float64
			fmt.Println()
			fmt.Println("  Payments:")
			for _, payment := range payments {
				fmt.Printf("    %s  $%.2f  %s\n",
					payment.PaidOn.Format("2006-01-02"), payment.Amount, payment.Method)
				paid += payment.Amount
			}
			fmt.Printf("  Paid to date: $%.2f\n", paid)
		}

		if len(invoice.CustomFields) > 0 {
			fmt.Println()
			fmt.Println("  Custom fields:")
			for key, value := range invoice.CustomFields {
				fmt.Printf("    %s: %v\n", key, value)
			}
		}

		if invoice.Notes != "" {
			fmt.Printf("\n  Notes: %s\n", invoice.Notes)
		}
		return nil
	},
}

// parseItemSpec parses "description:qty:rate" into an item draft
func parseItemSpec(spec string, taxable bool) (service.ItemDraft, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return service.ItemDraft{}, fmt.Errorf("invalid item %q (expected description:qty:rate)", spec)
	}

	qty, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return service.ItemDraft{}, fmt.Errorf("invalid quantity in item %q", spec)
	}
	rate, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return service.ItemDraft{}, fmt.Errorf("invalid rate in item %q", spec)
	}

	return service.ItemDraft{
		Description: strings.TrimSpace(parts[0]),
		Quantity:    qty,
		Rate:        rate,
		Taxable:     taxable,
	}, nil
}

func init() {
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesCreateCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)

	// List flags
	invoicesListCmd.Flags().String("client", "", "Filter by client ID or name")
	invoicesListCmd.Flags().String("status", "", "Filter by status (draft, sent, partial, paid)")

	// Create flags
	invoicesCreateCmd.Flags().StringArray("item", nil, "Line item as description:qty:rate (repeatable)")
	invoicesCreateCmd.Flags().StringArray("nontaxable-item", nil, "Non-taxable line item as description:qty:rate (repeatable)")
	invoicesCreateCmd.Flags().String("number", "", "Invoice number (generated if omitted)")
	invoicesCreateCmd.Flags().String("issue", "", "Issue date (YYYY-MM-DD, default today)")
	invoicesCreateCmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	invoicesCreateCmd.Flags().Float64("tax", 0, "Tax rate as a decimal (e.g. 0.08)")
	invoicesCreateCmd.Flags().Float64("discount", 0, "Flat discount amount")
	invoicesCreateCmd.Flags().String("notes", "", "Notes")
	invoicesCreateCmd.Flags().Int64("project", 0, "Attach to project ID")
	invoicesCreateCmd.Flags().Int64("job", 0, "Attach to job ID")
	invoicesCreateCmd.Flags().Int("reminder-days", 0, "Schedule a reminder this many days before the due date")
	invoicesCreateCmd.Flags().String("recurring", "", "Recurring rule (weekly, monthly, quarterly)")
	invoicesCreateCmd.Flags().String("next-run", "", "First recurring run date (YYYY-MM-DD)")
	invoicesCreateCmd.Flags().StringArray("field", nil, "Custom field as key=value (repeatable)")
}
