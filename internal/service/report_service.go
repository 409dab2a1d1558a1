package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/andy/bizhaven/internal/domain"
	"github.com/andy/bizhaven/internal/repository"
)

// DashboardSummary is the read-side overview of the ledger.
type DashboardSummary struct {
	Earnings         float64 // all-time payments received
	UpcomingInvoices int     // unpaid invoices not yet past due
	Expenses         float64 // all-time expenses
	Outstanding      float64 // unpaid invoice totals
}

// TaxEstimate is a rough monthly set-aside figure: taxable income times a
// flat configured rate. Not tax advice.
type TaxEstimate struct {
	Month    string
	Income   float64
	Costs    float64
	Taxable  float64
	Estimate float64
}

// ReportService provides read-only aggregates over the ledger
type ReportService interface {
	Dashboard(ctx context.Context, today time.Time) (*DashboardSummary, error)
	EstimateTax(ctx context.Context, month string, rate float64) (*TaxEstimate, error)
	// ExportInvoicesCSV writes all invoices with client names and
	// paid-to-date sums as CSV.
	ExportInvoicesCSV(ctx context.Context, w io.Writer) error
	// PendingReminders lists unsent reminders due on or before asOf
	PendingReminders(ctx context.Context, asOf time.Time) ([]*domain.Reminder, error)
}

type reportService struct {
	invoiceRepo  repository.InvoiceRepository
	paymentRepo  repository.PaymentRepository
	expenseRepo  repository.ExpenseRepository
	reminderRepo repository.ReminderRepository
}

// NewReportService creates a new report service
func NewReportService(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	expenseRepo repository.ExpenseRepository,
	reminderRepo repository.ReminderRepository,
) ReportService {
	return &reportService{
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		expenseRepo:  expenseRepo,
		reminderRepo: reminderRepo,
	}
}

func (s *reportService) Dashboard(ctx context.Context, today time.Time) (*DashboardSummary, error) {
	earnings, err := s.paymentRepo.TotalAll(ctx)
	if err != nil {
		return nil, err
	}

	upcoming, err := s.invoiceRepo.CountUpcoming(ctx, today)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenseRepo.TotalAll(ctx)
	if err != nil {
		return nil, err
	}

	outstanding, err := s.invoiceRepo.OutstandingTotal(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		Earnings:         earnings,
		UpcomingInvoices: upcoming,
		Expenses:         expenses,
		Outstanding:      outstanding,
	}, nil
}

func (s *reportService) EstimateTax(ctx context.Context, month string, rate float64) (*TaxEstimate, error) {
	if _, err := time.Parse("2006-01", month); err != nil {
		return nil, &domain.ValidationError{Field: "month", Message: "month must be YYYY-MM"}
	}

	income, err := s.paymentRepo.TotalForMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	costs, err := s.expenseRepo.TotalForMonth(ctx, month)
	if err != nil {
		return nil, err
	}

	taxable := income - costs
	if taxable < 0 {
		taxable = 0
	}

	return &TaxEstimate{
		Month:    month,
		Income:   income,
		Costs:    costs,
		Taxable:  taxable,
		Estimate: taxable * rate,
	}, nil
}

func (s *reportService) ExportInvoicesCSV(ctx context.Context, w io.Writer) error {
	summaries, err := s.invoiceRepo.ListSummaries(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	header := []string{
		"invoice_number", "client", "issue_date", "due_date", "status",
		"subtotal", "discount", "tax", "total", "paid",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, s := range summaries {
		inv := s.Invoice
		record := []string{
			inv.InvoiceNumber,
			s.ClientName,
			inv.IssueDate.Format("2006-01-02"),
			inv.DueDate.Format("2006-01-02"),
			string(inv.Status),
			formatAmount(inv.Subtotal),
			formatAmount(inv.Discount),
			formatAmount(inv.Tax),
			formatAmount(inv.Total),
			formatAmount(s.Paid),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func (s *reportService) PendingReminders(ctx context.Context, asOf time.Time) ([]*domain.Reminder, error) {
	return s.reminderRepo.ListPending(ctx, asOf)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
