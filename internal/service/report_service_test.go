package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/andy/bizhaven/internal/domain"
	"github.com/andy/bizhaven/internal/repository"
)

type stubInvoiceRepo struct {
	mockInvoiceRepo
	outstanding float64
	upcoming    int
	summaries   []*repository.InvoiceSummary
}

func (s *stubInvoiceRepo) OutstandingTotal(ctx context.Context) (float64, error) {
	return s.outstanding, nil
}

func (s *stubInvoiceRepo) CountUpcoming(ctx context.Context, today time.Time) (int, error) {
	return s.upcoming, nil
}

func (s *stubInvoiceRepo) ListSummaries(ctx context.Context) ([]*repository.InvoiceSummary, error) {
	return s.summaries, nil
}

type stubPaymentRepo struct {
	mockPaymentRepo
	totalAll float64
	byMonth  map[string]float64
}

func (s *stubPaymentRepo) TotalAll(ctx context.Context) (float64, error) { return s.totalAll, nil }
func (s *stubPaymentRepo) TotalForMonth(ctx context.Context, month string) (float64, error) {
	return s.byMonth[month], nil
}

type stubExpenseRepo struct {
	totalAll float64
	byMonth  map[string]float64
}

func (s *stubExpenseRepo) Create(ctx context.Context, expense *domain.Expense) error { return nil }
func (s *stubExpenseRepo) List(ctx context.Context) ([]*domain.Expense, error)       { return nil, nil }
func (s *stubExpenseRepo) TotalAll(ctx context.Context) (float64, error)             { return s.totalAll, nil }
func (s *stubExpenseRepo) TotalForMonth(ctx context.Context, month string) (float64, error) {
	return s.byMonth[month], nil
}

type stubReminderRepo struct {
	pending []*domain.Reminder
}

func (s *stubReminderRepo) ListPending(ctx context.Context, asOf time.Time) ([]*domain.Reminder, error) {
	return s.pending, nil
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	svc := NewReportService(
		&stubInvoiceRepo{outstanding: 696, upcoming: 2},
		&stubPaymentRepo{totalAll: 600},
		&stubExpenseRepo{totalAll: 49},
		&stubReminderRepo{},
	)

	summary, err := svc.Dashboard(ctx, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(summary.Earnings, 600) {
		t.Errorf("expected earnings 600, got %f", summary.Earnings)
	}
	if !almostEqual(summary.Outstanding, 696) {
		t.Errorf("expected outstanding 696, got %f", summary.Outstanding)
	}
	if summary.UpcomingInvoices != 2 {
		t.Errorf("expected 2 upcoming invoices, got %d", summary.UpcomingInvoices)
	}
	if !almostEqual(summary.Expenses, 49) {
		t.Errorf("expected expenses 49, got %f", summary.Expenses)
	}
}

func TestEstimateTax(t *testing.T) {
	ctx := context.Background()
	svc := NewReportService(
		&stubInvoiceRepo{},
		&stubPaymentRepo{byMonth: map[string]float64{"2026-01": 5000}},
		&stubExpenseRepo{byMonth: map[string]float64{"2026-01": 1200}},
		&stubReminderRepo{},
	)

	estimate, err := svc.EstimateTax(ctx, "2026-01", 0.22)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(estimate.Taxable, 3800) {
		t.Errorf("expected taxable 3800, got %f", estimate.Taxable)
	}
	if !almostEqual(estimate.Estimate, 836) {
		t.Errorf("expected estimate 836, got %f", estimate.Estimate)
	}
}

func TestEstimateTax_CostsExceedIncome(t *testing.T) {
	ctx := context.Background()
	svc := NewReportService(
		&stubInvoiceRepo{},
		&stubPaymentRepo{byMonth: map[string]float64{"2026-01": 100}},
		&stubExpenseRepo{byMonth: map[string]float64{"2026-01": 400}},
		&stubReminderRepo{},
	)

	estimate, err := svc.EstimateTax(ctx, "2026-01", 0.22)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(estimate.Taxable, 0) {
		t.Errorf("expected taxable floored at 0, got %f", estimate.Taxable)
	}
	if !almostEqual(estimate.Estimate, 0) {
		t.Errorf("expected estimate 0, got %f", estimate.Estimate)
	}
}

func TestEstimateTax_BadMonth(t *testing.T) {
	ctx := context.Background()
	svc := NewReportService(&stubInvoiceRepo{}, &stubPaymentRepo{}, &stubExpenseRepo{}, &stubReminderRepo{})

	_, err := svc.EstimateTax(ctx, "January 2026", 0.22)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExportInvoicesCSV(t *testing.T) {
	ctx := context.Background()

	issue := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	inv := domain.NewInvoice("INV-1001", 1, issue, issue.AddDate(0, 0, 14))
	inv.Subtotal = 1200
	inv.Tax = 96
	inv.Total = 1296
	inv.Status = domain.InvoiceStatusPartial

	svc := NewReportService(
		&stubInvoiceRepo{summaries: []*repository.InvoiceSummary{
			{Invoice: inv, ClientName: "Acme Bakery", Paid: 600},
		}},
		&stubPaymentRepo{},
		&stubExpenseRepo{},
		&stubReminderRepo{},
	)

	var buf bytes.Buffer
	if err := svc.ExportInvoicesCSV(ctx, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 record, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "invoice_number,client,") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	want := "INV-1001,Acme Bakery,2026-01-05,2026-01-19,partial,1200.00,0.00,96.00,1296.00,600.00"
	if lines[1] != want {
		t.Errorf("expected record %q, got %q", want, lines[1])
	}
}
