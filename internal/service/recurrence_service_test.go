package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/andy/bizhaven/internal/domain"
)

// seedRecurringInvoice installs a stored recurring invoice with one
// taxable line, as the repo would return it.
func seedRecurringInvoice(repo *mockInvoiceRepo, id int64, number string, nextRun time.Time) *domain.Invoice {
	issue := nextRun.AddDate(0, 0, -30)
	inv := domain.NewInvoice(number, 1, issue, issue.AddDate(0, 0, 14))
	inv.ID = id
	inv.Subtotal = 550
	inv.Tax = 44
	inv.Total = 594
	inv.Recurring = domain.RecurringMonthly
	inv.NextRunDate = &nextRun

	repo.invoices[id] = inv
	repo.items[id] = []*domain.InvoiceItem{
		{InvoiceID: id, Description: "Monthly retainer", Quantity: 1, Rate: 550, Amount: 550, Taxable: true},
	}
	repo.dueRecurring = append(repo.dueRecurring, inv)
	if id >= repo.nextID {
		repo.nextID = id
	}
	return inv
}

func newTestRecurrenceService(invRepo *mockInvoiceRepo) RecurrenceService {
	invoices := newTestInvoiceService(invRepo, newMockPaymentRepo(invRepo))
	return NewRecurrenceService(invRepo, invoices, zerolog.Nop())
}

func TestRunRecurring_GeneratesClone(t *testing.T) {
	ctx := context.Background()
	invRepo := newMockInvoiceRepo()
	today := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	src := seedRecurringInvoice(invRepo, 7, "INV-100", today)

	svc := newTestRecurrenceService(invRepo)

	report, err := svc.RunRecurring(ctx, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Created != 1 {
		t.Fatalf("expected 1 invoice created, got %d", report.Created)
	}

	result := report.Results[0]
	if result.Err != nil {
		t.Fatalf("unexpected result error: %v", result.Err)
	}
	if result.NewNumber != "INV-100-20260201" {
		t.Errorf("expected derived number INV-100-20260201, got %s", result.NewNumber)
	}

	clone, err := invRepo.GetByID(ctx, result.NewID)
	if err != nil {
		t.Fatalf("clone not persisted: %v", err)
	}

	if !clone.IssueDate.Equal(today) {
		t.Errorf("expected issue date %v, got %v", today, clone.IssueDate)
	}
	wantDue := today.AddDate(0, 0, 14)
	if !clone.DueDate.Equal(wantDue) {
		t.Errorf("expected due date %v, got %v", wantDue, clone.DueDate)
	}

	// Tax rate is back-derived from the stored figures (44 / 550 = 8%)
	if !almostEqual(clone.Subtotal, 550) {
		t.Errorf("expected subtotal 550, got %f", clone.Subtotal)
	}
	if !almostEqual(clone.Tax, 44) {
		t.Errorf("expected tax 44, got %f", clone.Tax)
	}
	if !almostEqual(clone.Total, 594) {
		t.Errorf("expected total 594, got %f", clone.Total)
	}
	if clone.Status != domain.InvoiceStatusSent {
		t.Errorf("expected clone in sent status, got %s", clone.Status)
	}

	// The clone carries the rule but only the base drives the series
	if clone.Recurring != domain.RecurringMonthly {
		t.Errorf("expected clone to carry the monthly rule, got %s", clone.Recurring)
	}
	if clone.NextRunDate != nil {
		t.Errorf("clone should have no next run date, got %v", clone.NextRunDate)
	}

	// Base schedule advanced by a fixed 30 days
	wantNext := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	if got := invRepo.nextRuns[src.ID]; !got.Equal(wantNext) {
		t.Errorf("expected next run %v, got %v", wantNext, got)
	}
}

func TestRunRecurring_NoneDue(t *testing.T) {
	ctx := context.Background()
	invRepo := newMockInvoiceRepo()
	svc := newTestRecurrenceService(invRepo)

	report, err := svc.RunRecurring(ctx, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Created != 0 || len(report.Results) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}

func TestRunRecurring_FailureIsolation(t *testing.T) {
	ctx := context.Background()
	invRepo := newMockInvoiceRepo()
	today := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	// First source is corrupt (negative discount fails validation on
	// the clone); the second must still generate.
	bad := seedRecurringInvoice(invRepo, 3, "INV-200", today)
	bad.Discount = -50
	good := seedRecurringInvoice(invRepo, 4, "INV-201", today)

	svc := newTestRecurrenceService(invRepo)

	report, err := svc.RunRecurring(ctx, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	if report.Created != 1 {
		t.Fatalf("expected 1 created, got %d", report.Created)
	}

	if report.Results[0].Err == nil {
		t.Errorf("expected first result to carry an error")
	}
	if report.Results[1].Err != nil {
		t.Errorf("unexpected error on second result: %v", report.Results[1].Err)
	}
	if report.Results[1].NewNumber != "INV-201-20260201" {
		t.Errorf("expected INV-201-20260201, got %s", report.Results[1].NewNumber)
	}

	// The failed source's schedule must not advance
	if _, ok := invRepo.nextRuns[bad.ID]; ok {
		t.Errorf("failed source schedule should not advance")
	}
	if _, ok := invRepo.nextRuns[good.ID]; !ok {
		t.Errorf("successful source schedule should advance")
	}
}
