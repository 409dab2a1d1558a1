package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/andy/bizhaven/internal/domain"
	"github.com/andy/bizhaven/internal/repository"
)

// recurringDueDays is the fixed issue-to-due offset applied to generated
// invoices, independent of the source invoice's own spread.
const recurringDueDays = 14

// RecurrenceResult is the outcome for one due invoice in a run.
type RecurrenceResult struct {
	SourceID     int64
	SourceNumber string
	NewID        int64
	NewNumber    string
	Err          error
}

// RecurrenceReport summarizes one run: how many invoices were created
// and the per-invoice outcomes, failures included.
type RecurrenceReport struct {
	Created int
	Results []RecurrenceResult
}

// RecurrenceService regenerates recurring invoices on demand. "Due" is
// evaluated lazily against the date the caller passes in; there is no
// background timer.
type RecurrenceService interface {
	// RunRecurring clones every invoice whose recurring rule is due as of
	// today and advances its next run date. Each due invoice is processed
	// independently; one failure never aborts the rest of the batch.
	RunRecurring(ctx context.Context, today time.Time) (*RecurrenceReport, error)
}

type recurrenceService struct {
	invoiceRepo repository.InvoiceRepository
	invoices    InvoiceService
	log         zerolog.Logger
}

// NewRecurrenceService creates a new recurrence service
func NewRecurrenceService(
	invoiceRepo repository.InvoiceRepository,
	invoices InvoiceService,
	log zerolog.Logger,
) RecurrenceService {
	return &recurrenceService{
		invoiceRepo: invoiceRepo,
		invoices:    invoices,
		log:         log.With().Str("component", "recurrence").Logger(),
	}
}

func (s *recurrenceService) RunRecurring(ctx context.Context, today time.Time) (*RecurrenceReport, error) {
	due, err := s.invoiceRepo.ListDueRecurring(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to scan recurring invoices: %w", err)
	}

	report := &RecurrenceReport{Results: make([]RecurrenceResult, 0, len(due))}

	for _, src := range due {
		result := RecurrenceResult{SourceID: src.ID, SourceNumber: src.InvoiceNumber}

		clone, err := s.generate(ctx, src, today)
		if err != nil {
			result.Err = err
			report.Results = append(report.Results, result)
			s.log.Warn().
				Err(err).
				Int64("invoice_id", src.ID).
				Str("invoice_number", src.InvoiceNumber).
				Msg("recurring generation failed")
			continue
		}

		result.NewID = clone.ID
		result.NewNumber = clone.InvoiceNumber
		report.Results = append(report.Results, result)
		report.Created++
		s.log.Info().
			Str("invoice_number", src.InvoiceNumber).
			Str("generated", clone.InvoiceNumber).
			Msg("recurring invoice generated")
	}

	return report, nil
}

// generate clones one due invoice for today and advances its schedule.
func (s *recurrenceService) generate(ctx context.Context, src *domain.Invoice, today time.Time) (*domain.Invoice, error) {
	items, err := s.invoiceRepo.GetItems(ctx, src.ID)
	if err != nil {
		return nil, err
	}

	draft := InvoiceDraft{
		ClientID:  src.ClientID,
		ProjectID: src.ProjectID,
		JobID:     src.JobID,
		// The generation marker is the run date, so a base invoice
		// produces one derived number per day. A same-day clash
		// surfaces as a conflict rather than being renumbered.
		InvoiceNumber: fmt.Sprintf("%s-%s", src.InvoiceNumber, today.Format("20060102")),
		IssueDate:     today,
		DueDate:       today.AddDate(0, 0, recurringDueDays),
		TaxRate:       src.EffectiveTaxRate(),
		Discount:      src.Discount,
		Notes:         src.Notes,
		CustomFields:  copyCustomFields(src.CustomFields),
		ReminderDays:  src.ReminderDays,
		// The clone carries the rule but no next run date: only the base
		// invoice drives the series.
		Recurring: src.Recurring,
	}

	for _, item := range items {
		draft.Items = append(draft.Items, ItemDraft{
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Taxable:     item.Taxable,
		})
	}

	clone, err := s.invoices.CreateInvoice(ctx, draft)
	if err != nil {
		return nil, err
	}

	next := src.NextRunDate.AddDate(0, 0, src.Recurring.PeriodDays())
	if err := s.invoiceRepo.SetNextRunDate(ctx, src.ID, next); err != nil {
		return nil, fmt.Errorf("generated %s but failed to advance schedule: %w", clone.InvoiceNumber, err)
	}

	return clone, nil
}

func copyCustomFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
