package domain

import (
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// ValidInvoiceStatus reports whether s is a known invoice status.
func ValidInvoiceStatus(s InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPartial, InvoiceStatusPaid:
		return true
	}
	return false
}

// RecurringRule is a fixed-cadence policy causing an invoice to spawn
// successor invoices.
type RecurringRule string

const (
	RecurringNone      RecurringRule = "none"
	RecurringWeekly    RecurringRule = "weekly"
	RecurringMonthly   RecurringRule = "monthly"
	RecurringQuarterly RecurringRule = "quarterly"
)

// ValidRecurringRule reports whether r is a known recurring rule.
func ValidRecurringRule(r RecurringRule) bool {
	switch r {
	case RecurringNone, RecurringWeekly, RecurringMonthly, RecurringQuarterly:
		return true
	}
	return false
}

// PeriodDays returns the advance interval for the rule in days.
// Month and quarter are calendar-naive fixed day counts.
func (r RecurringRule) PeriodDays() int {
	switch r {
	case RecurringWeekly:
		return 7
	case RecurringMonthly:
		return 30
	case RecurringQuarterly:
		return 90
	default:
		return 0
	}
}

type Invoice struct {
	ID            int64
	ClientID      int64
	ProjectID     *int64
	JobID         *int64
	InvoiceNumber string
	IssueDate     time.Time
	DueDate       time.Time
	Status        InvoiceStatus

	// Money fields, all non-negative. Discount is a flat currency
	// amount applied once, to the taxable subset, before tax.
	Subtotal float64
	Discount float64
	Tax      float64
	Total    float64

	Notes        string
	CustomFields map[string]any
	ReminderDays int
	Recurring    RecurringRule
	NextRunDate  *time.Time
	CreatedAt    time.Time

	// Related data (populated by repository)
	Items      []*InvoiceItem
	ClientName string
}

// InvoiceItem is a single line on an invoice. Immutable once created;
// recurrence clones items, it never shares them across invoices.
type InvoiceItem struct {
	ID          int64
	InvoiceID   int64
	Description string
	Quantity    float64
	Rate        float64
	Amount      float64
	Taxable     bool
}

// NewInvoice creates an invoice shell in sent status. Invoices are
// issued directly in this design; the draft status stays representable
// in the schema but is never assigned here.
func NewInvoice(invoiceNumber string, clientID int64, issueDate, dueDate time.Time) *Invoice {
	return &Invoice{
		InvoiceNumber: invoiceNumber,
		ClientID:      clientID,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		Status:        InvoiceStatusSent,
		Recurring:     RecurringNone,
		CreatedAt:     time.Now(),
		Items:         make([]*InvoiceItem, 0),
	}
}

// Validate returns an error if the invoice or any of its items is invalid.
// Negative quantities and rates are rejected here so the billing figures
// can never go negative downstream.
func (i *Invoice) Validate() error {
	if i.InvoiceNumber == "" {
		return &ValidationError{Field: "invoice_number", Message: "invoice number is required"}
	}
	if i.ClientID <= 0 {
		return &ValidationError{Field: "client_id", Message: "client ID is required"}
	}
	if i.IssueDate.IsZero() {
		return &ValidationError{Field: "issue_date", Message: "issue date is required"}
	}
	if i.DueDate.IsZero() {
		return &ValidationError{Field: "due_date", Message: "due date is required"}
	}
	if i.Discount < 0 {
		return &ValidationError{Field: "discount", Message: "discount cannot be negative"}
	}
	if i.ReminderDays < 0 {
		return &ValidationError{Field: "reminder_days", Message: "reminder days cannot be negative"}
	}
	if !ValidRecurringRule(i.Recurring) {
		return &ValidationError{Field: "recurring_rule", Message: "unknown recurring rule"}
	}
	if i.NextRunDate != nil && i.Recurring == RecurringNone {
		return &ValidationError{Field: "next_run_date", Message: "next run date requires a recurring rule"}
	}
	for _, item := range i.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate returns an error if the line item is invalid
func (it *InvoiceItem) Validate() error {
	if it.Quantity < 0 {
		return &ValidationError{Field: "quantity", Message: "quantity cannot be negative"}
	}
	if it.Rate < 0 {
		return &ValidationError{Field: "rate", Message: "rate cannot be negative"}
	}
	return nil
}

// PaymentStatus derives the invoice status from its total and the sum of
// its payments. Status is a pure function of (total, paid) so repeated
// recomputes for the same payment set always converge. It is only
// consulted once at least one payment exists; an unpaid invoice keeps
// its sent status.
func PaymentStatus(total, paid float64) InvoiceStatus {
	if paid >= total {
		return InvoiceStatusPaid
	}
	return InvoiceStatusPartial
}

// EffectiveTaxRate back-derives the tax rate from the stored totals.
// The rate is not persisted on the invoice; recurrence uses this to
// carry it onto clones.
func (i *Invoice) EffectiveTaxRate() float64 {
	if i.Subtotal > 0 {
		return i.Tax / i.Subtotal
	}
	return 0
}
