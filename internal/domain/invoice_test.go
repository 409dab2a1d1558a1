package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validInvoice() *Invoice {
	issue := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	inv := NewInvoice("INV-1001", 1, issue, issue.AddDate(0, 0, 14))
	inv.Items = append(inv.Items, &InvoiceItem{Description: "work", Quantity: 2, Rate: 100, Taxable: true})
	return inv
}

func TestNewInvoice_IssuedAsSent(t *testing.T) {
	inv := validInvoice()
	assert.Equal(t, InvoiceStatusSent, inv.Status)
	assert.Equal(t, RecurringNone, inv.Recurring)
	assert.NoError(t, inv.Validate())
}

func TestInvoiceValidate_Rejections(t *testing.T) {
	next := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*Invoice)
		field  string
	}{
		{"empty number", func(i *Invoice) { i.InvoiceNumber = "" }, "invoice_number"},
		{"missing client", func(i *Invoice) { i.ClientID = 0 }, "client_id"},
		{"zero issue date", func(i *Invoice) { i.IssueDate = time.Time{} }, "issue_date"},
		{"zero due date", func(i *Invoice) { i.DueDate = time.Time{} }, "due_date"},
		{"negative discount", func(i *Invoice) { i.Discount = -5 }, "discount"},
		{"negative reminder days", func(i *Invoice) { i.ReminderDays = -1 }, "reminder_days"},
		{"unknown rule", func(i *Invoice) { i.Recurring = "fortnightly" }, "recurring_rule"},
		{"next run without rule", func(i *Invoice) { i.NextRunDate = &next }, "next_run_date"},
		{"negative quantity", func(i *Invoice) { i.Items[0].Quantity = -1 }, "quantity"},
		{"negative rate", func(i *Invoice) { i.Items[0].Rate = -10 }, "rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvoice()
			tt.mutate(inv)

			err := inv.Validate()

			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestInvoiceValidate_RecurringWithNextRun(t *testing.T) {
	inv := validInvoice()
	inv.Recurring = RecurringMonthly
	next := inv.IssueDate.AddDate(0, 0, 30)
	inv.NextRunDate = &next

	assert.NoError(t, inv.Validate())
}

func TestPaymentStatus(t *testing.T) {
	assert.Equal(t, InvoiceStatusPartial, PaymentStatus(1194, 600))
	assert.Equal(t, InvoiceStatusPaid, PaymentStatus(1194, 1194))
	assert.Equal(t, InvoiceStatusPaid, PaymentStatus(1194, 1500))
	// Zero-total invoices count as paid by any payment
	assert.Equal(t, InvoiceStatusPaid, PaymentStatus(0, 0))
}

func TestRecurringRulePeriodDays(t *testing.T) {
	assert.Equal(t, 7, RecurringWeekly.PeriodDays())
	assert.Equal(t, 30, RecurringMonthly.PeriodDays())
	assert.Equal(t, 90, RecurringQuarterly.PeriodDays())
	assert.Equal(t, 0, RecurringNone.PeriodDays())
}

func TestEffectiveTaxRate(t *testing.T) {
	inv := validInvoice()
	inv.Subtotal = 550
	inv.Tax = 44

	assert.InDelta(t, 0.08, inv.EffectiveTaxRate(), 1e-9)

	inv.Subtotal = 0
	assert.Zero(t, inv.EffectiveTaxRate())
}
