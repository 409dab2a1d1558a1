package domain

import "time"

// Payment is an append-only record against an invoice. The total paid for
// an invoice is always the sum of its payments; no separate running
// balance is stored.
type Payment struct {
	ID        int64
	InvoiceID int64
	Amount    float64
	Method    string
	PaidOn    time.Time
	Notes     string
	CreatedAt time.Time
}

// Validate returns an error if the payment is invalid
func (p *Payment) Validate() error {
	if p.InvoiceID <= 0 {
		return &ValidationError{Field: "invoice_id", Message: "invoice ID is required"}
	}
	if p.Amount < 0 {
		return &ValidationError{Field: "amount", Message: "amount cannot be negative"}
	}
	if p.PaidOn.IsZero() {
		return &ValidationError{Field: "paid_on", Message: "paid-on date is required"}
	}
	return nil
}
