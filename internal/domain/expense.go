package domain

import "time"

type Expense struct {
	ID          int64
	ProjectID   *int64
	Category    string
	Vendor      string
	Amount      float64
	ExpenseDate time.Time
	ReceiptPath string
	Notes       string
	CreatedAt   time.Time
}

// Validate returns an error if the expense is invalid
func (e *Expense) Validate() error {
	if e.Amount < 0 {
		return &ValidationError{Field: "amount", Message: "amount cannot be negative"}
	}
	if e.ExpenseDate.IsZero() {
		return &ValidationError{Field: "expense_date", Message: "expense date is required"}
	}
	return nil
}
