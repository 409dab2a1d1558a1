package repository

import (
	"context"
	"time"

	"github.com/andy/bizhaven/internal/domain"
)

// ClientRepository manages client persistence
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id int64) (*domain.Client, error)
	GetByPortalToken(ctx context.Context, token string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	// EnsurePortalToken returns the client's portal token, generating and
	// persisting one the first time it is requested. Stable once set.
	EnsurePortalToken(ctx context.Context, id int64) (string, error)
}

// ProjectRepository manages project persistence
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, clientID *int64) ([]*domain.Project, error)
	SetStatus(ctx context.Context, id int64, status domain.ProjectStatus) error
}

// JobRepository manages job persistence
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id int64) (*domain.Job, error)
	List(ctx context.Context, clientID *int64) ([]*domain.Job, error)
}

// InvoiceSummary is the read-side row for invoice listings and CSV
// export: the invoice plus its client name and paid-to-date sum.
type InvoiceSummary struct {
	Invoice    *domain.Invoice
	ClientName string
	Paid       float64
}

// InvoiceRepository manages invoice persistence
type InvoiceRepository interface {
	// Create persists the invoice, its line items, and the optional
	// reminder in a single transaction. Either all rows exist afterwards
	// or none do.
	Create(ctx context.Context, invoice *domain.Invoice, reminder *domain.Reminder) error
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	GetItems(ctx context.Context, invoiceID int64) ([]*domain.InvoiceItem, error)
	List(ctx context.Context, clientID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error)
	ListSummaries(ctx context.Context) ([]*InvoiceSummary, error)
	// ListDueRecurring returns invoices whose recurring rule is set and
	// whose next run date is on or before asOf.
	ListDueRecurring(ctx context.Context, asOf time.Time) ([]*domain.Invoice, error)
	SetNextRunDate(ctx context.Context, id int64, next time.Time) error
	// OutstandingTotal sums the totals of sent and partial invoices.
	OutstandingTotal(ctx context.Context) (float64, error)
	// CountUpcoming counts sent and partial invoices due on or after today.
	CountUpcoming(ctx context.Context, today time.Time) (int, error)
}

// PaymentRepository manages payment persistence
type PaymentRepository interface {
	// Create inserts the payment and recomputes the invoice status from
	// the full payment sum in the same transaction.
	Create(ctx context.Context, payment *domain.Payment) error
	ListByInvoice(ctx context.Context, invoiceID int64) ([]*domain.Payment, error)
	SumByInvoice(ctx context.Context, invoiceID int64) (float64, error)
	TotalAll(ctx context.Context) (float64, error)
	TotalForMonth(ctx context.Context, month string) (float64, error)
}

// ExpenseRepository manages expense persistence
type ExpenseRepository interface {
	Create(ctx context.Context, expense *domain.Expense) error
	List(ctx context.Context) ([]*domain.Expense, error)
	TotalAll(ctx context.Context) (float64, error)
	TotalForMonth(ctx context.Context, month string) (float64, error)
}

// ReminderRepository reads reminder schedules. Reminder rows are created
// with their invoice; marking them sent is the delivery layer's concern.
type ReminderRepository interface {
	ListPending(ctx context.Context, asOf time.Time) ([]*domain.Reminder, error)
}
