package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/bizhaven/internal/billing"
	"github.com/andy/bizhaven/internal/domain"
	"github.com/andy/bizhaven/internal/repository"
)

// ItemDraft is one requested invoice line
type ItemDraft struct {
	Description string
	Quantity    float64
	Rate        float64
	Taxable     bool
}

// InvoiceDraft is the caller's request to issue an invoice. Money fields
// are computed from the items, never supplied.
type InvoiceDraft struct {
	ClientID      int64
	ProjectID     *int64
	JobID         *int64
	InvoiceNumber string
	IssueDate     time.Time
	DueDate       time.Time
	Items         []ItemDraft
	TaxRate       float64
	Discount      float64
	Notes         string
	CustomFields  map[string]any
	ReminderDays  int
	Recurring     domain.RecurringRule
	NextRunDate   *time.Time
}

// InvoiceService owns the invoice lifecycle: creation with computed
// billing figures, payment posting with status recompute, and queries.
type InvoiceService interface {
	// CreateInvoice computes totals, persists the invoice with its items
	// and (when reminder days are set) one reminder, atomically. The new
	// invoice is issued in sent status.
	CreateInvoice(ctx context.Context, draft InvoiceDraft) (*domain.Invoice, error)

	// RecordPayment appends a payment and recomputes the invoice status
	// as a side effect: paid when the payment sum covers the total,
	// partial otherwise.
	RecordPayment(ctx context.Context, invoiceID int64, amount float64, method string, paidOn time.Time, notes string) (*domain.Payment, error)

	// GetInvoice retrieves an invoice with its line items
	GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error)

	// GetInvoiceByNumber retrieves an invoice by number with its line items
	GetInvoiceByNumber(ctx context.Context, number string) (*domain.Invoice, error)

	// ListInvoices lists invoices with optional filters
	ListInvoices(ctx context.Context, clientID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	paymentRepo repository.PaymentRepository
	clientRepo  repository.ClientRepository
	projectRepo repository.ProjectRepository
	jobRepo     repository.JobRepository
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	clientRepo repository.ClientRepository,
	projectRepo repository.ProjectRepository,
	jobRepo repository.JobRepository,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		clientRepo:  clientRepo,
		projectRepo: projectRepo,
		jobRepo:     jobRepo,
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, draft InvoiceDraft) (*domain.Invoice, error) {
	if draft.TaxRate < 0 {
		return nil, &domain.ValidationError{Field: "tax_rate", Message: "tax rate cannot be negative"}
	}

	// Verify references before writing anything
	if _, err := s.clientRepo.GetByID(ctx, draft.ClientID); err != nil {
		return nil, err
	}
	if draft.ProjectID != nil {
		if _, err := s.projectRepo.GetByID(ctx, *draft.ProjectID); err != nil {
			return nil, err
		}
	}
	if draft.JobID != nil {
		if _, err := s.jobRepo.GetByID(ctx, *draft.JobID); err != nil {
			return nil, err
		}
	}

	invoice := domain.NewInvoice(draft.InvoiceNumber, draft.ClientID, draft.IssueDate, draft.DueDate)
	invoice.ProjectID = draft.ProjectID
	invoice.JobID = draft.JobID
	invoice.Discount = draft.Discount
	invoice.Notes = draft.Notes
	invoice.CustomFields = draft.CustomFields
	invoice.ReminderDays = draft.ReminderDays
	invoice.Recurring = draft.Recurring
	invoice.NextRunDate = draft.NextRunDate

	for _, item := range draft.Items {
		invoice.Items = append(invoice.Items, &domain.InvoiceItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Taxable:     item.Taxable,
		})
	}

	if err := invoice.Validate(); err != nil {
		return nil, err
	}

	totals := billing.Calculate(invoice.Items, draft.TaxRate, draft.Discount)
	invoice.Subtotal = totals.Subtotal
	invoice.Tax = totals.Tax
	invoice.Total = totals.Total
	for i, item := range invoice.Items {
		item.Amount = totals.ItemAmounts[i]
	}

	var reminder *domain.Reminder
	if invoice.ReminderDays > 0 {
		reminder = &domain.Reminder{
			ReminderDate: invoice.DueDate.AddDate(0, 0, -invoice.ReminderDays),
			Channel:      "email",
		}
	}

	if err := s.invoiceRepo.Create(ctx, invoice, reminder); err != nil {
		return nil, err
	}

	return invoice, nil
}

func (s *invoiceService) RecordPayment(
	ctx context.Context,
	invoiceID int64,
	amount float64,
	method string,
	paidOn time.Time,
	notes string,
) (*domain.Payment, error) {
	if _, err := s.invoiceRepo.GetByID(ctx, invoiceID); err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		InvoiceID: invoiceID,
		Amount:    amount,
		Method:    method,
		PaidOn:    paidOn,
		Notes:     notes,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	return payment, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id int64) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, invoice)
}

func (s *invoiceService) GetInvoiceByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, invoice)
}

func (s *invoiceService) withItems(ctx context.Context, invoice *domain.Invoice) (*domain.Invoice, error) {
	items, err := s.invoiceRepo.GetItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.Items = items
	return invoice, nil
}

func (s *invoiceService) ListInvoices(
	ctx context.Context,
	clientID *int64,
	status *domain.InvoiceStatus,
) ([]*domain.Invoice, error) {
	return s.invoiceRepo.List(ctx, clientID, status)
}
