package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/andy/bizhaven/internal/domain"
	"github.com/andy/bizhaven/internal/repository"
)

// mock implementations
type mockInvoiceRepo struct {
	invoices map[int64]*domain.Invoice
	items    map[int64][]*domain.InvoiceItem
	nextRuns map[int64]time.Time

	created      []*domain.Invoice
	reminders    []*domain.Reminder
	createErr    error
	nextID       int64
	dueRecurring []*domain.Invoice
}

func newMockInvoiceRepo() *mockInvoiceRepo {
	return &mockInvoiceRepo{
		invoices: make(map[int64]*domain.Invoice),
		items:    make(map[int64][]*domain.InvoiceItem),
		nextRuns: make(map[int64]time.Time),
	}
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice, reminder *domain.Reminder) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	invoice.ID = m.nextID
	m.invoices[invoice.ID] = invoice
	m.items[invoice.ID] = invoice.Items
	m.created = append(m.created, invoice)
	if reminder != nil {
		reminder.InvoiceID = invoice.ID
		m.reminders = append(m.reminders, reminder)
	}
	return nil
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	if inv, ok := m.invoices[id]; ok {
		return inv, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockInvoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	for _, inv := range m.invoices {
		if inv.InvoiceNumber == number {
			return inv, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockInvoiceRepo) GetItems(ctx context.Context, invoiceID int64) ([]*domain.InvoiceItem, error) {
	return m.items[invoiceID], nil
}

func (m *mockInvoiceRepo) List(ctx context.Context, clientID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error) {
	return nil, nil
}

func (m *mockInvoiceRepo) ListSummaries(ctx context.Context) ([]*repository.InvoiceSummary, error) {
	return nil, nil
}

func (m *mockInvoiceRepo) ListDueRecurring(ctx context.Context, asOf time.Time) ([]*domain.Invoice, error) {
	return m.dueRecurring, nil
}

func (m *mockInvoiceRepo) SetNextRunDate(ctx context.Context, id int64, next time.Time) error {
	m.nextRuns[id] = next
	return nil
}

func (m *mockInvoiceRepo) OutstandingTotal(ctx context.Context) (float64, error) { return 0, nil }
func (m *mockInvoiceRepo) CountUpcoming(ctx context.Context, today time.Time) (int, error) {
	return 0, nil
}

// mockPaymentRepo mirrors the real repo's status recompute: status is
// rederived from the full payment sum on every insert.
type mockPaymentRepo struct {
	invoices *mockInvoiceRepo
	payments map[int64][]*domain.Payment
	nextID   int64
}

func newMockPaymentRepo(invoices *mockInvoiceRepo) *mockPaymentRepo {
	return &mockPaymentRepo{invoices: invoices, payments: make(map[int64][]*domain.Payment)}
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	inv, ok := m.invoices.invoices[payment.InvoiceID]
	if !ok {
		return domain.ErrNotFound
	}
	m.nextID++
	payment.ID = m.nextID
	m.payments[payment.InvoiceID] = append(m.payments[payment.InvoiceID], payment)

	var paid float64
	for _, p := range m.payments[payment.InvoiceID] {
		paid += p.Amount
	}
	inv.Status = domain.PaymentStatus(inv.Total, paid)
	return nil
}

func (m *mockPaymentRepo) ListByInvoice(ctx context.Context, invoiceID int64) ([]*domain.Payment, error) {
	return m.payments[invoiceID], nil
}

func (m *mockPaymentRepo) SumByInvoice(ctx context.Context, invoiceID int64) (float64, error) {
	var paid float64
	for _, p := range m.payments[invoiceID] {
		paid += p.Amount
	}
	return paid, nil
}

func (m *mockPaymentRepo) TotalAll(ctx context.Context) (float64, error)                 { return 0, nil }
func (m *mockPaymentRepo) TotalForMonth(ctx context.Context, month string) (float64, error) {
	return 0, nil
}

type mockClientRepo struct {
	missing bool
}

func (m *mockClientRepo) Create(ctx context.Context, client *domain.Client) error { return nil }
func (m *mockClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	if m.missing {
		return nil, domain.ErrNotFound
	}
	return &domain.Client{ID: id, Name: "Acme Bakery"}, nil
}
func (m *mockClientRepo) GetByPortalToken(ctx context.Context, token string) (*domain.Client, error) {
	return nil, domain.ErrNotFound
}
func (m *mockClientRepo) List(ctx context.Context) ([]*domain.Client, error)      { return nil, nil }
func (m *mockClientRepo) Update(ctx context.Context, client *domain.Client) error { return nil }
func (m *mockClientRepo) EnsurePortalToken(ctx context.Context, id int64) (string, error) {
	return "", nil
}

type mockProjectRepo struct{}

func (m *mockProjectRepo) Create(ctx context.Context, project *domain.Project) error { return nil }
func (m *mockProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	return &domain.Project{ID: id, ClientID: 1, Name: "Site refresh", Status: domain.ProjectStatusActive}, nil
}
func (m *mockProjectRepo) List(ctx context.Context, clientID *int64) ([]*domain.Project, error) {
	return nil, nil
}
func (m *mockProjectRepo) SetStatus(ctx context.Context, id int64, status domain.ProjectStatus) error {
	return nil
}

type mockJobRepo struct{}

func (m *mockJobRepo) Create(ctx context.Context, job *domain.Job) error { return nil }
func (m *mockJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	return &domain.Job{ID: id, ClientID: 1, Title: "One-off fix"}, nil
}
func (m *mockJobRepo) List(ctx context.Context, clientID *int64) ([]*domain.Job, error) {
	return nil, nil
}

func newTestInvoiceService(invRepo *mockInvoiceRepo, payRepo *mockPaymentRepo) InvoiceService {
	return NewInvoiceService(invRepo, payRepo, &mockClientRepo{}, &mockProjectRepo{}, &mockJobRepo{})
}

func testDraft() InvoiceDraft {
	issue := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	return InvoiceDraft{
		ClientID:      1,
		InvoiceNumber: "INV-1001",
		IssueDate:     issue,
		DueDate:       issue.AddDate(0, 0, 14),
		Items: []ItemDraft{
			{Description: "Design", Quantity: 3, Rate: 100, Taxable: true},
			{Description: "Consulting", Quantity: 2.5, Rate: 100, Taxable: true},
			{Description: "License passthrough", Quantity: 1, Rate: 650, Taxable: false},
		},
		TaxRate: 0.08,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCreateInvoice_ComputesTotals(t *testing.T) {
	ctx := context.Background()
	invRepo := newMockInvoiceRepo()
	svc := newTestInvoiceService(invRepo, newMockPaymentRepo(invRepo))

	invoice, err := svc.CreateInvoice(ctx, testDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if invoice.Status != domain.InvoiceStatusSent {
		t.Errorf("expected sent status, got %s", invoice.Status)
	}
	if !almostEqual(invoice.Subtotal, 1200) {
		t.Errorf("expected subtotal 1200, got %f", invoice.Subtotal)
	}
	if !almostEqual(invoice.Tax, 44) {
		t.Errorf("expected tax 44 (8%% of the 550 taxable portion), got %f", invoice.Tax)
	}
	if !almostEqual(invoice.Total, 1244) {
		t.Errorf("expected total 1244, got %f", invoice.Total)
	}

	// Per-item amounts are persisted alongside the invoice
	if len(invoice.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(invoice.Items))
	}
	wantAmounts := []float64{300, 250, 650}
	for i, item := range invoice.Items {
		if !almostEqual(item.Amount, wantAmounts[i]) {
			t.Errorf("item %d: expected amount %f, got %f", i, wantAmounts[i], item.Amount)
		}
	}

	if len(invRepo.created) != 1 {
		t.Fatalf("expected 1 invoice persisted, got %d", len(invRepo.created))
	}
}

func TestCreateInvoice_SchedulesReminder(t *testing.T) {
	ctx := context.Background()
	invRepo := newMockInvoiceRepo()
	svc := newTestInvoiceService(invRepo, newMockPaymentRepo(invRepo))

	draft := testDraft()
	draft.ReminderDays = 3

	invoice, err := svc.CreateInvoice(ctx, draft)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(invRepo.reminders) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(invRepo.reminders))
	}
	reminder := invRepo.reminders[0]
	if reminder.InvoiceID != invoice.ID {
		t.Errorf("reminder attached to invoice %d, expected %d", reminder.InvoiceID, invoice.ID)
	}
	want := invoice.DueDate.AddDate(0, 0, -3)
	if !reminder.ReminderDate.Equal(want) {
		t.Errorf("expected reminder date %v, got %v", want, reminder.ReminderDate)
	}
}

func TestCreateInvoice_NoReminderByDefault(t *testing.T) {
	ctx := context.Background()
	invRepo := newMockInvoiceRepo()
	svc := newTestInvoiceService(invRepo, newMockPaymentRepo(invRepo))

	if _, err := svc.CreateInvoice(ctx, testDraft()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invRepo.reminders) != 0 {
		t.Fatalf("expected no reminders, got %d", len(invRepo.reminders))
	}
}

func TestCreateInvoice_NegativeTaxRate(t *testing.T) {
	ctx := context.Background()
	invRepo := newMockInvoiceRepo()
	svc := newTestInvoiceService(invRepo, newMockPaymentRepo(invRepo))

	draft := testDraft()
	draft.TaxRate = -0.05

	_, err := svc.CreateInvoice(ctx, draft)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(invRepo.created) != 0 {
		t.Fatalf("invoice should not have been persisted")
	}
}

func TestCreateInvoice_UnknownClient(t *testing.T) {
	ctx := context.Background()
	invRepo := newMockInvoiceRepo()
	svc := NewInvoiceService(invRepo, newMockPaymentRepo(invRepo),
		&mockClientRepo{missing: true}, &mockProjectRepo{}, &mockJobRepo{})

	_, err := svc.CreateInvoice(ctx, testDraft())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCreateInvoice_DuplicateNumber(t *testing.T) {
	ctx := context.Background()
	invRepo := newMockInvoiceRepo()
	invRepo.createErr = domain.ErrConflict
	svc := newTestInvoiceService(invRepo, newMockPaymentRepo(invRepo))

	_, err := svc.CreateInvoice(ctx, testDraft())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestRecordPayment_StatusFollowsPaymentSum(t *testing.T) {
	ctx := context.Background()
	invRepo := newMockInvoiceRepo()
	payRepo := newMockPaymentRepo(invRepo)
	svc := newTestInvoiceService(invRepo, payRepo)

	invoice, err := svc.CreateInvoice(ctx, testDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	paidOn := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	// Partial payment
	if _, err := svc.RecordPayment(ctx, invoice.ID, 600, "bank", paidOn, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice.Status != domain.InvoiceStatusPartial {
		t.Errorf("expected partial after underpayment, got %s", invoice.Status)
	}

	// Remainder flips it to paid
	if _, err := svc.RecordPayment(ctx, invoice.ID, 644, "bank", paidOn, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice.Status != domain.InvoiceStatusPaid {
		t.Errorf("expected paid after full payment, got %s", invoice.Status)
	}

	// Overpayment keeps it paid
	if _, err := svc.RecordPayment(ctx, invoice.ID, 100, "bank", paidOn, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice.Status != domain.InvoiceStatusPaid {
		t.Errorf("expected paid after overpayment, got %s", invoice.Status)
	}
}

func TestRecordPayment_UnknownInvoice(t *testing.T) {
	ctx := context.Background()
	invRepo := newMockInvoiceRepo()
	svc := newTestInvoiceService(invRepo, newMockPaymentRepo(invRepo))

	_, err := svc.RecordPayment(ctx, 999, 100, "bank", time.Now(), "")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestGetInvoice_LoadsItems(t *testing.T) {
	ctx := context.Background()
	invRepo := newMockInvoiceRepo()
	svc := newTestInvoiceService(invRepo, newMockPaymentRepo(invRepo))

	created, err := svc.CreateInvoice(ctx, testDraft())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetInvoice(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Items) != 3 {
		t.Errorf("expected 3 items loaded, got %d", len(got.Items))
	}
}
