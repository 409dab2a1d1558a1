package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andy/bizhaven/internal/db"
	"github.com/andy/bizhaven/internal/domain"
)

const invoiceColumns = `id, client_id, project_id, job_id, invoice_number,
	       issue_date, due_date, status, subtotal, discount, tax, total,
	       notes, custom_fields, reminder_days, recurring_rule, next_run_date,
	       created_at`

// InvoiceRepo is a SQLite implementation of InvoiceRepository
type InvoiceRepo struct {
	db *db.DB
}

// NewInvoiceRepo creates a new InvoiceRepo
func NewInvoiceRepo(database *db.DB) *InvoiceRepo {
	return &InvoiceRepo{db: database}
}

// Create persists the invoice, its line items, and the optional reminder
// in one transaction. A failure anywhere rolls back the whole write, so
// an invoice can never exist without its items.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice, reminder *domain.Reminder) error {
	if err := invoice.Validate(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	customFields, err := encodeCustomFields(invoice.CustomFields)
	if err != nil {
		return err
	}

	var projectID, jobID, nextRun any
	if invoice.ProjectID != nil {
		projectID = *invoice.ProjectID
	}
	if invoice.JobID != nil {
		jobID = *invoice.JobID
	}
	if invoice.NextRunDate != nil {
		nextRun = invoice.NextRunDate.Format(dateLayout)
	}

	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO invoices (
				client_id, project_id, job_id, invoice_number,
				issue_date, due_date, status, subtotal, discount, tax, total,
				notes, custom_fields, reminder_days, recurring_rule, next_run_date,
				created_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			invoice.ClientID,
			projectID,
			jobID,
			invoice.InvoiceNumber,
			invoice.IssueDate.Format(dateLayout),
			invoice.DueDate.Format(dateLayout),
			string(invoice.Status),
			invoice.Subtotal,
			invoice.Discount,
			invoice.Tax,
			invoice.Total,
			invoice.Notes,
			customFields,
			invoice.ReminderDays,
			string(invoice.Recurring),
			nextRun,
			invoice.CreatedAt.Format(timeLayout),
		)
		if err != nil {
			return mapSQLiteError("create invoice", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get invoice ID: %w", err)
		}
		invoice.ID = id

		for _, item := range invoice.Items {
			itemResult, err := tx.ExecContext(ctx, `
				INSERT INTO invoice_items (invoice_id, description, quantity, rate, amount, taxable)
				VALUES (?, ?, ?, ?, ?, ?)
			`,
				id,
				item.Description,
				item.Quantity,
				item.Rate,
				item.Amount,
				item.Taxable,
			)
			if err != nil {
				return mapSQLiteError("create invoice item", err)
			}
			if item.ID, err = itemResult.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get item ID: %w", err)
			}
			item.InvoiceID = id
		}

		if reminder != nil {
			reminderResult, err := tx.ExecContext(ctx, `
				INSERT INTO reminders (invoice_id, reminder_date, channel, sent, created_at)
				VALUES (?, ?, ?, 0, ?)
			`,
				id,
				reminder.ReminderDate.Format(dateLayout),
				reminder.Channel,
				time.Now().Format(timeLayout),
			)
			if err != nil {
				return mapSQLiteError("create reminder", err)
			}
			if reminder.ID, err = reminderResult.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get reminder ID: %w", err)
			}
			reminder.InvoiceID = id
		}

		return nil
	})
	if err != nil {
		invoice.ID = 0
		return err
	}

	return nil
}

// GetByID retrieves an invoice by ID, without its items
func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	return r.getOne(ctx, "WHERE id = ?", id)
}

// GetByNumber retrieves an invoice by invoice number, without its items
func (r *InvoiceRepo) GetByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	return r.getOne(ctx, "WHERE invoice_number = ?", number)
}

func (r *InvoiceRepo) getOne(ctx context.Context, where string, arg any) (*domain.Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices " + where

	row := r.db.QueryRowContext(ctx, query, arg)
	invoice, err := scanInvoice(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice: %w", domain.ErrNotFound)
		}
		return nil, mapSQLiteError("get invoice", err)
	}

	return invoice, nil
}

// GetItems retrieves all line items for an invoice
func (r *InvoiceRepo) GetItems(ctx context.Context, invoiceID int64) ([]*domain.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, description, quantity, rate, amount, taxable
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, mapSQLiteError("get invoice items", err)
	}
	defer rows.Close()

	items := make([]*domain.InvoiceItem, 0)
	for rows.Next() {
		item := &domain.InvoiceItem{}
		var description sql.NullString
		var taxable int

		err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&description,
			&item.Quantity,
			&item.Rate,
			&item.Amount,
			&taxable,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}

		item.Description = description.String
		item.Taxable = taxable != 0
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice items: %w", err)
	}

	return items, nil
}

// List retrieves invoices with optional filters
func (r *InvoiceRepo) List(ctx context.Context, clientID *int64, status *domain.InvoiceStatus) ([]*domain.Invoice, error) {
	query := "SELECT " + invoiceColumns + " FROM invoices WHERE 1=1"
	args := make([]any, 0)

	if clientID != nil {
		query += " AND client_id = ?"
		args = append(args, *clientID)
	}

	if status != nil {
		query += " AND status = ?"
		args = append(args, string(*status))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError("list invoices", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

// ListSummaries retrieves all invoices with their client name and the sum
// of payments received, newest first. Read-side only.
func (r *InvoiceRepo) ListSummaries(ctx context.Context) ([]*InvoiceSummary, error) {
	query := `
		SELECT i.id, i.client_id, i.project_id, i.job_id, i.invoice_number,
		       i.issue_date, i.due_date, i.status, i.subtotal, i.discount, i.tax, i.total,
		       i.notes, i.custom_fields, i.reminder_days, i.recurring_rule, i.next_run_date,
		       i.created_at,
		       COALESCE(c.name, ''),
		       COALESCE((SELECT SUM(amount) FROM payments p WHERE p.invoice_id = i.id), 0)
		FROM invoices i
		LEFT JOIN clients c ON c.id = i.client_id
		ORDER BY i.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapSQLiteError("list invoice summaries", err)
	}
	defer rows.Close()

	summaries := make([]*InvoiceSummary, 0)
	for rows.Next() {
		summary := &InvoiceSummary{}
		invoice, err := scanInvoice(func(dest ...any) error {
			dest = append(dest, &summary.ClientName, &summary.Paid)
			return rows.Scan(dest...)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice summary: %w", err)
		}
		invoice.ClientName = summary.ClientName
		summary.Invoice = invoice
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice summaries: %w", err)
	}

	return summaries, nil
}

// ListDueRecurring retrieves invoices with a recurring rule whose next
// run date is on or before asOf.
func (r *InvoiceRepo) ListDueRecurring(ctx context.Context, asOf time.Time) ([]*domain.Invoice, error) {
	query := "SELECT " + invoiceColumns + ` FROM invoices
		WHERE recurring_rule IN ('weekly', 'monthly', 'quarterly')
		  AND next_run_date IS NOT NULL
		  AND next_run_date <= ?
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, asOf.Format(dateLayout))
	if err != nil {
		return nil, mapSQLiteError("list due recurring invoices", err)
	}
	defer rows.Close()

	invoices := make([]*domain.Invoice, 0)
	for rows.Next() {
		invoice, err := scanInvoice(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	return invoices, nil
}

// SetNextRunDate advances an invoice's recurring schedule
func (r *InvoiceRepo) SetNextRunDate(ctx context.Context, id int64, next time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE invoices SET next_run_date = ? WHERE id = ?",
		next.Format(dateLayout), id,
	)
	if err != nil {
		return mapSQLiteError("set next run date", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("invoice: %w", domain.ErrNotFound)
	}

	return nil
}

// OutstandingTotal sums totals of unpaid (sent or partial) invoices
func (r *InvoiceRepo) OutstandingTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(total), 0) FROM invoices WHERE status IN ('sent', 'partial')",
	).Scan(&total)
	if err != nil {
		return 0, mapSQLiteError("outstanding total", err)
	}
	return total, nil
}

// CountUpcoming counts unpaid invoices due today or later
func (r *InvoiceRepo) CountUpcoming(ctx context.Context, today time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM invoices WHERE status IN ('sent', 'partial') AND due_date >= ?",
		today.Format(dateLayout),
	).Scan(&count)
	if err != nil {
		return 0, mapSQLiteError("count upcoming invoices", err)
	}
	return count, nil
}

// scanInvoice reads one invoice row via the given scan function. The scan
// function receives the invoice column destinations and may append its own.
func scanInvoice(scan func(dest ...any) error) (*domain.Invoice, error) {
	invoice := &domain.Invoice{}
	var projectID, jobID sql.NullInt64
	var notes, nextRun sql.NullString
	var status, customFields, recurring, issueDate, dueDate, createdAt string

	err := scan(
		&invoice.ID,
		&invoice.ClientID,
		&projectID,
		&jobID,
		&invoice.InvoiceNumber,
		&issueDate,
		&dueDate,
		&status,
		&invoice.Subtotal,
		&invoice.Discount,
		&invoice.Tax,
		&invoice.Total,
		&notes,
		&customFields,
		&invoice.ReminderDays,
		&recurring,
		&nextRun,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if projectID.Valid {
		invoice.ProjectID = &projectID.Int64
	}
	if jobID.Valid {
		invoice.JobID = &jobID.Int64
	}
	invoice.Notes = notes.String
	invoice.Status = domain.InvoiceStatus(status)
	invoice.Recurring = domain.RecurringRule(recurring)

	if invoice.IssueDate, err = parseDate(issueDate); err != nil {
		return nil, fmt.Errorf("failed to parse issue_date: %w", err)
	}
	if invoice.DueDate, err = parseDate(dueDate); err != nil {
		return nil, fmt.Errorf("failed to parse due_date: %w", err)
	}
	if nextRun.Valid {
		t, err := parseDate(nextRun.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse next_run_date: %w", err)
		}
		invoice.NextRunDate = &t
	}
	if invoice.CustomFields, err = decodeCustomFields(customFields); err != nil {
		return nil, err
	}
	if invoice.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return invoice, nil
}
