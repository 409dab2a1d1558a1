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

// PaymentRepo is a SQLite implementation of PaymentRepository
type PaymentRepo struct {
	db *db.DB
}

// NewPaymentRepo creates a new PaymentRepo
func NewPaymentRepo(database *db.DB) *PaymentRepo {
	return &PaymentRepo{db: database}
}

// Create inserts the payment and recomputes the invoice status in the
// same transaction. The status is derived from (total, sum of payments)
// every time, so the recompute is idempotent and order-independent, and
// a payment can never exist alongside a stale status.
func (r *PaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	if err := payment.Validate(); err != nil {
		return fmt.Errorf("invalid payment: %w", err)
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var total float64
		err := tx.QueryRowContext(ctx,
			"SELECT total FROM invoices WHERE id = ?", payment.InvoiceID,
		).Scan(&total)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("invoice: %w", domain.ErrNotFound)
			}
			return mapSQLiteError("get invoice total", err)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO payments (invoice_id, amount, method, paid_on, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			payment.InvoiceID,
			payment.Amount,
			payment.Method,
			payment.PaidOn.Format(dateLayout),
			payment.Notes,
			time.Now().Format(timeLayout),
		)
		if err != nil {
			return mapSQLiteError("create payment", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get payment ID: %w", err)
		}
		payment.ID = id

		var paid float64
		err = tx.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = ?",
			payment.InvoiceID,
		).Scan(&paid)
		if err != nil {
			return mapSQLiteError("sum payments", err)
		}

		status := domain.PaymentStatus(total, paid)
		if _, err := tx.ExecContext(ctx,
			"UPDATE invoices SET status = ? WHERE id = ?",
			string(status), payment.InvoiceID,
		); err != nil {
			return mapSQLiteError("update invoice status", err)
		}

		return nil
	})
}

// ListByInvoice retrieves all payments for an invoice, oldest first
func (r *PaymentRepo) ListByInvoice(ctx context.Context, invoiceID int64) ([]*domain.Payment, error) {
	query := `
		SELECT id, invoice_id, amount, method, paid_on, notes, created_at
		FROM payments
		WHERE invoice_id = ?
		ORDER BY paid_on, id
	`

	rows, err := r.db.QueryContext(ctx, query, invoiceID)
	if err != nil {
		return nil, mapSQLiteError("list payments", err)
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		payment := &domain.Payment{}
		var method, notes sql.NullString
		var paidOn, createdAt string

		err := rows.Scan(
			&payment.ID,
			&payment.InvoiceID,
			&payment.Amount,
			&method,
			&paidOn,
			&notes,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		payment.Method = method.String
		payment.Notes = notes.String
		if payment.PaidOn, err = parseDate(paidOn); err != nil {
			return nil, fmt.Errorf("failed to parse paid_on: %w", err)
		}
		if payment.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		payments = append(payments, payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}

// SumByInvoice returns the total paid against an invoice
func (r *PaymentRepo) SumByInvoice(ctx context.Context, invoiceID int64) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id = ?",
		invoiceID,
	).Scan(&total)
	if err != nil {
		return 0, mapSQLiteError("sum payments", err)
	}
	return total, nil
}

// TotalAll returns all-time earnings across every invoice
func (r *PaymentRepo) TotalAll(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM payments",
	).Scan(&total)
	if err != nil {
		return 0, mapSQLiteError("total payments", err)
	}
	return total, nil
}

// TotalForMonth returns earnings for a month given as YYYY-MM
func (r *PaymentRepo) TotalForMonth(ctx context.Context, month string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE strftime('%Y-%m', paid_on) = ?",
		month,
	).Scan(&total)
	if err != nil {
		return 0, mapSQLiteError("monthly payments", err)
	}
	return total, nil
}
