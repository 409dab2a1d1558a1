package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andy/bizhaven/internal/db"
	"github.com/andy/bizhaven/internal/domain"
)

// ExpenseRepo is a SQLite implementation of ExpenseRepository
type ExpenseRepo struct {
	db *db.DB
}

// NewExpenseRepo creates a new ExpenseRepo
func NewExpenseRepo(database *db.DB) *ExpenseRepo {
	return &ExpenseRepo{db: database}
}

// Create inserts a new expense into the database
func (r *ExpenseRepo) Create(ctx context.Context, expense *domain.Expense) error {
	if err := expense.Validate(); err != nil {
		return fmt.Errorf("invalid expense: %w", err)
	}

	var projectID any
	if expense.ProjectID != nil {
		projectID = *expense.ProjectID
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (project_id, category, vendor, amount, expense_date, receipt_path, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		projectID,
		expense.Category,
		expense.Vendor,
		expense.Amount,
		expense.ExpenseDate.Format(dateLayout),
		expense.ReceiptPath,
		expense.Notes,
		time.Now().Format(timeLayout),
	)
	if err != nil {
		return mapSQLiteError("create expense", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get expense ID: %w", err)
	}

	expense.ID = id
	return nil
}

// List retrieves all expenses, most recent first
func (r *ExpenseRepo) List(ctx context.Context) ([]*domain.Expense, error) {
	query := `
		SELECT id, project_id, category, vendor, amount, expense_date, receipt_path, notes, created_at
		FROM expenses
		ORDER BY expense_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapSQLiteError("list expenses", err)
	}
	defer rows.Close()

	expenses := make([]*domain.Expense, 0)
	for rows.Next() {
		expense := &domain.Expense{}
		var projectID sql.NullInt64
		var category, vendor, receiptPath, notes sql.NullString
		var expenseDate, createdAt string

		err := rows.Scan(
			&expense.ID,
			&projectID,
			&category,
			&vendor,
			&expense.Amount,
			&expenseDate,
			&receiptPath,
			&notes,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}

		if projectID.Valid {
			expense.ProjectID = &projectID.Int64
		}
		expense.Category = category.String
		expense.Vendor = vendor.String
		expense.ReceiptPath = receiptPath.String
		expense.Notes = notes.String
		if expense.ExpenseDate, err = parseDate(expenseDate); err != nil {
			return nil, fmt.Errorf("failed to parse expense_date: %w", err)
		}
		if expense.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// TotalAll returns all-time expenses
func (r *ExpenseRepo) TotalAll(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM expenses",
	).Scan(&total)
	if err != nil {
		return 0, mapSQLiteError("total expenses", err)
	}
	return total, nil
}

// TotalForMonth returns expenses for a month given as YYYY-MM
func (r *ExpenseRepo) TotalForMonth(ctx context.Context, month string) (float64, error) {
	var total float64
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE strftime('%Y-%m', expense_date) = ?",
		month,
	).Scan(&total)
	if err != nil {
		return 0, mapSQLiteError("monthly expenses", err)
	}
	return total, nil
}
