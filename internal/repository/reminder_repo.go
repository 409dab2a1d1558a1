package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/bizhaven/internal/db"
	"github.com/andy/bizhaven/internal/domain"
)

// ReminderRepo is a SQLite implementation of ReminderRepository.
// Reminder rows are written by InvoiceRepo as part of invoice creation;
// this repo only reads the schedule.
type ReminderRepo struct {
	db *db.DB
}

// NewReminderRepo creates a new ReminderRepo
func NewReminderRepo(database *db.DB) *ReminderRepo {
	return &ReminderRepo{db: database}
}

// ListPending retrieves unsent reminders due on or before asOf
func (r *ReminderRepo) ListPending(ctx context.Context, asOf time.Time) ([]*domain.Reminder, error) {
	query := `
		SELECT id, invoice_id, reminder_date, channel, sent, created_at
		FROM reminders
		WHERE sent = 0 AND reminder_date <= ?
		ORDER BY reminder_date
	`

	rows, err := r.db.QueryContext(ctx, query, asOf.Format(dateLayout))
	if err != nil {
		return nil, mapSQLiteError("list pending reminders", err)
	}
	defer rows.Close()

	reminders := make([]*domain.Reminder, 0)
	for rows.Next() {
		reminder := &domain.Reminder{}
		var sent int
		var reminderDate, createdAt string

		err := rows.Scan(
			&reminder.ID,
			&reminder.InvoiceID,
			&reminderDate,
			&reminder.Channel,
			&sent,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}

		reminder.Sent = sent != 0
		if reminder.ReminderDate, err = parseDate(reminderDate); err != nil {
			return nil, fmt.Errorf("failed to parse reminder_date: %w", err)
		}
		if reminder.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		reminders = append(reminders, reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	return reminders, nil
}
