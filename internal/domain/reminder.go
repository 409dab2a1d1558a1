package domain

import "time"

// Reminder schedules a pre-due-date nudge for an invoice. The core only
// creates reminders; marking them sent belongs to the external delivery
// mechanism.
type Reminder struct {
	ID           int64
	InvoiceID    int64
	ReminderDate time.Time
	Channel      string
	Sent         bool
	CreatedAt    time.Time
}
