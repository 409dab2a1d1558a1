package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/andy/bizhaven/internal/domain"
)

// dateLayout is the calendar-date format for issue/due/paid-on columns.
const dateLayout = "2006-01-02"

// timeLayout is the RFC3339 format for created_at timestamps.
const timeLayout = time.RFC3339

// parseDate parses a calendar date string
func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// parseTime parses a timestamp string. Falls back to the SQLite
// datetime('now') layout for rows written by column defaults.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

// encodeCustomFields serializes the custom field mapping to its stored
// JSON form. The mapping is opaque to the core and round-trips as given.
func encodeCustomFields(fields map[string]any) (string, error) {
	if len(fields) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("failed to encode custom fields: %w", err)
	}
	return string(data), nil
}

// decodeCustomFields parses the stored custom field blob.
func decodeCustomFields(raw string) (map[string]any, error) {
	fields := make(map[string]any)
	if raw == "" {
		return fields, nil
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("failed to decode custom fields: %w", err)
	}
	return fields, nil
}

// mapSQLiteError classifies a driver error into the core taxonomy:
// uniqueness violations become conflicts, foreign key violations become
// reference errors, anything else is a storage error.
func mapSQLiteError(op string, err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%s: %w", op, domain.ErrConflict)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
	}
	return &domain.StorageError{Op: op, Err: err}
}
