package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/andy/bizhaven/internal/domain"
)

func TestCustomFieldsRoundTrip(t *testing.T) {
	fields := map[string]any{
		"po_number": "PO-44",
		"approved":  true,
		"priority":  float64(2), // JSON numbers come back as float64
	}

	raw, err := encodeCustomFields(fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := decodeCustomFields(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(decoded) != len(fields) {
		t.Fatalf("expected %d fields, got %d", len(fields), len(decoded))
	}
	for k, v := range fields {
		if decoded[k] != v {
			t.Errorf("field %s: expected %v, got %v", k, v, decoded[k])
		}
	}
}

func TestCustomFieldsEmpty(t *testing.T) {
	raw, err := encodeCustomFields(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != "{}" {
		t.Errorf("expected empty object, got %q", raw)
	}

	decoded, err := decodeCustomFields("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decoded) != 0 {
		t.Errorf("expected no fields, got %v", decoded)
	}
}

func TestParseTime_Fallback(t *testing.T) {
	// Rows written from Go carry RFC3339
	if _, err := parseTime("2026-01-15T10:30:00Z"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// Rows written by SQLite column defaults carry datetime('now')
	got, err := parseTime("2026-01-15 10:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestMapSQLiteError_Unclassified(t *testing.T) {
	err := mapSQLiteError("create client", errors.New("disk I/O error"))

	var se *domain.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if se.Op != "create client" {
		t.Errorf("expected op preserved, got %q", se.Op)
	}
}
