package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/andy/bizhaven/internal/db"
	"github.com/andy/bizhaven/internal/domain"
)

// ClientRepo is a SQLite implementation of ClientRepository
type ClientRepo struct {
	db *db.DB
}

// NewClientRepo creates a new ClientRepo
func NewClientRepo(database *db.DB) *ClientRepo {
	return &ClientRepo{db: database}
}

// Create inserts a new client into the database
func (r *ClientRepo) Create(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}

	query := `
		INSERT INTO clients (name, email, phone, notes, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.Email,
		client.Phone,
		client.Notes,
		client.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return mapSQLiteError("create client", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get client ID: %w", err)
	}

	client.ID = id
	return nil
}

// GetByID retrieves a client by ID
func (r *ClientRepo) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	return r.getOne(ctx, "WHERE id = ?", id)
}

// GetByPortalToken retrieves a client by its portal token
func (r *ClientRepo) GetByPortalToken(ctx context.Context, token string) (*domain.Client, error) {
	return r.getOne(ctx, "WHERE portal_token = ?", token)
}

func (r *ClientRepo) getOne(ctx context.Context, where string, arg any) (*domain.Client, error) {
	query := `
		SELECT id, name, email, phone, notes, portal_token, created_at
		FROM clients
	` + where

	client := &domain.Client{}
	var email, phone, notes, token sql.NullString
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&client.ID,
		&client.Name,
		&email,
		&phone,
		&notes,
		&token,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client: %w", domain.ErrNotFound)
		}
		return nil, mapSQLiteError("get client", err)
	}

	client.Email = email.String
	client.Phone = phone.String
	client.Notes = notes.String
	client.PortalToken = token.String
	if client.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return client, nil
}

// List retrieves all clients, newest first
func (r *ClientRepo) List(ctx context.Context) ([]*domain.Client, error) {
	query := `
		SELECT id, name, email, phone, notes, portal_token, created_at
		FROM clients
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapSQLiteError("list clients", err)
	}
	defer rows.Close()

	clients := make([]*domain.Client, 0)
	for rows.Next() {
		client := &domain.Client{}
		var email, phone, notes, token sql.NullString
		var createdAt string

		err := rows.Scan(
			&client.ID,
			&client.Name,
			&email,
			&phone,
			&notes,
			&token,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}

		client.Email = email.String
		client.Phone = phone.String
		client.Notes = notes.String
		client.PortalToken = token.String
		if client.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		clients = append(clients, client)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	return clients, nil
}

// Update updates an existing client's contact fields
func (r *ClientRepo) Update(ctx context.Context, client *domain.Client) error {
	if err := client.Validate(); err != nil {
		return fmt.Errorf("invalid client: %w", err)
	}

	query := `
		UPDATE clients
		SET name = ?, email = ?, phone = ?, notes = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		client.Name,
		client.Email,
		client.Phone,
		client.Notes,
		client.ID,
	)
	if err != nil {
		return mapSQLiteError("update client", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("client: %w", domain.ErrNotFound)
	}

	return nil
}

// EnsurePortalToken returns the client's portal token, generating one on
// first request. The token is an opaque lookup key, not a credential.
func (r *ClientRepo) EnsurePortalToken(ctx context.Context, id int64) (string, error) {
	client, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if client.PortalToken != "" {
		return client.PortalToken, nil
	}

	token := uuid.NewString()
	result, err := r.db.ExecContext(ctx,
		"UPDATE clients SET portal_token = ? WHERE id = ? AND portal_token IS NULL",
		token, id,
	)
	if err != nil {
		return "", mapSQLiteError("set portal token", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Token was set concurrently; re-read the stable value.
		client, err = r.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		return client.PortalToken, nil
	}

	return token, nil
}
