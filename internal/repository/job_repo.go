package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/bizhaven/internal/db"
	"github.com/andy/bizhaven/internal/domain"
)

// JobRepo is a SQLite implementation of JobRepository
type JobRepo struct {
	db *db.DB
}

// NewJobRepo creates a new JobRepo
func NewJobRepo(database *db.DB) *JobRepo {
	return &JobRepo{db: database}
}

// Create inserts a new job into the database
func (r *JobRepo) Create(ctx context.Context, job *domain.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	query := `
		INSERT INTO jobs (client_id, project_id, title, description, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var projectID any
	if job.ProjectID != nil {
		projectID = *job.ProjectID
	}

	result, err := r.db.ExecContext(ctx, query,
		job.ClientID,
		projectID,
		job.Title,
		job.Description,
		job.Status,
		job.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return mapSQLiteError("create job", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get job ID: %w", err)
	}

	job.ID = id
	return nil
}

// GetByID retrieves a job by ID
func (r *JobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `
		SELECT id, client_id, project_id, title, description, status, created_at
		FROM jobs
		WHERE id = ?
	`

	job := &domain.Job{}
	var projectID sql.NullInt64
	var description sql.NullString
	var createdAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&job.ID,
		&job.ClientID,
		&projectID,
		&job.Title,
		&description,
		&job.Status,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job: %w", domain.ErrNotFound)
		}
		return nil, mapSQLiteError("get job", err)
	}

	if projectID.Valid {
		job.ProjectID = &projectID.Int64
	}
	job.Description = description.String
	if job.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return job, nil
}

// List retrieves jobs, optionally filtered by client
func (r *JobRepo) List(ctx context.Context, clientID *int64) ([]*domain.Job, error) {
	query := `
		SELECT id, client_id, project_id, title, description, status, created_at
		FROM jobs
		WHERE 1=1
	`
	args := make([]any, 0)

	if clientID != nil {
		query += " AND client_id = ?"
		args = append(args, *clientID)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError("list jobs", err)
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0)
	for rows.Next() {
		job := &domain.Job{}
		var projectID sql.NullInt64
		var description sql.NullString
		var createdAt string

		err := rows.Scan(
			&job.ID,
			&job.ClientID,
			&projectID,
			&job.Title,
			&description,
			&job.Status,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}

		if projectID.Valid {
			job.ProjectID = &projectID.Int64
		}
		job.Description = description.String
		if job.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}

	return jobs, nil
}
