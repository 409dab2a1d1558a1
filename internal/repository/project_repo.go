package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andy/bizhaven/internal/db"
	"github.com/andy/bizhaven/internal/domain"
)

// ProjectRepo is a SQLite implementation of ProjectRepository
type ProjectRepo struct {
	db *db.DB
}

// NewProjectRepo creates a new ProjectRepo
func NewProjectRepo(database *db.DB) *ProjectRepo {
	return &ProjectRepo{db: database}
}

// Create inserts a new project into the database
func (r *ProjectRepo) Create(ctx context.Context, project *domain.Project) error {
	if err := project.Validate(); err != nil {
		return fmt.Errorf("invalid project: %w", err)
	}

	query := `
		INSERT INTO projects (client_id, name, description, status, start_date, end_date, budget, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var startDate, endDate any
	if project.StartDate != nil {
		startDate = project.StartDate.Format(dateLayout)
	}
	if project.EndDate != nil {
		endDate = project.EndDate.Format(dateLayout)
	}

	result, err := r.db.ExecContext(ctx, query,
		project.ClientID,
		project.Name,
		project.Description,
		string(project.Status),
		startDate,
		endDate,
		project.Budget,
		project.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return mapSQLiteError("create project", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get project ID: %w", err)
	}

	project.ID = id
	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepo) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	query := `
		SELECT id, client_id, name, description, status, start_date, end_date, budget, created_at
		FROM projects
		WHERE id = ?
	`

	project := &domain.Project{}
	var description, startDate, endDate sql.NullString
	var status, createdAt string

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.ClientID,
		&project.Name,
		&description,
		&status,
		&startDate,
		&endDate,
		&project.Budget,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project: %w", domain.ErrNotFound)
		}
		return nil, mapSQLiteError("get project", err)
	}

	project.Description = description.String
	project.Status = domain.ProjectStatus(status)
	if startDate.Valid {
		t, err := parseDate(startDate.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse start_date: %w", err)
		}
		project.StartDate = &t
	}
	if endDate.Valid {
		t, err := parseDate(endDate.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse end_date: %w", err)
		}
		project.EndDate = &t
	}
	if project.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return project, nil
}

// List retrieves projects, optionally filtered by client
func (r *ProjectRepo) List(ctx context.Context, clientID *int64) ([]*domain.Project, error) {
	query := `
		SELECT id, client_id, name, description, status, start_date, end_date, budget, created_at
		FROM projects
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
		return nil, mapSQLiteError("list projects", err)
	}
	defer rows.Close()

	projects := make([]*domain.Project, 0)
	for rows.Next() {
		project := &domain.Project{}
		var description, startDate, endDate sql.NullString
		var status, createdAt string

		err := rows.Scan(
			&project.ID,
			&project.ClientID,
			&project.Name,
			&description,
			&status,
			&startDate,
			&endDate,
			&project.Budget,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}

		project.Description = description.String
		project.Status = domain.ProjectStatus(status)
		if startDate.Valid {
			t, err := parseDate(startDate.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_date: %w", err)
			}
			project.StartDate = &t
		}
		if endDate.Valid {
			t, err := parseDate(endDate.String)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_date: %w", err)
			}
			project.EndDate = &t
		}
		if project.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// SetStatus updates a project's lifecycle status
func (r *ProjectRepo) SetStatus(ctx context.Context, id int64, status domain.ProjectStatus) error {
	if !domain.ValidProjectStatus(status) {
		return &domain.ValidationError{Field: "status", Message: "unknown project status"}
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE projects SET status = ? WHERE id = ?",
		string(status), id,
	)
	if err != nil {
		return mapSQLiteError("set project status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("project: %w", domain.ErrNotFound)
	}

	return nil
}
