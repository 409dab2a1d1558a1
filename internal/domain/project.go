package domain

import (
	"strings"
	"time"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted:
		return true
	}
	return false
}

type Project struct {
	ID          int64
	ClientID    int64
	Name        string
	Description string
	Status      ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
	Budget      float64
	CreatedAt   time.Time
}

// NewProject creates a new active project for a client
func NewProject(clientID int64, name string) *Project {
	return &Project{
		ClientID:  clientID,
		Name:      strings.TrimSpace(name),
		Status:    ProjectStatusActive,
		CreatedAt: time.Now(),
	}
}

// Validate returns an error if the project is invalid
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Message: "project name is required"}
	}
	if p.ClientID <= 0 {
		return &ValidationError{Field: "client_id", Message: "client ID is required"}
	}
	if !ValidProjectStatus(p.Status) {
		return &ValidationError{Field: "status", Message: "unknown project status"}
	}
	return nil
}
