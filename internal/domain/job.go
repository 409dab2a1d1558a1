package domain

import (
	"strings"
	"time"
)

type Job struct {
	ID          int64
	ClientID    int64
	ProjectID   *int64
	Title       string
	Description string
	Status      string
	CreatedAt   time.Time
}

// NewJob creates a new open job for a client
func NewJob(clientID int64, title string) *Job {
	return &Job{
		ClientID:  clientID,
		Title:     strings.TrimSpace(title),
		Status:    "open",
		CreatedAt: time.Now(),
	}
}

// Validate returns an error if the job is invalid
func (j *Job) Validate() error {
	if strings.TrimSpace(j.Title) == "" {
		return &ValidationError{Field: "title", Message: "job title is required"}
	}
	if j.ClientID <= 0 {
		return &ValidationError{Field: "client_id", Message: "client ID is required"}
	}
	return nil
}
