package domain

import (
	"strings"
	"time"
)

type Client struct {
	ID    int64
	Name  string
	Email string
	Phone string
	Notes string

	// PortalToken is an opaque lookup key for read-only external access.
	// Generated lazily, stable once set. Not a credential.
	PortalToken string

	CreatedAt time.Time
}

// NewClient creates a new client with required fields
func NewClient(name string) *Client {
	return &Client{
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now(),
	}
}

// Validate returns an error if the client is invalid
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Message: "client name is required"}
	}
	return nil
}
