// internal/domain/scrape/entity.go
package scrape

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Job is a scraping run launched by a user. The scraping engine itself is an
// external collaborator; the platform records the request, relays it, and
// tracks progress reported back.
type Job struct {
	ID           int64          `json:"id"`
	Reference    string         `json:"reference"`
	UserID       int64          `json:"userId"`
	Source       string         `json:"source"`
	Title        string         `json:"title"`
	Sector       sql.NullString `json:"sector,omitempty"`
	Location     sql.NullString `json:"location,omitempty"`
	Company      sql.NullString `json:"company,omitempty"`
	Status       Status         `json:"status"`
	ProfileCount int            `json:"profileCount"`
	Error        sql.NullString `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// CreateJobRequest launches a scraping run.
type CreateJobRequest struct {
	Source   string `json:"source" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Sector   string `json:"sector"`
	Location string `json:"location"`
	Company  string `json:"company"`
}

// UpdateStatusRequest is reported back by the scraping engine.
type UpdateStatusRequest struct {
	Status       string `json:"status" binding:"required,oneof=RUNNING COMPLETED FAILED"`
	ProfileCount int    `json:"profileCount"`
	Error        string `json:"error"`
}
