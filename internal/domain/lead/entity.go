// internal/domain/lead/entity.go
package lead

import (
	"database/sql"
	"time"

	"leadscout-service/internal/domain/candidate"
)

type Status string

const (
	StatusNew       Status = "NEW"
	StatusContacted Status = "CONTACTED"
	StatusResponded Status = "RESPONDED"
	StatusHired     Status = "HIRED"
	StatusRejected  Status = "REJECTED"
)

// Known returns whether s is one of the tracked pipeline statuses.
func (s Status) Known() bool {
	switch s {
	case StatusNew, StatusContacted, StatusResponded, StatusHired, StatusRejected:
		return true
	}
	return false
}

// Lead is a candidate a user decided to track and work.
type Lead struct {
	ID          int64                `json:"id"`
	UserID      int64                `json:"userId"`
	CandidateID int64                `json:"candidateId"`
	Candidate   *candidate.Candidate `json:"candidate,omitempty"`
	Status      Status               `json:"status"`
	Notes       sql.NullString       `json:"notes,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// CreateLeadRequest converts a candidate into a tracked lead.
type CreateLeadRequest struct {
	CandidateID int64  `json:"candidateId" binding:"required"`
	Notes       string `json:"notes"`
}

// UpdateLeadRequest changes pipeline status and/or notes.
type UpdateLeadRequest struct {
	Status string `json:"status" binding:"omitempty,oneof=NEW CONTACTED RESPONDED HIRED REJECTED"`
	Notes  string `json:"notes"`
}
