// internal/domain/candidate/entity.go
package candidate

import (
	"database/sql"
	"time"
)

// Candidate is a profile produced by a scraping job.
type Candidate struct {
	ID        int64          `json:"id"`
	ScrapeID  int64          `json:"scrapeId"`
	FullName  string         `json:"fullName"`
	Headline  sql.NullString `json:"headline,omitempty"`
	Company   sql.NullString `json:"company,omitempty"`
	Location  sql.NullString `json:"location,omitempty"`
	Email     sql.NullString `json:"email,omitempty"`
	Phone     sql.NullString `json:"phone,omitempty"`
	Skills    []string       `json:"skills,omitempty"`
	SourceURL sql.NullString `json:"sourceUrl,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Filter narrows candidate listings.
type Filter struct {
	ScrapeID int64
	Keyword  string
	Limit    int
	Offset   int
}
