package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is one persisted extraction for data transfer between layers.
type Document struct {
	ID             uuid.UUID       `json:"id"`
	Filename       string          `json:"filename"`
	FormType       *string         `json:"form_type,omitempty"`
	SubmissionDate *string         `json:"submission_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Fields         []DocumentField `json:"fields"`
}

// DocumentField is one persisted field row of a document.
type DocumentField struct {
	Name       string  `json:"name"`
	Value      *string `json:"value"`
	Confidence float32 `json:"confidence"`
	Source     string  `json:"source"`
}

// DocumentSummary is one row of the per-document coverage listing.
type DocumentSummary struct {
	ID       uuid.UUID `json:"id"`
	Filename string    `json:"filename"`
	Filled   int       `json:"filled"`
	Total    int       `json:"total"`
}

// FillRatio returns filled/total, or 0 when the document has no fields.
func (s DocumentSummary) FillRatio() float64 {
	if s.Total == 0 {
		return 0.0
	}
	return float64(s.Filled) / float64(s.Total)
}
