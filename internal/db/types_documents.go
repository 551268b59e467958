package db

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is a stored LaTeX generation.
type Document struct {
	ID            uuid.UUID `json:"id"`
	Template      string    `json:"template"`
	ColorScheme   string    `json:"color_scheme"`
	CandidateName string    `json:"candidate_name"`
	SourceHash    string    `json:"source_hash"`
	LaTeX         string    `json:"-"`
	Compiled      bool      `json:"compiled"`
	PageCount     *int      `json:"page_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// DocumentCreateInput holds the fields needed to record a generation.
type DocumentCreateInput struct {
	Template      string
	ColorScheme   string
	CandidateName string
	SourceHash    string
	LaTeX         string
}

// Listing limits for ListDocuments.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)
