package models

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrEntryNotFound is returned when a knowledge entry is not found
var ErrEntryNotFound = errors.New("knowledge entry not found")

// Exchange is one completed conversation turn. It is never mutated after creation.
type Exchange struct {
	Message  string `json:"message"`
	Response string `json:"response"`
}

// ClassificationResult is the structured judgment returned by the classifier
// for one incoming query. It lives only for the duration of that request.
type ClassificationResult struct {
	Language    string `json:"language"`
	IsFollowUp  bool   `json:"is_followup"`
	IsEcommerce bool   `json:"is_ecommerce"`
	Reason      string `json:"reason"`
}

// KnowledgeEntry is a single entry in one of the knowledge categories
// (products, services, consultations, specialists).
type KnowledgeEntry struct {
	ID          string          `json:"id"`
	Category    string          `json:"category"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Tags        []string        `json:"tags,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at,omitempty"`
}

// SearchResult is one ranked hit from a knowledge search. Score is in [0,1],
// higher is more relevant.
type SearchResult struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}
