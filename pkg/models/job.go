package models

import (
	"time"
)

// Job is one server-side pipeline execution. The client holds at most
// one live job at a time.
type Job struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Suggestions is the response of the description-quality endpoint.
type Suggestions struct {
	Keywords       []string `json:"keywords"`
	ExtractedItems []string `json:"extracted_items"`
}
