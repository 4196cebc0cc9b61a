package repository

import (
	"context"
	"time"
)

// SavedDescription is the autosaved requirements text, kept so a crash
// or restart does not lose unsubmitted work.
type SavedDescription struct {
	Description string    `json:"description"`
	SavedAt     time.Time `json:"saved_at"`
}

// DescriptionStore persists the raw input description to durable local
// storage, independent of the checkpoint pipeline.
type DescriptionStore interface {
	// Save writes the description.
	Save(ctx context.Context, description string) error
	// Load reads the saved description. A store with nothing saved
	// returns an empty SavedDescription and no error.
	Load(ctx context.Context) (SavedDescription, error)
	// Clear removes the saved description.
	Clear(ctx context.Context) error
}
