package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileDescriptionStore stores the description as a small JSON file under
// a fixed path. Writes go through a temp file and rename so a crash
// never leaves a torn file behind.
type FileDescriptionStore struct {
	path string
}

// NewFileDescriptionStore creates a store writing to path.
func NewFileDescriptionStore(path string) *FileDescriptionStore {
	return &FileDescriptionStore{path: path}
}

// Save writes the description.
func (s *FileDescriptionStore) Save(ctx context.Context, description string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	data, err := json.Marshal(SavedDescription{
		Description: description,
		SavedAt:     time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal description: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write description: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace description file: %w", err)
	}
	return nil
}

// Load reads the saved description, returning an empty value when the
// file does not exist.
func (s *FileDescriptionStore) Load(ctx context.Context) (SavedDescription, error) {
	if err := ctx.Err(); err != nil {
		return SavedDescription{}, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return SavedDescription{}, nil
		}
		return SavedDescription{}, fmt.Errorf("failed to read description: %w", err)
	}
	var saved SavedDescription
	if err := json.Unmarshal(data, &saved); err != nil {
		return SavedDescription{}, fmt.Errorf("failed to decode description: %w", err)
	}
	return saved, nil
}

// Clear removes the saved description.
func (s *FileDescriptionStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove description file: %w", err)
	}
	return nil
}
