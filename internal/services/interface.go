package services

import (
	"context"

	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

// PipelineClient is an interface for the checkpoint-control API of the
// pipeline backend.
type PipelineClient interface {
	// StartJob submits a requirements description and allocates a job.
	StartJob(ctx context.Context, description string) (*models.Job, error)
	// GetActiveCheckpoint returns the checkpoint currently awaiting
	// review, or ErrPending while the server is still computing it.
	GetActiveCheckpoint(ctx context.Context, jobID string) (*models.Checkpoint, error)
	// SaveCheckpointDraft persists an edited payload without advancing.
	SaveCheckpointDraft(ctx context.Context, jobID string, typ models.CheckpointType, payload any) error
	// AdvanceCheckpoint asks the server to move the job to the next
	// checkpoint. The result carries the full next checkpoint on success.
	AdvanceCheckpoint(ctx context.Context, jobID string) (*models.AdvanceResult, error)
}

// SuggestionClient is an interface for the description-quality endpoint.
type SuggestionClient interface {
	// GetSuggestions proposes improvements for a draft description.
	GetSuggestions(ctx context.Context, description string) (*models.Suggestions, error)
}
