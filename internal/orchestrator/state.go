package orchestrator

import "errors"

// State is the controller state of the checkpoint pipeline.
type State string

const (
	// StateIdle means no job has been submitted.
	StateIdle State = "idle"
	// StateSubmitting means a job submission is in flight.
	StateSubmitting State = "submitting"
	// StateFetching means the active checkpoint is being fetched, with
	// retries while the server is still computing it.
	StateFetching State = "fetching"
	// StateReviewing means a checkpoint is open for human review.
	StateReviewing State = "reviewing"
	// StateSaving means a draft save is in flight.
	StateSaving State = "saving"
	// StateAdvancing means an advance request is in flight and the
	// finished checkpoint has already been applied optimistically.
	StateAdvancing State = "advancing"
	// StateComplete means the pipeline reached its final checkpoint.
	StateComplete State = "complete"
	// StateFailed means the current job hit a fatal error, such as
	// exhausting checkpoint-fetch retries.
	StateFailed State = "failed"
)

var (
	// ErrAdvanceInFlight rejects a Proceed call while another advance for
	// the same job is still outstanding.
	ErrAdvanceInFlight = errors.New("an advance is already in flight")
	// ErrNoActiveJob is returned by operations that need a live job.
	ErrNoActiveJob = errors.New("no active job")
	// ErrNoActiveCheckpoint is returned when no checkpoint is open for review.
	ErrNoActiveCheckpoint = errors.New("no active checkpoint")
	// ErrCheckpointMismatch is returned when an operation names a
	// checkpoint type other than the active one.
	ErrCheckpointMismatch = errors.New("checkpoint type does not match the active checkpoint")
	// ErrBusy rejects an operation that conflicts with one in flight.
	ErrBusy = errors.New("another operation is in flight")
	// ErrSuperseded aborts an operation whose job was replaced while it
	// was suspended on a remote call.
	ErrSuperseded = errors.New("job was superseded")
	// ErrFetchExhausted is a fatal error: the checkpoint fetch retry
	// budget ran out while the server kept answering pending.
	ErrFetchExhausted = errors.New("checkpoint fetch attempts exhausted")
	// ErrNothingToUndo is returned by Undo on an empty snapshot stack.
	ErrNothingToUndo = errors.New("nothing to undo")
)
