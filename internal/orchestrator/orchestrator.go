// Package orchestrator implements the client-side controller for the
// checkpoint pipeline: it tracks the active checkpoint, manages the
// draft/baseline pair the editing front end binds to, performs the
// optimistic advance with compensating rollback, keeps the ledger of
// completed checkpoints, and folds progress ticks into the status trail.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Aviroop07/NL2DATA-sub000/internal/backoff"
	"github.com/Aviroop07/NL2DATA-sub000/internal/services"
	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

// Logger defines the logging interface compatible with the application
// logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options tunes the orchestrator.
type Options struct {
	// FetchBackoff is the delay schedule for the checkpoint fetch loop.
	FetchBackoff backoff.Schedule
	// FetchMaxAttempts bounds the fetch loop; exceeding it is fatal.
	FetchMaxAttempts int
	// TrailCapacity bounds the status trail.
	TrailCapacity int
	// UndoDepth bounds the undo snapshot stack.
	UndoDepth int
}

func (o Options) withDefaults() Options {
	if o.FetchBackoff == nil {
		o.FetchBackoff = backoff.Exponential(500*time.Millisecond, 2.0, 8*time.Second)
	}
	if o.FetchMaxAttempts <= 0 {
		o.FetchMaxAttempts = 20
	}
	if o.TrailCapacity <= 0 {
		o.TrailCapacity = 300
	}
	if o.UndoDepth <= 0 {
		o.UndoDepth = 5
	}
	return o
}

// Orchestrator owns all client-side pipeline state. Every mutation goes
// through its methods under one mutex: remote calls release the lock
// while suspended and revalidate the job generation when they resume, so
// a retry loop left over from a superseded job can never write into the
// state of the next one. The event stream only ever appends ticks via
// ApplyTick; the Proceed path additionally serializes advances with an
// in-flight guard.
type Orchestrator struct {
	client services.PipelineClient
	logger Logger
	opts   Options
	inst   instruments

	mu              sync.Mutex
	generation      uint64
	state           State
	job             *models.Job
	description     string
	active          *models.Checkpoint
	draft           draft
	ledger          ledger
	trail           trail
	undo            undoStack
	ui              map[string]any
	advanceInFlight bool
	lastErr         error
}

// New creates an Orchestrator with the given pipeline client.
func New(client services.PipelineClient, logger Logger, opts Options) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		client: client,
		logger: logger,
		opts:   opts,
		inst:   newInstruments(),
		state:  StateIdle,
		trail:  newTrail(opts.TrailCapacity),
		undo:   newUndoStack(opts.UndoDepth),
		ui:     map[string]any{},
	}
}

// Submit starts a new pipeline job for the description and fetches its
// first checkpoint. A fresh submission supersedes any previous job: its
// retry loops abort and its ticks are ignored from then on. On failure
// the orchestrator returns to idle with the description retained so the
// user can retry.
func (o *Orchestrator) Submit(ctx context.Context, description string) (*models.Job, error) {
	o.mu.Lock()
	if o.state == StateSubmitting || o.state == StateSaving || o.advanceInFlight {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.generation++
	gen := o.generation
	o.resetJobStateLocked()
	o.description = description
	o.state = StateSubmitting
	o.mu.Unlock()

	job, err := o.client.StartJob(ctx, description)

	o.mu.Lock()
	if o.generation != gen {
		o.mu.Unlock()
		return nil, ErrSuperseded
	}
	if err != nil {
		o.state = StateIdle
		o.lastErr = err
		o.mu.Unlock()
		return nil, fmt.Errorf("failed to start job: %w", err)
	}
	o.job = job
	o.state = StateFetching
	o.mu.Unlock()

	o.logger.Info("job started", "job_id", job.ID)

	cp, err := o.fetchActiveCheckpoint(ctx, gen, job.ID)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != gen {
		return nil, ErrSuperseded
	}
	if err != nil {
		o.state = StateFailed
		o.lastErr = err
		o.logger.Error("failed to fetch first checkpoint", "job_id", job.ID, "error", err)
		return nil, fmt.Errorf("failed to fetch first checkpoint: %w", err)
	}
	o.installActiveLocked(cp)
	o.state = StateReviewing
	o.logger.Info("checkpoint ready", "job_id", job.ID, "type", cp.Type)
	return job, nil
}

// fetchActiveCheckpoint polls until the server hands over the active
// checkpoint. Pending answers and transport failures are retried with
// exponential backoff; typed API errors and an exhausted attempt budget
// are fatal.
func (o *Orchestrator) fetchActiveCheckpoint(ctx context.Context, gen uint64, jobID string) (*models.Checkpoint, error) {
	for attempt := 0; attempt < o.opts.FetchMaxAttempts; attempt++ {
		if attempt > 0 {
			if err := backoff.Sleep(ctx, o.opts.FetchBackoff(attempt-1)); err != nil {
				return nil, err
			}
			o.inst.fetchRetries.Add(ctx, 1)
		}

		o.mu.Lock()
		current := o.generation == gen
		o.mu.Unlock()
		if !current {
			return nil, ErrSuperseded
		}

		cp, err := o.client.GetActiveCheckpoint(ctx, jobID)
		if err == nil {
			return cp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if services.Terminal(err) {
			return nil, err
		}
		o.logger.Debug("checkpoint not ready",
			"job_id", jobID, "attempt", attempt+1, "max_attempts", o.opts.FetchMaxAttempts, "error", err)
	}
	return nil, ErrFetchExhausted
}

// SaveDraft persists the working payload for the active checkpoint
// without advancing. On success the baseline becomes the persisted
// payload, so HasChanges turns false unless the user kept editing while
// the save was in flight. For checkpoint types whose save is also the
// completion call, the type is recorded in the ledger (idempotently).
// On failure both copies are left untouched.
func (o *Orchestrator) SaveDraft(ctx context.Context, typ models.CheckpointType, working any) error {
	o.mu.Lock()
	if o.job == nil {
		o.mu.Unlock()
		return ErrNoActiveJob
	}
	if o.active == nil {
		o.mu.Unlock()
		return ErrNoActiveCheckpoint
	}
	if typ != o.active.Type {
		o.mu.Unlock()
		return ErrCheckpointMismatch
	}
	if o.state != StateReviewing {
		o.mu.Unlock()
		return ErrBusy
	}
	gen := o.generation
	jobID := o.job.ID
	o.draft.working = clonePayload(working)
	payload := clonePayload(o.draft.working)
	justification := clonePayload(o.active.Justification)
	o.state = StateSaving
	o.mu.Unlock()

	err := o.client.SaveCheckpointDraft(ctx, jobID, typ, payload)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != gen {
		return ErrSuperseded
	}
	o.state = StateReviewing
	if err != nil {
		o.logger.Warn("draft save failed", "job_id", jobID, "type", typ, "error", err)
		return fmt.Errorf("failed to save draft: %w", err)
	}
	o.draft.baseline = clonePayload(payload)
	if o.active != nil {
		o.active.Payload = clonePayload(payload)
	}
	if typ.CompletesOnSave() {
		o.ledger.append(models.CompletedCheckpoint{
			Type:          typ,
			Payload:       clonePayload(payload),
			Justification: justification,
		})
	}
	o.logger.Debug("draft saved", "job_id", jobID, "type", typ)
	return nil
}

// Proceed persists the working payload exactly as SaveDraft would, then
// performs the optimistic advance: the finished checkpoint moves into
// the ledger and the active slot clears before the server is asked to
// advance. On confirmation the server-provided next checkpoint is
// installed (no follow-up fetch); on rejection the exact prior active
// checkpoint is restored and the speculative ledger entry removed.
// Advances are serialized per job: a concurrent call is rejected with
// ErrAdvanceInFlight.
func (o *Orchestrator) Proceed(ctx context.Context, typ models.CheckpointType, working any) (*models.AdvanceResult, error) {
	o.mu.Lock()
	if o.advanceInFlight {
		o.mu.Unlock()
		return nil, ErrAdvanceInFlight
	}
	o.mu.Unlock()

	if err := o.SaveDraft(ctx, typ, working); err != nil {
		return nil, err
	}

	o.mu.Lock()
	if o.advanceInFlight {
		o.mu.Unlock()
		return nil, ErrAdvanceInFlight
	}
	if o.state != StateReviewing || o.active == nil || o.active.Type != typ {
		o.mu.Unlock()
		return nil, ErrBusy
	}
	gen := o.generation
	jobID := o.job.ID

	// Tentative apply: the reviewed card vanishes immediately.
	restore := o.captureLocked()
	merged := mergePayload(o.active.Payload, o.draft.working)
	appended := o.ledger.append(models.CompletedCheckpoint{
		Type:          typ,
		Payload:       clonePayload(merged),
		Justification: clonePayload(o.active.Justification),
	})
	o.active = nil
	o.draft = draft{}
	o.state = StateAdvancing
	o.advanceInFlight = true
	o.mu.Unlock()

	result, err := o.client.AdvanceCheckpoint(ctx, jobID)
	o.inst.advances.Add(ctx, 1)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != gen {
		return nil, ErrSuperseded
	}
	o.advanceInFlight = false

	if err == nil && result.Status != models.AdvanceSuccess {
		err = &services.ServerError{Message: result.Message}
	}
	if err != nil {
		// Compensate: restore the exact pre-advance active checkpoint and
		// drop only the entry appended above.
		o.inst.rollbacks.Add(ctx, 1)
		o.active = restore.active
		o.draft = draft{baseline: restore.draftBaseline, working: restore.draftWorking}
		if appended {
			o.ledger.remove(typ)
		}
		o.state = StateReviewing
		o.lastErr = err
		o.logger.Warn("advance failed, rolled back", "job_id", jobID, "type", typ, "error", err)
		return nil, fmt.Errorf("failed to advance: %w", err)
	}

	o.undo.push(restore)

	if result.Next == models.CheckpointComplete || result.Next == "" {
		o.state = StateComplete
		o.logger.Info("pipeline complete", "job_id", jobID)
		return result, nil
	}

	next := &models.Checkpoint{
		Type:          result.Next,
		Payload:       result.NextPayload,
		Justification: result.NextJustification,
		Phase:         result.NextPhase,
	}
	o.installActiveLocked(next)
	o.state = StateReviewing
	o.logger.Info("checkpoint advanced", "job_id", jobID, "from", typ, "to", result.Next)
	return result, nil
}

// MarkCompleted records a checkpoint as finished without any server
// call. The append is idempotent: at most one ledger entry exists per
// type, so repeated calls are no-ops.
func (o *Orchestrator) MarkCompleted(typ models.CheckpointType, payload, justification any) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ledger.append(models.CompletedCheckpoint{
		Type:          typ,
		Payload:       clonePayload(payload),
		Justification: clonePayload(justification),
	})
}

// ApplyTick folds one progress tick into the status trail. Ticks for a
// job other than the current one (including a superseded one) are
// dropped; the trail is advisory and never gates the state machine.
func (o *Orchestrator) ApplyTick(tick models.StatusTick) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.job == nil || (tick.JobID != "" && tick.JobID != o.job.ID) {
		return
	}
	o.trail.apply(tick)
	o.inst.ticks.Add(context.Background(), 1)
}

// Undo restores the most recent snapshot, keeping the current pure-UI
// fields (panel expansion and the like) rather than overwriting them.
func (o *Orchestrator) Undo() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case StateSubmitting, StateFetching, StateSaving, StateAdvancing:
		return ErrBusy
	}
	s, ok := o.undo.pop()
	if !ok {
		return ErrNothingToUndo
	}
	o.state = s.state
	o.job = s.job
	o.description = s.lastDescription
	o.active = s.active
	o.draft = draft{baseline: s.draftBaseline, working: s.draftWorking}
	o.ledger.restore(s.completed)
	return nil
}

// Reset abandons the current job: pending retry loops abort on their
// next generation check and the event stream's remaining ticks no
// longer match the job.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.resetJobStateLocked()
	o.state = StateIdle
}

// captureLocked snapshots the whole state for rollback or undo. Pure-UI
// fields are deliberately not captured; Undo keeps the current ones.
func (o *Orchestrator) captureLocked() snapshot {
	var active *models.Checkpoint
	if o.active != nil {
		cp := models.Checkpoint{
			Type:          o.active.Type,
			Payload:       clonePayload(o.active.Payload),
			Justification: clonePayload(o.active.Justification),
			Phase:         o.active.Phase,
		}
		active = &cp
	}
	return snapshot{
		state:           o.state,
		job:             o.job,
		active:          active,
		draftBaseline:   clonePayload(o.draft.baseline),
		draftWorking:    clonePayload(o.draft.working),
		completed:       o.ledger.snapshot(),
		lastDescription: o.description,
	}
}

func (o *Orchestrator) installActiveLocked(cp *models.Checkpoint) {
	installed := models.Checkpoint{
		Type:          cp.Type,
		Payload:       clonePayload(cp.Payload),
		Justification: clonePayload(cp.Justification),
		Phase:         cp.Phase,
	}
	if installed.Phase == "" {
		installed.Phase = installed.Type.Phase()
	}
	o.active = &installed
	o.draft = newDraft(installed.Payload)
	o.advanceInFlight = false
	o.lastErr = nil
}

func (o *Orchestrator) resetJobStateLocked() {
	o.job = nil
	o.active = nil
	o.draft = draft{}
	o.ledger.reset()
	o.trail.reset()
	o.undo.reset()
	o.advanceInFlight = false
	o.lastErr = nil
}

// mergePayload lays the working payload over the last-known checkpoint
// payload. When both are mappings the working keys win and untouched
// keys survive; otherwise the working value replaces the payload
// entirely.
func mergePayload(base, working any) any {
	baseMap, okBase := normalizePayload(base).(map[string]any)
	workMap, okWork := normalizePayload(working).(map[string]any)
	if !okBase || !okWork {
		return clonePayload(working)
	}
	merged := make(map[string]any, len(baseMap)+len(workMap))
	for k, v := range baseMap {
		merged[k] = v
	}
	for k, v := range workMap {
		merged[k] = v
	}
	return merged
}
