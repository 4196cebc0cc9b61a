package orchestrator

import (
	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

// State returns the controller state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Job returns the current job, or nil.
func (o *Orchestrator) Job() *models.Job {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.job == nil {
		return nil
	}
	job := *o.job
	return &job
}

// JobActive reports whether a pipeline job is currently being processed.
// The suggestion poller uses this as its gate.
func (o *Orchestrator) JobActive() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.state {
	case StateIdle, StateComplete, StateFailed:
		return false
	}
	return true
}

// Description returns the submitted (or retained) description.
func (o *Orchestrator) Description() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.description
}

// Active returns a copy of the checkpoint open for review, or nil.
func (o *Orchestrator) Active() *models.Checkpoint {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.active == nil {
		return nil
	}
	cp := models.Checkpoint{
		Type:          o.active.Type,
		Payload:       clonePayload(o.active.Payload),
		Justification: clonePayload(o.active.Justification),
		Phase:         o.active.Phase,
	}
	return &cp
}

// SetWorking replaces the draft working copy. The editing front end
// calls this as the user edits; it never touches the baseline, and it is
// allowed while a save is in flight.
func (o *Orchestrator) SetWorking(payload any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.draft.working = clonePayload(payload)
}

// Working returns a copy of the draft working payload.
func (o *Orchestrator) Working() any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return clonePayload(o.draft.working)
}

// Baseline returns a copy of the last-persisted payload.
func (o *Orchestrator) Baseline() any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return clonePayload(o.draft.baseline)
}

// HasChanges reports whether the working copy differs structurally from
// the baseline.
func (o *Orchestrator) HasChanges() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.draft.hasChanges()
}

// Completed returns the ledger of finished checkpoints in append order.
func (o *Orchestrator) Completed() []models.CompletedCheckpoint {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ledger.snapshot()
}

// FindCompleted looks up an earlier checkpoint's result, the mechanism
// by which downstream editing forms read upstream data (the attribute
// list feeding the primary-key, nullability and default-value forms).
func (o *Orchestrator) FindCompleted(typ models.CheckpointType) (*models.CompletedCheckpoint, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e := o.ledger.find(typ)
	if e == nil {
		return nil, false
	}
	entry := models.CompletedCheckpoint{
		Type:          e.Type,
		Payload:       clonePayload(e.Payload),
		Justification: clonePayload(e.Justification),
	}
	return &entry, true
}

// Trail returns the retained progress ticks, oldest first.
func (o *Orchestrator) Trail() []models.StatusTick {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.trail.snapshot()
}

// LatestMessage returns the most recently delivered progress tick.
func (o *Orchestrator) LatestMessage() (models.StatusTick, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.trail.latestMessage()
}

// LastError returns the last surfaced error, if any.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// UndoDepth returns how many snapshots are available to undo.
func (o *Orchestrator) UndoDepth() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.undo.len()
}

// SetUIField stores a pure-UI value (panel expansion and similar).
// These fields survive Undo untouched.
func (o *Orchestrator) SetUIField(key string, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ui[key] = value
}

// UIField reads a pure-UI value.
func (o *Orchestrator) UIField(key string) (any, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.ui[key]
	return v, ok
}
