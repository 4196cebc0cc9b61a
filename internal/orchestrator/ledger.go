package orchestrator

import (
	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

// ledger is the append-only record of finished checkpoints. It holds at
// most one entry per checkpoint type; entries keep their append order so
// the review history reads in pipeline order.
type ledger struct {
	entries []models.CompletedCheckpoint
}

// append inserts an entry unless one with the same type already exists.
// It reports whether the entry was actually added, so a compensating
// rollback knows whether it has anything to remove.
func (l *ledger) append(entry models.CompletedCheckpoint) bool {
	if l.find(entry.Type) != nil {
		return false
	}
	l.entries = append(l.entries, entry)
	return true
}

// remove deletes the single entry with the given type, if present. Only
// the rollback path uses this.
func (l *ledger) remove(typ models.CheckpointType) {
	for i, e := range l.entries {
		if e.Type == typ {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return
		}
	}
}

// find returns the entry for typ, or nil. Downstream checkpoints use
// this to read upstream results without re-fetching them.
func (l *ledger) find(typ models.CheckpointType) *models.CompletedCheckpoint {
	for i := range l.entries {
		if l.entries[i].Type == typ {
			return &l.entries[i]
		}
	}
	return nil
}

// snapshot returns a deep copy of the entries.
func (l *ledger) snapshot() []models.CompletedCheckpoint {
	out := make([]models.CompletedCheckpoint, len(l.entries))
	for i, e := range l.entries {
		out[i] = models.CompletedCheckpoint{
			Type:          e.Type,
			Payload:       clonePayload(e.Payload),
			Justification: clonePayload(e.Justification),
		}
	}
	return out
}

// restore replaces the entries with a previously taken snapshot.
func (l *ledger) restore(entries []models.CompletedCheckpoint) {
	l.entries = entries
}

func (l *ledger) reset() {
	l.entries = nil
}
