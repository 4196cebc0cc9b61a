package orchestrator

import (
	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

// snapshot is a whole-state capture taken at a commit point. Popping one
// restores the prior state verbatim, except for the pure-UI fields the
// orchestrator keeps from the current state instead.
type snapshot struct {
	state           State
	job             *models.Job
	active          *models.Checkpoint
	draftBaseline   any
	draftWorking    any
	completed       []models.CompletedCheckpoint
	lastDescription string
}

// undoStack is a bounded LIFO of snapshots. Pushing past capacity drops
// the oldest snapshot.
type undoStack struct {
	depth int
	items []snapshot
}

func newUndoStack(depth int) undoStack {
	return undoStack{depth: depth}
}

func (u *undoStack) push(s snapshot) {
	if u.depth > 0 && len(u.items) >= u.depth {
		n := copy(u.items, u.items[len(u.items)-u.depth+1:])
		u.items = u.items[:n]
	}
	u.items = append(u.items, s)
}

func (u *undoStack) pop() (snapshot, bool) {
	if len(u.items) == 0 {
		return snapshot{}, false
	}
	s := u.items[len(u.items)-1]
	u.items = u.items[:len(u.items)-1]
	return s, true
}

func (u *undoStack) len() int {
	return len(u.items)
}

func (u *undoStack) reset() {
	u.items = nil
}
