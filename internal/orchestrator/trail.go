package orchestrator

import (
	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

// trail is a bounded FIFO of progress ticks plus a "latest message"
// projection. Ticks are kept in arrival order: the stream offers only
// best-effort ordering, so the trail never reorders or deduplicates by
// sequence number, and the latest projection reflects the most recently
// delivered tick, not the highest-sequenced one.
type trail struct {
	capacity  int
	ticks     []models.StatusTick
	latest    models.StatusTick
	hasLatest bool
}

func newTrail(capacity int) trail {
	return trail{capacity: capacity}
}

// apply appends a tick, evicting the oldest entry once the trail is at
// capacity, and unconditionally updates the latest projection.
func (t *trail) apply(tick models.StatusTick) {
	if t.capacity > 0 && len(t.ticks) >= t.capacity {
		n := copy(t.ticks, t.ticks[len(t.ticks)-t.capacity+1:])
		t.ticks = t.ticks[:n]
	}
	t.ticks = append(t.ticks, tick)
	t.latest = tick
	t.hasLatest = true
}

// snapshot copies the retained ticks, oldest first.
func (t *trail) snapshot() []models.StatusTick {
	out := make([]models.StatusTick, len(t.ticks))
	copy(out, t.ticks)
	return out
}

// latestMessage returns the most recently delivered tick.
func (t *trail) latestMessage() (models.StatusTick, bool) {
	return t.latest, t.hasLatest
}

func (t *trail) reset() {
	t.ticks = nil
	t.latest = models.StatusTick{}
	t.hasLatest = false
}
