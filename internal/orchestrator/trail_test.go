package orchestrator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

func TestTrailBound(t *testing.T) {
	tr := newTrail(5)

	for i := 0; i < 12; i++ {
		tr.apply(models.StatusTick{Seq: int64(i), Message: fmt.Sprintf("tick %d", i)})
	}

	ticks := tr.snapshot()
	require.Len(t, ticks, 5)
	// Always the most recently appended N, oldest first.
	for i, tick := range ticks {
		assert.Equal(t, int64(7+i), tick.Seq)
	}
}

func TestTrailLatestFollowsArrivalOrder(t *testing.T) {
	tr := newTrail(10)

	tr.apply(models.StatusTick{Seq: 5, Message: "late in sequence"})
	tr.apply(models.StatusTick{Seq: 2, Message: "arrived last"})

	// The projection reflects delivery order, not sequence numbers: the
	// stream is best-effort ordered and the trail never resequences.
	latest, ok := tr.latestMessage()
	require.True(t, ok)
	assert.Equal(t, "arrived last", latest.Message)

	ticks := tr.snapshot()
	assert.Equal(t, int64(5), ticks[0].Seq)
	assert.Equal(t, int64(2), ticks[1].Seq)
}

func TestTrailReset(t *testing.T) {
	tr := newTrail(3)
	tr.apply(models.StatusTick{Message: "x"})
	tr.reset()

	assert.Empty(t, tr.snapshot())
	_, ok := tr.latestMessage()
	assert.False(t, ok)
}
