package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

func TestLedgerAtMostOnePerType(t *testing.T) {
	var l ledger

	assert.True(t, l.append(models.CompletedCheckpoint{Type: models.CheckpointDomain, Payload: "retail"}))
	assert.True(t, l.append(models.CompletedCheckpoint{Type: models.CheckpointEntities, Payload: []any{"customer"}}))
	assert.False(t, l.append(models.CompletedCheckpoint{Type: models.CheckpointDomain, Payload: "wholesale"}))

	require.Len(t, l.entries, 2)
	assert.Equal(t, "retail", l.find(models.CheckpointDomain).Payload)
}

func TestLedgerRemoveOnlyTargets(t *testing.T) {
	var l ledger
	l.append(models.CompletedCheckpoint{Type: models.CheckpointDomain})
	l.append(models.CompletedCheckpoint{Type: models.CheckpointEntities})
	l.append(models.CompletedCheckpoint{Type: models.CheckpointRelations})

	l.remove(models.CheckpointEntities)

	require.Len(t, l.entries, 2)
	assert.Equal(t, models.CheckpointDomain, l.entries[0].Type)
	assert.Equal(t, models.CheckpointRelations, l.entries[1].Type)
	assert.Nil(t, l.find(models.CheckpointEntities))

	// Removing an absent type is harmless.
	l.remove(models.CheckpointEntities)
	assert.Len(t, l.entries, 2)
}

func TestLedgerSnapshotIsDetached(t *testing.T) {
	var l ledger
	l.append(models.CompletedCheckpoint{Type: models.CheckpointAttributes, Payload: map[string]any{"attrs": []any{"id"}}})

	snap := l.snapshot()
	snap[0].Payload.(map[string]any)["attrs"] = "mutated"

	assert.Equal(t, map[string]any{"attrs": []any{"id"}}, l.find(models.CheckpointAttributes).Payload)
}
