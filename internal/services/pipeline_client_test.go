package services_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aviroop07/NL2DATA-sub000/internal/services"
	"github.com/Aviroop07/NL2DATA-sub000/internal/testutil"
	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

func newClient(b *testutil.FakeBackend) *services.HTTPPipelineClient {
	return services.NewHTTPPipelineClient(b.URL(), 5*time.Second, nil)
}

func TestStartJob(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		backend := testutil.NewFakeBackend()
		defer backend.Close()
		backend.JobID = "job-42"

		job, err := newClient(backend).StartJob(ctx, "a store with customers and orders")
		require.NoError(t, err)
		assert.Equal(t, "job-42", job.ID)
		assert.Equal(t, "a store with customers and orders", job.Description)
	})

	t.Run("rejected description maps to InvalidInputError", func(t *testing.T) {
		backend := testutil.NewFakeBackend()
		defer backend.Close()
		backend.StartJobStatus = http.StatusBadRequest
		backend.StartJobMessage = "description too vague"

		_, err := newClient(backend).StartJob(ctx, "shop")
		var invalid *services.InvalidInputError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "description too vague", invalid.Message)
		assert.True(t, services.Terminal(err))
	})
}

func TestGetActiveCheckpoint(t *testing.T) {
	ctx := context.Background()

	t.Run("pending maps to ErrPending", func(t *testing.T) {
		backend := testutil.NewFakeBackend()
		defer backend.Close()
		backend.PendingResponses = 1

		_, err := newClient(backend).GetActiveCheckpoint(ctx, "job-1")
		require.ErrorIs(t, err, services.ErrPending)
		assert.False(t, services.Terminal(err))
	})

	t.Run("ready checkpoint decodes", func(t *testing.T) {
		backend := testutil.NewFakeBackend()
		defer backend.Close()
		backend.Checkpoint = models.Checkpoint{
			Type:          models.CheckpointDomain,
			Payload:       "retail",
			Justification: "mentions customers",
			Phase:         models.PhaseConceptual,
		}

		cp, err := newClient(backend).GetActiveCheckpoint(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, models.CheckpointDomain, cp.Type)
		assert.Equal(t, "retail", cp.Payload)
		assert.Equal(t, models.PhaseConceptual, cp.Phase)
	})
}

func TestSaveCheckpointDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("sends the payload", func(t *testing.T) {
		backend := testutil.NewFakeBackend()
		defer backend.Close()

		err := newClient(backend).SaveCheckpointDraft(ctx, "job-1", models.CheckpointEntities,
			map[string]any{"entities": []any{"customer"}})
		require.NoError(t, err)

		typ, payload := backend.LastSaved()
		assert.Equal(t, models.CheckpointEntities, typ)
		assert.Equal(t, map[string]any{"entities": []any{"customer"}}, payload)
	})

	t.Run("validation failure carries field details", func(t *testing.T) {
		backend := testutil.NewFakeBackend()
		defer backend.Close()
		backend.SaveStatus = http.StatusUnprocessableEntity
		backend.SaveMessage = "entity name required"
		backend.SaveDetails = map[string][]string{"entities[0].name": {"must not be empty"}}

		err := newClient(backend).SaveCheckpointDraft(ctx, "job-1", models.CheckpointEntities, map[string]any{})
		var validation *services.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, "entity name required", validation.Message)
		assert.Equal(t, []string{"must not be empty"}, validation.Details["entities[0].name"])
	})
}

func TestAdvanceCheckpoint(t *testing.T) {
	ctx := context.Background()

	t.Run("success carries the next checkpoint", func(t *testing.T) {
		backend := testutil.NewFakeBackend()
		defer backend.Close()
		backend.AdvanceQueue = []testutil.AdvanceScript{{
			Result: models.AdvanceResult{
				Status:      models.AdvanceSuccess,
				Next:        models.CheckpointEntities,
				NextPayload: map[string]any{"entities": []any{"customer", "order"}},
			},
		}}

		result, err := newClient(backend).AdvanceCheckpoint(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, models.AdvanceSuccess, result.Status)
		assert.Equal(t, models.CheckpointEntities, result.Next)
		assert.NotNil(t, result.NextPayload)
	})

	t.Run("server failure maps to ServerError", func(t *testing.T) {
		backend := testutil.NewFakeBackend()
		defer backend.Close()
		backend.AdvanceQueue = []testutil.AdvanceScript{{
			HTTPStatus: http.StatusInternalServerError,
			Message:    "inference backend unavailable",
		}}

		_, err := newClient(backend).AdvanceCheckpoint(ctx, "job-1")
		var server *services.ServerError
		require.ErrorAs(t, err, &server)
		assert.Equal(t, http.StatusInternalServerError, server.StatusCode)
	})
}

func TestGetSuggestions(t *testing.T) {
	backend := testutil.NewFakeBackend()
	defer backend.Close()
	backend.Suggestions = models.Suggestions{
		Keywords:       []string{"inventory", "loyalty"},
		ExtractedItems: []string{"customer", "order"},
	}

	s, err := newClient(backend).GetSuggestions(context.Background(), "a store with customers and orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"inventory", "loyalty"}, s.Keywords)
	assert.Equal(t, []string{"customer", "order"}, s.ExtractedItems)
}

func TestTransportErrorsAreNotTerminal(t *testing.T) {
	client := services.NewHTTPPipelineClient("http://127.0.0.1:1", time.Second, nil)
	_, err := client.GetActiveCheckpoint(context.Background(), "job-1")
	require.Error(t, err)
	assert.False(t, services.Terminal(err))
}
