package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aviroop07/NL2DATA-sub000/internal/logging"
	"github.com/Aviroop07/NL2DATA-sub000/internal/services"
	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

// fakeClient is a scripted PipelineClient.
type fakeClient struct {
	mu           sync.Mutex
	startJobFn   func(description string) (*models.Job, error)
	getActiveFn  func(jobID string) (*models.Checkpoint, error)
	saveDraftFn  func(jobID string, typ models.CheckpointType, payload any) error
	advanceFn    func(jobID string) (*models.AdvanceResult, error)
	fetchCalls   int
	saveCalls    int
	advanceCalls int
}

func (f *fakeClient) StartJob(ctx context.Context, description string) (*models.Job, error) {
	if f.startJobFn == nil {
		return &models.Job{ID: "job-1", Description: description}, nil
	}
	return f.startJobFn(description)
}

func (f *fakeClient) GetActiveCheckpoint(ctx context.Context, jobID string) (*models.Checkpoint, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	return f.getActiveFn(jobID)
}

func (f *fakeClient) SaveCheckpointDraft(ctx context.Context, jobID string, typ models.CheckpointType, payload any) error {
	f.mu.Lock()
	f.saveCalls++
	f.mu.Unlock()
	if f.saveDraftFn == nil {
		return nil
	}
	return f.saveDraftFn(jobID, typ, payload)
}

func (f *fakeClient) AdvanceCheckpoint(ctx context.Context, jobID string) (*models.AdvanceResult, error) {
	f.mu.Lock()
	f.advanceCalls++
	f.mu.Unlock()
	return f.advanceFn(jobID)
}

func (f *fakeClient) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

func (f *fakeClient) advanceCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.advanceCalls
}

func newTestOrchestrator(client services.PipelineClient, maxAttempts int) *Orchestrator {
	return New(client, logging.NewSilentLogger(), Options{
		FetchBackoff:     func(int) time.Duration { return 0 },
		FetchMaxAttempts: maxAttempts,
	})
}

func domainCheckpoint() *models.Checkpoint {
	return &models.Checkpoint{
		Type:          models.CheckpointDomain,
		Payload:       "retail",
		Justification: "the description mentions customers and orders",
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path with pending retries", func(t *testing.T) {
		pendingLeft := 2
		client := &fakeClient{
			getActiveFn: func(jobID string) (*models.Checkpoint, error) {
				if pendingLeft > 0 {
					pendingLeft--
					return nil, services.ErrPending
				}
				return domainCheckpoint(), nil
			},
		}
		o := newTestOrchestrator(client, 10)

		job, err := o.Submit(ctx, "a store with customers and orders")
		require.NoError(t, err)
		assert.Equal(t, "job-1", job.ID)
		assert.Equal(t, StateReviewing, o.State())

		active := o.Active()
		require.NotNil(t, active)
		assert.Equal(t, models.CheckpointDomain, active.Type)
		assert.Equal(t, "retail", active.Payload)
		assert.False(t, o.HasChanges())
		assert.Equal(t, 3, client.fetchCount())
	})

	t.Run("submission failure returns to idle and keeps description", func(t *testing.T) {
		client := &fakeClient{
			startJobFn: func(description string) (*models.Job, error) {
				return nil, &services.InvalidInputError{Message: "too short"}
			},
		}
		o := newTestOrchestrator(client, 10)

		_, err := o.Submit(ctx, "shop")
		require.Error(t, err)
		var invalid *services.InvalidInputError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, StateIdle, o.State())
		assert.Equal(t, "shop", o.Description())
	})

	t.Run("fetch retries terminate fatally after exactly max attempts", func(t *testing.T) {
		client := &fakeClient{
			getActiveFn: func(jobID string) (*models.Checkpoint, error) {
				return nil, services.ErrPending
			},
		}
		o := newTestOrchestrator(client, 4)

		_, err := o.Submit(ctx, "a store with customers and orders")
		require.ErrorIs(t, err, ErrFetchExhausted)
		assert.Equal(t, StateFailed, o.State())
		assert.Equal(t, 4, client.fetchCount())
	})

	t.Run("terminal fetch error does not retry", func(t *testing.T) {
		client := &fakeClient{
			getActiveFn: func(jobID string) (*models.Checkpoint, error) {
				return nil, &services.ServerError{StatusCode: 500, Message: "boom"}
			},
		}
		o := newTestOrchestrator(client, 10)

		_, err := o.Submit(ctx, "a store with customers and orders")
		require.Error(t, err)
		assert.Equal(t, 1, client.fetchCount())
		assert.Equal(t, StateFailed, o.State())
	})
}

func TestSaveDraft(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T, client *fakeClient) *Orchestrator {
		t.Helper()
		if client.getActiveFn == nil {
			client.getActiveFn = func(string) (*models.Checkpoint, error) {
				return domainCheckpoint(), nil
			}
		}
		o := newTestOrchestrator(client, 10)
		_, err := o.Submit(ctx, "a store with customers and orders")
		require.NoError(t, err)
		return o
	}

	t.Run("success moves the baseline", func(t *testing.T) {
		o := setup(t, &fakeClient{})

		o.SetWorking("e-commerce")
		assert.True(t, o.HasChanges())

		require.NoError(t, o.SaveDraft(ctx, models.CheckpointDomain, o.Working()))
		assert.False(t, o.HasChanges())
		assert.Equal(t, "e-commerce", o.Baseline())
		assert.Empty(t, o.Completed(), "ledger must not change on a plain save")
		active := o.Active()
		require.NotNil(t, active)
		assert.Equal(t, models.CheckpointDomain, active.Type)
	})

	t.Run("failure keeps baseline and working copy", func(t *testing.T) {
		client := &fakeClient{
			saveDraftFn: func(string, models.CheckpointType, any) error {
				return &services.ValidationError{Message: "bad", Details: map[string][]string{"name": {"required"}}}
			},
		}
		o := setup(t, client)

		o.SetWorking("e-commerce")
		err := o.SaveDraft(ctx, models.CheckpointDomain, o.Working())
		require.Error(t, err)
		var validation *services.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Equal(t, []string{"required"}, validation.Details["name"])

		assert.Equal(t, "retail", o.Baseline())
		assert.Equal(t, "e-commerce", o.Working())
		assert.True(t, o.HasChanges())
		assert.Equal(t, StateReviewing, o.State())
	})

	t.Run("completes-on-save type lands in the ledger idempotently", func(t *testing.T) {
		client := &fakeClient{
			getActiveFn: func(string) (*models.Checkpoint, error) {
				return &models.Checkpoint{
					Type:    models.CheckpointERDiagram,
					Payload: map[string]any{"nodes": []any{"customer"}},
				}, nil
			},
		}
		o := setup(t, client)

		require.NoError(t, o.SaveDraft(ctx, models.CheckpointERDiagram, o.Working()))
		require.Len(t, o.Completed(), 1)

		// A second save must not duplicate the entry.
		require.NoError(t, o.SaveDraft(ctx, models.CheckpointERDiagram, o.Working()))
		assert.Len(t, o.Completed(), 1)
	})

	t.Run("type mismatch is rejected", func(t *testing.T) {
		o := setup(t, &fakeClient{})
		err := o.SaveDraft(ctx, models.CheckpointEntities, "whatever")
		assert.ErrorIs(t, err, ErrCheckpointMismatch)
	})
}

func TestProceed(t *testing.T) {
	ctx := context.Background()

	submitDomain := func(t *testing.T, client *fakeClient) *Orchestrator {
		t.Helper()
		client.getActiveFn = func(string) (*models.Checkpoint, error) {
			return domainCheckpoint(), nil
		}
		o := newTestOrchestrator(client, 10)
		_, err := o.Submit(ctx, "a store with customers and orders")
		require.NoError(t, err)
		return o
	}

	t.Run("happy path installs the server-provided next checkpoint", func(t *testing.T) {
		client := &fakeClient{
			advanceFn: func(string) (*models.AdvanceResult, error) {
				return &models.AdvanceResult{
					Status:      models.AdvanceSuccess,
					Next:        models.CheckpointEntities,
					NextPayload: map[string]any{"entities": []any{"customer", "order"}},
				}, nil
			},
		}
		o := submitDomain(t, client)

		result, err := o.Proceed(ctx, models.CheckpointDomain, "retail")
		require.NoError(t, err)
		assert.Equal(t, models.CheckpointEntities, result.Next)

		completed := o.Completed()
		require.Len(t, completed, 1)
		assert.Equal(t, models.CheckpointDomain, completed[0].Type)
		assert.Equal(t, "retail", completed[0].Payload)

		active := o.Active()
		require.NotNil(t, active)
		assert.Equal(t, models.CheckpointEntities, active.Type)
		assert.Equal(t, StateReviewing, o.State())
		assert.False(t, o.HasChanges())
	})

	t.Run("advance rejection rolls back exactly", func(t *testing.T) {
		client := &fakeClient{
			advanceFn: func(string) (*models.AdvanceResult, error) {
				return &models.AdvanceResult{Status: models.AdvanceError, Message: "pipeline stalled"}, nil
			},
		}
		o := submitDomain(t, client)

		_, err := o.Proceed(ctx, models.CheckpointDomain, "retail")
		require.Error(t, err)
		var server *services.ServerError
		assert.ErrorAs(t, err, &server)

		assert.Empty(t, o.Completed(), "speculative ledger entry must be removed")
		active := o.Active()
		require.NotNil(t, active)
		assert.Equal(t, models.CheckpointDomain, active.Type)
		assert.Equal(t, "retail", active.Payload)
		assert.Equal(t, StateReviewing, o.State())
	})

	t.Run("transport failure rolls back too", func(t *testing.T) {
		client := &fakeClient{
			advanceFn: func(string) (*models.AdvanceResult, error) {
				return nil, errors.New("connection reset")
			},
		}
		o := submitDomain(t, client)

		_, err := o.Proceed(ctx, models.CheckpointDomain, "retail")
		require.Error(t, err)
		assert.Empty(t, o.Completed())
		require.NotNil(t, o.Active())
		assert.Equal(t, models.CheckpointDomain, o.Active().Type)
	})

	t.Run("rollback does not strip a completion recorded by the save", func(t *testing.T) {
		client := &fakeClient{
			advanceFn: func(string) (*models.AdvanceResult, error) {
				return nil, errors.New("connection reset")
			},
		}
		client.getActiveFn = func(string) (*models.Checkpoint, error) {
			return &models.Checkpoint{Type: models.CheckpointERDiagram, Payload: map[string]any{}}, nil
		}
		o := newTestOrchestrator(client, 10)
		_, err := o.Submit(ctx, "a store with customers and orders")
		require.NoError(t, err)

		_, err = o.Proceed(ctx, models.CheckpointERDiagram, map[string]any{"nodes": []any{}})
		require.Error(t, err)
		// The save itself completed the checkpoint server-side, so the
		// ledger entry survives the advance rollback.
		assert.Len(t, o.Completed(), 1)
	})

	t.Run("next complete finishes the pipeline", func(t *testing.T) {
		client := &fakeClient{
			advanceFn: func(string) (*models.AdvanceResult, error) {
				return &models.AdvanceResult{Status: models.AdvanceSuccess, Next: models.CheckpointComplete}, nil
			},
		}
		o := submitDomain(t, client)

		_, err := o.Proceed(ctx, models.CheckpointDomain, "retail")
		require.NoError(t, err)
		assert.Equal(t, StateComplete, o.State())
		assert.Nil(t, o.Active())
		assert.False(t, o.JobActive())
	})

	t.Run("concurrent proceed is rejected", func(t *testing.T) {
		release := make(chan struct{})
		client := &fakeClient{
			advanceFn: func(string) (*models.AdvanceResult, error) {
				<-release
				return &models.AdvanceResult{
					Status:      models.AdvanceSuccess,
					Next:        models.CheckpointEntities,
					NextPayload: map[string]any{},
				}, nil
			},
		}
		o := submitDomain(t, client)

		firstDone := make(chan error, 1)
		go func() {
			_, err := o.Proceed(ctx, models.CheckpointDomain, "retail")
			firstDone <- err
		}()

		require.Eventually(t, func() bool {
			return o.State() == StateAdvancing
		}, time.Second, time.Millisecond)

		_, err := o.Proceed(ctx, models.CheckpointDomain, "retail")
		assert.ErrorIs(t, err, ErrAdvanceInFlight)
		assert.Equal(t, 1, client.advanceCount())

		close(release)
		require.NoError(t, <-firstDone)
		require.Len(t, o.Completed(), 1)
	})
}

func TestMarkCompleted(t *testing.T) {
	o := newTestOrchestrator(&fakeClient{}, 10)

	assert.True(t, o.MarkCompleted(models.CheckpointDomain, "retail", nil))
	assert.False(t, o.MarkCompleted(models.CheckpointDomain, "wholesale", nil), "second append is a no-op")

	entry, ok := o.FindCompleted(models.CheckpointDomain)
	require.True(t, ok)
	assert.Equal(t, "retail", entry.Payload, "first payload wins")
}

func TestStaleRetryLoopCannotWriteNewJobState(t *testing.T) {
	ctx := context.Background()

	client := &fakeClient{
		getActiveFn: func(jobID string) (*models.Checkpoint, error) {
			return nil, services.ErrPending
		},
	}
	o := New(client, logging.NewSilentLogger(), Options{
		FetchBackoff:     func(int) time.Duration { return time.Millisecond },
		FetchMaxAttempts: 100000,
	})

	submitDone := make(chan error, 1)
	go func() {
		_, err := o.Submit(ctx, "a store with customers and orders")
		submitDone <- err
	}()

	require.Eventually(t, func() bool { return client.fetchCount() > 0 }, time.Second, time.Millisecond)

	o.Reset()

	err := <-submitDone
	require.ErrorIs(t, err, ErrSuperseded)
	assert.Equal(t, StateIdle, o.State())
	assert.Nil(t, o.Job())
}

func TestApplyTickScoping(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{
		getActiveFn: func(string) (*models.Checkpoint, error) { return domainCheckpoint(), nil },
	}
	o := newTestOrchestrator(client, 10)

	// Ticks with no job are dropped.
	o.ApplyTick(models.StatusTick{JobID: "job-1", Message: "early"})
	assert.Empty(t, o.Trail())

	_, err := o.Submit(ctx, "a store with customers and orders")
	require.NoError(t, err)

	o.ApplyTick(models.StatusTick{JobID: "job-1", Seq: 1, Message: "extracting entities"})
	o.ApplyTick(models.StatusTick{JobID: "job-other", Seq: 2, Message: "stale"})

	trail := o.Trail()
	require.Len(t, trail, 1)
	assert.Equal(t, "extracting entities", trail[0].Message)

	tick, ok := o.LatestMessage()
	require.True(t, ok)
	assert.Equal(t, "extracting entities", tick.Message)
}

func TestUndo(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{
		getActiveFn: func(string) (*models.Checkpoint, error) { return domainCheckpoint(), nil },
		advanceFn: func(string) (*models.AdvanceResult, error) {
			return &models.AdvanceResult{
				Status:      models.AdvanceSuccess,
				Next:        models.CheckpointEntities,
				NextPayload: map[string]any{"entities": []any{"customer"}},
			}, nil
		},
	}
	o := newTestOrchestrator(client, 10)

	require.Error(t, o.Undo(), "nothing to undo before any commit point")

	_, err := o.Submit(ctx, "a store with customers and orders")
	require.NoError(t, err)

	_, err = o.Proceed(ctx, models.CheckpointDomain, "retail")
	require.NoError(t, err)
	require.Equal(t, 1, o.UndoDepth())

	o.SetUIField("panel_expanded", true)

	require.NoError(t, o.Undo())

	active := o.Active()
	require.NotNil(t, active)
	assert.Equal(t, models.CheckpointDomain, active.Type, "undo restores the pre-advance checkpoint")
	assert.Empty(t, o.Completed())

	v, ok := o.UIField("panel_expanded")
	require.True(t, ok, "pure-UI fields survive undo")
	assert.Equal(t, true, v)
}
