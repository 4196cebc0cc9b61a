// Package testutil provides a scripted fake pipeline backend for tests.
// It speaks the same wire shapes as the real server: the REST
// checkpoint-control endpoints plus the SSE event stream.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

// AdvanceScript describes one scripted answer for the advance endpoint.
type AdvanceScript struct {
	// HTTPStatus, when >= 400, answers with an error envelope instead of
	// the result.
	HTTPStatus int
	Message    string
	Result     models.AdvanceResult
}

// FakeBackend is a scripted pipeline server. Configure its fields before
// issuing requests; counters record what the client actually did.
type FakeBackend struct {
	Server *httptest.Server

	mu sync.Mutex

	// Scripted behavior.
	JobID            string
	StartJobStatus   int // 0 means success
	StartJobMessage  string
	PendingResponses int // 202s served before the checkpoint
	Checkpoint       models.Checkpoint
	CheckpointStatus int // 0 means follow PendingResponses/Checkpoint
	SaveStatus       int // 0 means success
	SaveMessage      string
	SaveDetails      map[string][]string
	AdvanceQueue     []AdvanceScript
	Suggestions      models.Suggestions

	// Event stream batches, one per accepted connection. Raw batches are
	// written verbatim and take precedence, for malformed-frame cases.
	EventBatches    [][]models.StatusTick
	RawEventBatches [][]string

	// Observations.
	FetchCalls    int
	SaveCalls     int
	AdvanceCalls  int
	SuggestCalls  int
	EventConns    int
	SavedType     models.CheckpointType
	SavedPayload  any
	SuggestedText string
}

// NewFakeBackend starts the fake server. Callers must Close it.
func NewFakeBackend() *FakeBackend {
	b := &FakeBackend{JobID: "job-1"}

	e := echo.New()
	e.HideBanner = true
	e.POST("/api/v1/jobs", b.startJob)
	e.GET("/api/v1/jobs/:id/checkpoint", b.getCheckpoint)
	e.PUT("/api/v1/jobs/:id/checkpoints/:type/draft", b.saveDraft)
	e.POST("/api/v1/jobs/:id/advance", b.advance)
	e.POST("/api/v1/suggestions", b.suggest)
	e.GET("/api/v1/jobs/:id/events", b.events)

	b.Server = httptest.NewServer(e)
	return b
}

// URL returns the backend base URL.
func (b *FakeBackend) URL() string {
	return b.Server.URL
}

// Close shuts the server down.
func (b *FakeBackend) Close() {
	b.Server.Close()
}

func errorEnvelope(c echo.Context, status int, message string, details map[string][]string) error {
	return c.JSON(status, map[string]any{"message": message, "details": details})
}

func (b *FakeBackend) startJob(c echo.Context) error {
	var body struct {
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return errorEnvelope(c, http.StatusBadRequest, "invalid request body", nil)
	}

	b.mu.Lock()
	status := b.StartJobStatus
	message := b.StartJobMessage
	jobID := b.JobID
	b.mu.Unlock()

	if status != 0 {
		return errorEnvelope(c, status, message, nil)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"id":          jobID,
		"description": body.Description,
	})
}

func (b *FakeBackend) getCheckpoint(c echo.Context) error {
	b.mu.Lock()
	b.FetchCalls++
	status := b.CheckpointStatus
	pending := b.PendingResponses > 0
	if pending {
		b.PendingResponses--
	}
	cp := b.Checkpoint
	b.mu.Unlock()

	if status != 0 {
		return errorEnvelope(c, status, "checkpoint fetch failed", nil)
	}
	if pending {
		return c.JSON(http.StatusAccepted, map[string]any{"status": "pending"})
	}
	return c.JSON(http.StatusOK, cp)
}

func (b *FakeBackend) saveDraft(c echo.Context) error {
	var body struct {
		Payload any `json:"payload"`
	}
	if err := c.Bind(&body); err != nil {
		return errorEnvelope(c, http.StatusBadRequest, "invalid request body", nil)
	}

	b.mu.Lock()
	b.SaveCalls++
	b.SavedType = models.CheckpointType(c.Param("type"))
	b.SavedPayload = body.Payload
	status := b.SaveStatus
	message := b.SaveMessage
	details := b.SaveDetails
	b.mu.Unlock()

	if status != 0 {
		return errorEnvelope(c, status, message, details)
	}
	return c.NoContent(http.StatusNoContent)
}

func (b *FakeBackend) advance(c echo.Context) error {
	b.mu.Lock()
	b.AdvanceCalls++
	var script AdvanceScript
	if len(b.AdvanceQueue) > 0 {
		script = b.AdvanceQueue[0]
		b.AdvanceQueue = b.AdvanceQueue[1:]
	} else {
		script = AdvanceScript{HTTPStatus: http.StatusInternalServerError, Message: "advance queue empty"}
	}
	b.mu.Unlock()

	if script.HTTPStatus >= 400 {
		return errorEnvelope(c, script.HTTPStatus, script.Message, nil)
	}
	return c.JSON(http.StatusOK, script.Result)
}

func (b *FakeBackend) suggest(c echo.Context) error {
	var body struct {
		Description string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return errorEnvelope(c, http.StatusBadRequest, "invalid request body", nil)
	}

	b.mu.Lock()
	b.SuggestCalls++
	b.SuggestedText = body.Description
	s := b.Suggestions
	b.mu.Unlock()

	return c.JSON(http.StatusOK, s)
}

func (b *FakeBackend) events(c echo.Context) error {
	b.mu.Lock()
	idx := b.EventConns
	b.EventConns++
	var raw []string
	switch {
	case idx < len(b.RawEventBatches):
		raw = b.RawEventBatches[idx]
	case idx < len(b.EventBatches):
		for _, tick := range b.EventBatches[idx] {
			data, _ := json.Marshal(tick)
			raw = append(raw, fmt.Sprintf("event: %s\ndata: %s\n\n", tick.Event, data))
		}
	}
	b.mu.Unlock()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.WriteHeader(http.StatusOK)
	for _, frame := range raw {
		if _, err := resp.Write([]byte(frame)); err != nil {
			return nil
		}
		resp.Flush()
	}
	return nil
}

// SuggestCount returns how many suggestion requests arrived.
func (b *FakeBackend) SuggestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.SuggestCalls
}

// FetchCount returns how many checkpoint fetches arrived.
func (b *FakeBackend) FetchCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.FetchCalls
}

// AdvanceCount returns how many advance requests arrived.
func (b *FakeBackend) AdvanceCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.AdvanceCalls
}

// LastSaved returns the checkpoint type and payload of the most recent
// draft save.
func (b *FakeBackend) LastSaved() (models.CheckpointType, any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.SavedType, b.SavedPayload
}

// EventConnCount returns how many event stream connections were accepted.
func (b *FakeBackend) EventConnCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.EventConns
}
