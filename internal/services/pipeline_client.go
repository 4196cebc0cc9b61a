package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

// HTTPPipelineClient is an HTTP implementation of the PipelineClient and
// SuggestionClient interfaces.
type HTTPPipelineClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPPipelineClient creates a new HTTPPipelineClient. If client is
// nil a default client with the given timeout is used; pass an
// oauth2-backed client to authenticate requests.
func NewHTTPPipelineClient(baseURL string, timeout time.Duration, client *http.Client) *HTTPPipelineClient {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPPipelineClient{baseURL: baseURL, client: client}
}

// EventsURL returns the SSE endpoint for a job's progress events.
func (c *HTTPPipelineClient) EventsURL(jobID string) string {
	return fmt.Sprintf("%s/api/v1/jobs/%s/events", c.baseURL, url.PathEscape(jobID))
}

// HTTPClient exposes the underlying client so the event stream can share
// its transport (and credentials).
func (c *HTTPPipelineClient) HTTPClient() *http.Client {
	return c.client
}

// StartJob submits a description and allocates a pipeline job.
func (c *HTTPPipelineClient) StartJob(ctx context.Context, description string) (*models.Job, error) {
	body := map[string]string{"description": description}
	var job models.Job
	if err := c.do(ctx, http.MethodPost, "/api/v1/jobs", body, &job); err != nil {
		return nil, err
	}
	if job.Description == "" {
		job.Description = description
	}
	return &job, nil
}

// GetActiveCheckpoint fetches the checkpoint awaiting review. A 202
// response means the server is still computing it and maps to ErrPending.
func (c *HTTPPipelineClient) GetActiveCheckpoint(ctx context.Context, jobID string) (*models.Checkpoint, error) {
	path := fmt.Sprintf("/api/v1/jobs/%s/checkpoint", url.PathEscape(jobID))
	var cp models.Checkpoint
	if err := c.do(ctx, http.MethodGet, path, nil, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

// SaveCheckpointDraft persists an edited payload for the given checkpoint.
func (c *HTTPPipelineClient) SaveCheckpointDraft(ctx context.Context, jobID string, typ models.CheckpointType, payload any) error {
	path := fmt.Sprintf("/api/v1/jobs/%s/checkpoints/%s/draft", url.PathEscape(jobID), url.PathEscape(string(typ)))
	body := map[string]any{"payload": payload}
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// AdvanceCheckpoint requests the transition to the next checkpoint. A
// client-generated request ID rides along so the server can deduplicate
// a retried advance.
func (c *HTTPPipelineClient) AdvanceCheckpoint(ctx context.Context, jobID string) (*models.AdvanceResult, error) {
	path := fmt.Sprintf("/api/v1/jobs/%s/advance", url.PathEscape(jobID))
	body := map[string]string{"request_id": uuid.New().String()}
	var result models.AdvanceResult
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSuggestions proposes improvements for a draft description.
func (c *HTTPPipelineClient) GetSuggestions(ctx context.Context, description string) (*models.Suggestions, error) {
	body := map[string]string{"description": description}
	var s models.Suggestions
	if err := c.do(ctx, http.MethodPost, "/api/v1/suggestions", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// do performs one JSON request/response round trip, mapping non-2xx
// responses into the error taxonomy.
func (c *HTTPPipelineClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		requestBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusAccepted:
		io.Copy(io.Discard, resp.Body)
		return ErrPending
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
		return nil
	default:
		return c.errorFromResponse(resp)
	}
}

// apiError is the server's JSON error envelope.
type apiError struct {
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

func (c *HTTPPipelineClient) errorFromResponse(resp *http.Response) error {
	var body apiError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &body); err != nil || body.Message == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		return &InvalidInputError{Message: body.Message}
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return &ValidationError{Message: body.Message, Details: body.Details}
	default:
		return &ServerError{StatusCode: resp.StatusCode, Message: body.Message}
	}
}
