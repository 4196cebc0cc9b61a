// Package stream maintains the job-scoped server-push connection that
// feeds progress ticks to the orchestrator. Ticks are best-effort
// telemetry: the stream reconnects on abnormal closure with linearly
// growing backoff and, once its attempt budget is spent, gives up
// silently without ever affecting the state machine.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Aviroop07/NL2DATA-sub000/internal/backoff"
	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

var errStreamClosed = fmt.Errorf("stream closed")

// Sink receives decoded progress ticks. The orchestrator implements it.
type Sink interface {
	ApplyTick(tick models.StatusTick)
}

// Logger defines the logging interface compatible with the application
// logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options tunes the reconnect behavior.
type Options struct {
	// ReconnectBase is multiplied by the attempt number for the delay.
	ReconnectBase time.Duration
	// ReconnectMax caps the delay.
	ReconnectMax time.Duration
	// MaxAttempts bounds consecutive failed connection attempts before
	// the stream gives up for good.
	MaxAttempts int
}

func (o Options) withDefaults() Options {
	if o.ReconnectBase <= 0 {
		o.ReconnectBase = time.Second
	}
	if o.ReconnectMax <= 0 {
		o.ReconnectMax = 15 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	return o
}

// Client opens event connections against the pipeline backend.
type Client struct {
	httpClient *http.Client
	logger     Logger
	opts       Options
}

// New creates a stream client sharing the API's HTTP client (and its
// credentials).
func New(httpClient *http.Client, logger Logger, opts Options) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, logger: logger, opts: opts.withDefaults()}
}

// Connection is one live event subscription. Close tears down the
// reader and any pending reconnect timer.
type Connection struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Close shuts the connection down and waits for the reader to exit.
func (c *Connection) Close() {
	c.cancel()
	<-c.done
}

// Done is closed once the reader goroutine has exited, whether by
// teardown or by giving up on reconnects.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Connect subscribes to a job's event stream and forwards ticks to the
// sink until the context is canceled, the connection is closed, or the
// reconnect budget is exhausted.
func (c *Client) Connect(ctx context.Context, url string, jobID string, sink Sink) *Connection {
	ctx, cancel := context.WithCancel(ctx)
	conn := &Connection{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(conn.done)
		c.run(ctx, url, jobID, sink)
	}()
	return conn
}

func (c *Client) run(ctx context.Context, url string, jobID string, sink Sink) {
	schedule := backoff.Linear(c.opts.ReconnectBase, c.opts.ReconnectMax)
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}
		delivered, err := c.consume(ctx, url, jobID, sink)
		if ctx.Err() != nil {
			return
		}
		if delivered {
			// A working connection resets the budget.
			attempt = 0
		}
		if err == nil {
			// The server closed the stream; reconnect in case it is still
			// emitting. The owner closes the connection once the job ends.
			err = errStreamClosed
		}

		if attempt >= c.opts.MaxAttempts {
			c.logger.Debug("event stream gave up", "job_id", jobID, "attempts", attempt)
			return
		}
		delay := schedule(attempt)
		attempt++
		c.logger.Debug("event stream reconnecting",
			"job_id", jobID, "attempt", attempt, "delay", delay, "error", err)
		if backoff.Sleep(ctx, delay) != nil {
			return
		}
	}
}

// consume opens one connection and pumps frames until it ends. It
// reports whether any tick was delivered, and the closure error (nil
// when the body ended without a read error).
func (c *Client) consume(ctx context.Context, url string, jobID string, sink Sink) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	delivered := false
	var event, data string

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if data != "" {
				if c.dispatch(event, data, jobID, sink) {
					delivered = true
				}
			}
			event, data = "", ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case strings.HasPrefix(line, ":"):
			// comment/keepalive
		}
	}
	if err := scanner.Err(); err != nil {
		return delivered, fmt.Errorf("stream read failed: %w", err)
	}
	return delivered, nil
}

// dispatch decodes one frame. Malformed frames are dropped individually;
// the connection stays up.
func (c *Client) dispatch(event, data string, jobID string, sink Sink) bool {
	var tick models.StatusTick
	if err := json.Unmarshal([]byte(data), &tick); err != nil {
		c.logger.Debug("dropping malformed event frame", "job_id", jobID, "error", err)
		return false
	}
	if event != "" {
		tick.Event = models.EventType(event)
	}
	if tick.Event == "" {
		tick.Event = models.EventStatusTick
	}
	if tick.JobID == "" {
		tick.JobID = jobID
	}
	sink.ApplyTick(tick)
	return true
}
