// Package suggest runs the low-stakes polling loop that proposes
// description improvements while the user is still drafting.
package suggest

import (
	"context"
	"time"

	"github.com/Aviroop07/NL2DATA-sub000/internal/services"
	"github.com/Aviroop07/NL2DATA-sub000/pkg/models"
)

// Logger defines the logging interface compatible with the application
// logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Poller periodically requests suggestions for the current description.
// It is inert while a job is active, and it only issues a request when
// the description actually changed since the last one.
type Poller struct {
	client   services.SuggestionClient
	logger   Logger
	interval time.Duration

	// jobActive gates the loop; true pauses polling.
	jobActive func() bool
	// source yields the current description text.
	source func() string
	// deliver receives fresh suggestions, or nil when stale ones must be
	// cleared because processing began.
	deliver func(*models.Suggestions)
}

// New creates a Poller. All three callbacks are required.
func New(client services.SuggestionClient, logger Logger, interval time.Duration,
	jobActive func() bool, source func() string, deliver func(*models.Suggestions)) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		client:    client,
		logger:    logger,
		interval:  interval,
		jobActive: jobActive,
		source:    source,
		deliver:   deliver,
	}
}

// Run polls until the context is canceled. It blocks; run it in its own
// goroutine.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var lastIssued string
	wasActive := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if p.jobActive() {
			if !wasActive {
				// Processing began: clear stale suggestions once.
				p.deliver(nil)
				lastIssued = ""
			}
			wasActive = true
			continue
		}
		wasActive = false

		description := p.source()
		if description == "" || description == lastIssued {
			continue
		}
		lastIssued = description

		suggestions, err := p.client.GetSuggestions(ctx, description)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Debug("suggestion request failed", "error", err)
			continue
		}
		p.deliver(suggestions)
	}
}
