package orchestrator

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// instruments holds the orchestrator's counters. With no SDK installed
// the global meter provider is a no-op, so recording is always safe.
type instruments struct {
	advances     metric.Int64Counter
	rollbacks    metric.Int64Counter
	fetchRetries metric.Int64Counter
	ticks        metric.Int64Counter
}

func newInstruments() instruments {
	meter := otel.Meter("github.com/Aviroop07/NL2DATA-sub000/internal/orchestrator")

	advances, _ := meter.Int64Counter("pipeline.client.advances",
		metric.WithDescription("Advance requests issued"))
	rollbacks, _ := meter.Int64Counter("pipeline.client.rollbacks",
		metric.WithDescription("Optimistic advances rolled back"))
	fetchRetries, _ := meter.Int64Counter("pipeline.client.fetch_retries",
		metric.WithDescription("Checkpoint fetch retries while the server was still computing"))
	ticks, _ := meter.Int64Counter("pipeline.client.ticks",
		metric.WithDescription("Progress ticks folded into the status trail"))

	return instruments{
		advances:     advances,
		rollbacks:    rollbacks,
		fetchRetries: fetchRetries,
		ticks:        ticks,
	}
}
