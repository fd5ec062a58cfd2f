package workers

import (
	"collab-lab/contract"
	"collab-lab/domain/event"
	"context"
	"log/slog"
)

// TelemetryWorker drains the coordinator's event mirror and fans each
// event to the permanent observer sinks (projections, archival).
//
// Best-effort fan-out with no delivery, ordering, or retry guarantees:
// observers exist for side effects, never for core session logic.
type TelemetryWorker struct {
	log    *slog.Logger
	events <-chan event.Event
	sinks  []contract.EventSink
}

func NewTelemetryWorker(log *slog.Logger, events <-chan event.Event,
	sinks ...contract.EventSink) *TelemetryWorker {
	return &TelemetryWorker{log: log, events: events, sinks: sinks}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.events:
			w.fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping telemetry fanout")
			return nil
		}
	}
}

// fanout delivers one event to every observer, isolating failures.
func (w *TelemetryWorker) fanout(ctx context.Context, e event.Event) {
	for _, sink := range w.sinks {
		if err := sink.Consume(ctx, e); err != nil {
			w.log.Warn("Observer sink failed", "event", e.Tag(), "error", err)
		}
	}
}
