package sink

import (
	"collab-lab/domain/event"
	"context"
	"log/slog"
)

// ChannelSink bridges the coordinator to a transport through a bounded
// channel. The transport side drains Events and writes them to the
// remote peer however it sees fit.
type ChannelSink struct {
	Events chan event.Event
	log    *slog.Logger
}

func NewChannelSink(bufferSize int, log *slog.Logger) *ChannelSink {
	return &ChannelSink{
		Events: make(chan event.Event, bufferSize),
		log:    log,
	}
}

// Consume is called by the router. Non-blocking: when the buffer is
// full the event is dropped rather than stalling the broadcast, which
// keeps one slow consumer from affecting the rest of the session.
func (s *ChannelSink) Consume(ctx context.Context, e event.Event) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		s.log.Debug("Backpressure, event dropped", "event", e.Tag())
		return nil
	}
}
