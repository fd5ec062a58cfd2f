package workers

import (
	"collab-lab/domain/event"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu       sync.Mutex
	received []event.Event
}

func (s *recordingSink) Consume(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, e)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

type brokenSink struct{}

func (brokenSink) Consume(context.Context, event.Event) error {
	return fmt.Errorf("observer unavailable")
}

func TestTelemetryWorker_FansOutToAllSinks(t *testing.T) {
	req := require.New(t)

	events := make(chan event.Event, 4)
	first, second := &recordingSink{}, &recordingSink{}
	worker := NewTelemetryWorker(slog.Default(), events, first, second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	events <- event.UserJoined{Document: "doc1"}
	events <- event.DocumentUpdated{Document: "doc1", Content: "hello"}

	req.Eventually(func() bool {
		return first.count() == 2 && second.count() == 2
	}, time.Second, time.Millisecond)
}

func TestTelemetryWorker_FailingSinkDoesNotBlockOthers(t *testing.T) {
	req := require.New(t)

	events := make(chan event.Event, 1)
	healthy := &recordingSink{}
	worker := NewTelemetryWorker(slog.Default(), events, brokenSink{}, healthy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	events <- event.UserLeft{Document: "doc1", UserID: 7}

	req.Eventually(func() bool { return healthy.count() == 1 }, time.Second, time.Millisecond)
}

func TestTelemetryWorker_StopsOnContextDone(t *testing.T) {
	req := require.New(t)

	events := make(chan event.Event)
	worker := NewTelemetryWorker(slog.Default(), events)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("worker did not stop")
	}
}
