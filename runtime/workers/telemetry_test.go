package workers

import (
	"bytes"
	"chat-relay/runtime"
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingStats struct {
	calls atomic.Int32
}

func (s *countingStats) Stats() runtime.Stats {
	s.calls.Add(1)
	return runtime.Stats{Sessions: 3, Rooms: 1, Usernames: []string{"alice", "bob", "carol"}}
}

func TestTelemetryWorker_ReportsUntilCanceled(t *testing.T) {
	req := require.New(t)

	// Given a telemetry worker ticking fast
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	stats := &countingStats{}
	worker := NewTelemetryWorker(log, stats, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// When a few ticks elapsed
	req.Eventually(func() bool { return stats.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	// Then the worker returns cleanly and logged the counters
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("telemetry worker should stop on cancel")
	}
	req.Contains(buf.String(), "Relay stats")
	req.Contains(buf.String(), "sessions=3")
	req.Contains(buf.String(), "rooms=1")
	req.Contains(buf.String(), "Online users")
	req.Contains(buf.String(), "alice")
}
