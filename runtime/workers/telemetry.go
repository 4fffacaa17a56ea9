package workers

import (
	"chat-relay/runtime"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// StatsProvider exposes the live counters of the relay.
type StatsProvider interface {
	Stats() runtime.Stats
}

// TelemetryWorker periodically logs relay counters together with the
// process own memory and CPU usage.
type TelemetryWorker struct {
	log      *slog.Logger
	stats    StatsProvider
	interval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, stats StatsProvider, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, stats: stats, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping telemetry worker")
			return nil
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *TelemetryWorker) report(p *process.Process) {
	stats := w.stats.Stats()
	rss, cpu, err := selfStats(p)
	if err != nil {
		w.log.Warn("Failed to collect self stats", "error", err)
	}
	w.log.Info("Relay stats",
		"sessions", stats.Sessions,
		"rooms", stats.Rooms,
		"rss_bytes", rss,
		"cpu_percent", cpu,
	)
	w.log.Debug("Online users", "usernames", stats.Usernames)
}

// selfStats retrieves resident memory and CPU usage for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return memInfo.RSS, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
