package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Gauges reports live counts from the session manager.
type Gauges func() (participants, sessions int)

// StatsWorker periodically logs self process metrics (RSS, CPU, OS
// status) together with registry and session gauges.
type StatsWorker struct {
	log      *slog.Logger
	interval time.Duration
	gauges   Gauges
}

func NewStatsWorker(log *slog.Logger, interval time.Duration, gauges Gauges) *StatsWorker {
	return &StatsWorker{log: log, interval: interval, gauges: gauges}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info("Starting stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			participants, sessions := w.gauges()
			w.log.Info("Session manager stats",
				"participants", participants,
				"sessions", sessions,
				"rss_bytes", rss,
				"cpu_percent", cpu,
				"pid_status", status,
			)
		}
	}
}

// selfStats retrieves technical metrics for the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}

	return memInfo.RSS, cpuPercent, status, nil
}
