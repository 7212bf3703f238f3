package jobs

import (
	"context"
	"log/slog"
	"sync"

	"orders/internal/core/application/inbound"

	"github.com/robfig/cron/v3"
)

// DefaultStatsSchedule logs dispatcher stats once a minute.
const DefaultStatsSchedule = "@every 1m"

// StatsSource reports cumulative dispatcher counters.
type StatsSource interface {
	Stats() inbound.DispatcherStats
}

// DispatcherStatsJob periodically logs what the inbound dispatcher did since
// the previous run together with the totals.
type DispatcherStatsJob struct {
	source   StatsSource
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu   sync.Mutex
	last inbound.DispatcherStats
}

// NewDispatcherStatsJob creates the job. schedule is a cron expression with a
// seconds field or a descriptor such as "@every 30s"; empty means
// DefaultStatsSchedule.
func NewDispatcherStatsJob(source StatsSource, schedule string, logger *slog.Logger) *DispatcherStatsJob {
	if schedule == "" {
		schedule = DefaultStatsSchedule
	}
	return &DispatcherStatsJob{
		source:   source,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "dispatcher_stats_job"),
	}
}

func (j *DispatcherStatsJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatcher stats job started", slog.String("schedule", j.schedule))
	return nil
}

// Stop stops the schedule and waits for a running report to finish.
func (j *DispatcherStatsJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Dispatcher stats job stopped")
}

func (j *DispatcherStatsJob) run() {
	current := j.source.Stats()

	j.mu.Lock()
	previous := j.last
	j.last = current
	j.mu.Unlock()

	level := slog.LevelInfo
	if current.DeadLettered > previous.DeadLettered || current.SettleFailures > previous.SettleFailures {
		level = slog.LevelWarn
	}

	j.logger.Log(context.Background(), level, "Dispatcher stats",
		slog.Int64("received", current.Received-previous.Received),
		slog.Int64("completed", current.Completed-previous.Completed),
		slog.Int64("abandoned", current.Abandoned-previous.Abandoned),
		slog.Int64("dead_lettered", current.DeadLettered-previous.DeadLettered),
		slog.Int64("unknown", current.Unknown-previous.Unknown),
		slog.Int64("settle_failures", current.SettleFailures-previous.SettleFailures),
		slog.Int64("received_total", current.Received),
	)
}
