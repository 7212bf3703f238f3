// Package jobs provides scheduled background tasks for the order service.
//
// Jobs are cron based (github.com/robfig/cron/v3) and managed through
// JobManager:
//
//	jobManager := jobs.NewJobManager(
//		jobs.NewDispatcherStatsJob(dispatcher, cfg.StatsSchedule, logger),
//	)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// # Available Jobs
//
// DispatcherStatsJob logs the inbound dispatcher counters accumulated since its
// previous run. A run that saw dead letters or settlement failures logs at
// warn level.
package jobs
