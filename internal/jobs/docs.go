// Package jobs provides scheduled background tasks.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. PushPruneJob - Runs daily at 03:00 and removes push subscriptions unused for longer than the TTL
// 2. HubKeepaliveJob - Runs every 30 seconds and pings every WebSocket session, dropping dead ones
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(pruneHandler, pushTTL, hub, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Prune failures are logged and retried on the next run
// - Failed job starts will stop any already running jobs
package jobs
