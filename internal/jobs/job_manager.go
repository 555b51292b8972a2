package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"lastmile/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	pushPruneJob    *PushPruneJob
	hubKeepaliveJob *HubKeepaliveJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	pruneHandler commands.PrunePushSubscriptionsCommandHandler,
	pushTTL time.Duration,
	hub pinger,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		pushPruneJob:    NewPushPruneJob(pruneHandler, pushTTL, logger),
		hubKeepaliveJob: NewHubKeepaliveJob(hub, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.pushPruneJob.Start(); err != nil {
		return fmt.Errorf("failed to start push prune job: %w", err)
	}

	if err := jm.hubKeepaliveJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.pushPruneJob.Stop()
		return fmt.Errorf("failed to start hub keepalive job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.hubKeepaliveJob.Stop()
	jm.pushPruneJob.Stop()
}
