package jobs

import (
	"context"
	"log/slog"
	"time"

	"lastmile/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// PushPruneSchedule runs the pruning once a day at 03:00.
const PushPruneSchedule = "0 0 3 * * *"

// PushPruneJob removes push subscriptions that have not been used within
// the configured TTL.
type PushPruneJob struct {
	handler commands.PrunePushSubscriptionsCommandHandler
	ttl     time.Duration
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewPushPruneJob creates the job. ttl is how long an unused device is kept.
func NewPushPruneJob(
	handler commands.PrunePushSubscriptionsCommandHandler,
	ttl time.Duration,
	logger *slog.Logger,
) *PushPruneJob {
	return &PushPruneJob{
		handler: handler,
		ttl:     ttl,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "push_prune_job"),
	}
}

// Start schedules the job.
func (j *PushPruneJob) Start() error {
	if _, err := j.cron.AddFunc(PushPruneSchedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Push prune job started", "schedule", PushPruneSchedule, "ttl", j.ttl)
	return nil
}

// Stop stops the job and waits for a running prune to finish.
func (j *PushPruneJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Push prune job stopped")
}

func (j *PushPruneJob) run() {
	ctx := context.Background()

	cmd, err := commands.NewPrunePushSubscriptionsCommand(j.ttl)
	if err != nil {
		j.logger.ErrorContext(ctx, "Push prune job misconfigured", "error", err)
		return
	}

	removed, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Push prune job failed", "error", err)
		return
	}
	if removed > 0 {
		j.logger.InfoContext(ctx, "Pruned stale push subscriptions", "removed", removed)
	}
}
