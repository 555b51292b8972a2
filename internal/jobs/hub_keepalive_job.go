package jobs

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// KeepaliveSchedule pings every WebSocket session twice a minute, below the
// idle timeout of common proxies.
const KeepaliveSchedule = "@every 30s"

type pinger interface {
	Ping() int
}

// HubKeepaliveJob keeps idle real-time sessions open and drops dead ones.
type HubKeepaliveJob struct {
	hub    pinger
	cron   *cron.Cron
	logger *slog.Logger
}

func NewHubKeepaliveJob(hub pinger, logger *slog.Logger) *HubKeepaliveJob {
	return &HubKeepaliveJob{
		hub:    hub,
		cron:   cron.New(),
		logger: logger.With("component", "hub_keepalive_job"),
	}
}

func (j *HubKeepaliveJob) Start() error {
	if _, err := j.cron.AddFunc(KeepaliveSchedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Hub keepalive job started", "schedule", KeepaliveSchedule)
	return nil
}

func (j *HubKeepaliveJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Hub keepalive job stopped")
}

func (j *HubKeepaliveJob) run() {
	alive := j.hub.Ping()
	j.logger.Debug("Pinged real-time sessions", "alive", alive)
}
