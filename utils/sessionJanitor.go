package utils

import (
	"fmt"
	"time"

	"certdesk/logger"

	"github.com/robfig/cron/v3"
)

// WorkspaceEvicter drops workspaces idle for longer than the given duration
type WorkspaceEvicter interface {
	Evict(idle time.Duration) []string
}

// sweepWorkspaces runs one eviction pass
func sweepWorkspaces(log *logger.Logger, store WorkspaceEvicter, idle time.Duration) {
	evicted := store.Evict(idle)
	log.Debug("workspace sweep finished", "evicted", len(evicted), "idle", idle.String())
}

// StartSessionJanitor registers the idle workspace sweep on c
func StartSessionJanitor(c *cron.Cron, log *logger.Logger, store WorkspaceEvicter, schedule string, idle time.Duration) error {
	if _, err := c.AddFunc(schedule, func() {
		sweepWorkspaces(log, store, idle)
	}); err != nil {
		return fmt.Errorf("schedule workspace janitor %q: %w", schedule, err)
	}
	log.Info("workspace janitor started", "schedule", schedule, "idle", idle.String())
	return nil
}

// InitializeSessionJanitor builds, schedules and starts the janitor cron. Callers stop it on shutdown.
func InitializeSessionJanitor(log *logger.Logger, store WorkspaceEvicter, schedule string, idle time.Duration) (*cron.Cron, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("scheduler", "WORKSPACE-JANITOR")

	c := cron.New(cron.WithLocation(time.UTC))
	if err := StartSessionJanitor(c, log, store, schedule, idle); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
