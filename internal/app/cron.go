package app

import (
	"context"
	"time"

	"github.com/mx-space/metafields/internal/config"
	"github.com/mx-space/metafields/internal/modules/definitions"
	"github.com/mx-space/metafields/internal/modules/editor"
	pkgcron "github.com/mx-space/metafields/internal/pkg/cron"
	"go.uber.org/zap"
)

const sessionSweepInterval = time.Minute

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, editors *editor.Manager, defs *definitions.Service, cached bool, cfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        "evict_editor_sessions",
		Description: "Drop editor sessions idle longer than the session TTL",
		Interval:    sessionSweepInterval,
		Fn: func(ctx context.Context) error {
			editors.EvictIdle(cfg.Editor.SessionTTL)
			return nil
		},
	})

	if !cached {
		return
	}
	sched.Register(pkgcron.Job{
		Name:        "warm_definitions",
		Description: "Refresh the cached product metafield definitions",
		Interval:    cfg.Editor.DefinitionsTTL,
		Fn: func(ctx context.Context) error {
			list, err := defs.List(ctx, true)
			if err != nil {
				cronLogger.Warn("definition refresh failed", zap.Error(err))
				return err
			}
			cronLogger.Debug("definitions refreshed", zap.Int("count", len(list)))
			return nil
		},
	})
}
