package crontab

import (
	"context"
	"fmt"
	"time"

	"github.com/mileusna/crontab"

	"pulse-server/internal/config"
	"pulse-server/internal/infrastructure/logger"
	"pulse-server/internal/infrastructure/memstore"
	"pulse-server/internal/infrastructure/ratelimit"
	"pulse-server/internal/utils/platformerrors"
)

const (
	defaultPruneInterval = 60 // in minutes
	defaultSweepInterval = 30 // in minutes

	rateWindowMaxAge     = 10 * time.Minute
	previewSessionMaxAge = 2 * time.Hour
)

type Crontab struct {
	ctab    *crontab.Crontab
	limiter *ratelimit.Limiter
	preview *memstore.Store
}

func NewCrontab(limiter *ratelimit.Limiter, preview *memstore.Store) *Crontab {
	return &Crontab{
		ctab:    crontab.New(),
		limiter: limiter,
		preview: preview,
	}
}

func (c *Crontab) Run(ctx context.Context) error {
	log := logger.GetLogger()
	cfg := config.GetGlobal()

	pruneInterval := defaultPruneInterval
	sweepInterval := defaultSweepInterval
	if cfg != nil {
		if cfg.RateBucketPruneIntervalMinutes > 0 {
			pruneInterval = cfg.RateBucketPruneIntervalMinutes
		}
		if cfg.PreviewSweepIntervalMinutes > 0 {
			sweepInterval = cfg.PreviewSweepIntervalMinutes
		}
	}

	if err := c.ctab.AddJob(cronExpr(pruneInterval), func() {
		removed := c.limiter.Prune(rateWindowMaxAge)
		if removed > 0 {
			log.Debug().Int("removed", removed).Msg("pruned stale rate windows")
		}
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add rate window prune job")
	}

	if err := c.ctab.AddJob(cronExpr(sweepInterval), func() {
		removed := c.preview.Sweep(previewSessionMaxAge)
		if removed > 0 {
			log.Info().Int("removed", removed).Msg("swept stale preview sessions")
		}
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add preview sweep job")
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

// cronExpr turns a minute interval into a cron schedule. Intervals of an
// hour or more run hourly, the minute field cannot express them.
func cronExpr(minutes int) string {
	if minutes >= 60 {
		return "0 * * * *"
	}
	return fmt.Sprintf("*/%d * * * *", minutes)
}
