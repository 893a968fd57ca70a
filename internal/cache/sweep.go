package cache

import (
	"context"
	"time"

	"github.com/bobmcallan/moverwatch/internal/common"
)

// SweepJob removes expired cache entries. It is registered with the app scheduler.
type SweepJob struct {
	cache   *Cache
	logger  *common.Logger
	timeout time.Duration
}

// NewSweepJob creates a new expired-entry sweep job
func NewSweepJob(cache *Cache, logger *common.Logger) *SweepJob {
	return &SweepJob{
		cache:   cache,
		logger:  logger.WithComponent("cache_sweep"),
		timeout: time.Minute,
	}
}

// Run executes one sweep
func (j *SweepJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	removed := j.cache.ClearExpired(ctx)
	if removed > 0 {
		j.logger.Info().
			Int("removed", removed).
			Dur("elapsed", time.Since(start)).
			Msg("Cache sweep completed")
	}
	return nil
}

// Name returns the job name for scheduling and logging
func (j *SweepJob) Name() string {
	return "cache_sweep"
}
