package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bobmcallan/moverwatch/internal/common"
	"github.com/bobmcallan/moverwatch/internal/interfaces"
)

// Job is a unit of background work run on a cron schedule
type Job interface {
	Run() error
	Name() string
}

// Scheduler runs background jobs on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	logger *common.Logger
}

// NewScheduler creates a scheduler accepting standard five-field specs,
// an optional leading seconds field, and descriptors such as "@every 30m".
func NewScheduler(logger *common.Logger) *Scheduler {
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:   cron.New(cron.WithParser(parser)),
		logger: logger.WithComponent("scheduler"),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Scheduler stopped")
}

// AddJob registers job on schedule.
// Schedule examples:
//   - "*/5 * * * *"   - every 5 minutes
//   - "@hourly"       - every hour
//   - "@every 30m"    - every 30 minutes
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.runJob(job)
	})
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")
	return nil
}

// RunNow executes a job immediately, outside its schedule
func (s *Scheduler) RunNow(job Job) error {
	s.logger.Info().Str("job", job.Name()).Msg("Running job immediately")
	return job.Run()
}

func (s *Scheduler) runJob(job Job) {
	s.logger.Debug().Str("job", job.Name()).Msg("Running job")

	if err := job.Run(); err != nil {
		s.logger.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
		return
	}
	s.logger.Debug().Str("job", job.Name()).Msg("Job completed")
}

// priceRefreshJob refreshes the snapshot prices of every wishlist stock
type priceRefreshJob struct {
	stockData interfaces.StockDataService
	logger    *common.Logger
	timeout   time.Duration
}

func newPriceRefreshJob(stockData interfaces.StockDataService, logger *common.Logger) *priceRefreshJob {
	return &priceRefreshJob{
		stockData: stockData,
		logger:    logger,
		timeout:   5 * time.Minute,
	}
}

func (j *priceRefreshJob) Name() string {
	return "wishlist_price_refresh"
}

func (j *priceRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	updated, err := j.stockData.RefreshWishlistPrices(ctx)
	if err != nil {
		return err
	}

	j.logger.Info().
		Int("updated", updated).
		Dur("elapsed", time.Since(start)).
		Msg("Price refresh: complete")
	return nil
}
