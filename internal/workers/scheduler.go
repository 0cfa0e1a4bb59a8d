package workers

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultStatsSchedule flushes the stats once a minute
const DefaultStatsSchedule = "@every 1m"

// Scheduler runs the periodic stats flush
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler registers stats.Flush on spec (standard cron syntax or @every)
func NewScheduler(spec string, stats *StatsAggregator, logger *zap.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultStatsSchedule
	}
	c := cron.New(cron.WithLocation(time.UTC))
	if _, err := c.AddFunc(spec, func() { stats.Flush() }); err != nil {
		return nil, fmt.Errorf("invalid stats schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins running scheduled jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("stats_scheduler_started", zap.Int("entries", len(s.cron.Entries())))
}

// Stop waits for a running flush to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("stats_scheduler_stopped")
}
