package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/pest-advisory/internal/advisor"
)

// Warmer refreshes cached weather for a set of districts.
type Warmer interface {
	Warm(ctx context.Context, districts []string)
}

// Scanner runs a scan over every stored farmer.
type Scanner interface {
	ScanAll(ctx context.Context) (advisor.Summary, error)
}

// Scheduler periodically refreshes district weather and rescans farmers.
type Scheduler struct {
	scheduler *gocron.Scheduler
	weather   Warmer
	scanner   Scanner
	districts []string
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler. weather may be nil.
func New(districts []string, interval time.Duration, weather Warmer, scanner Scanner, logger *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		weather:   weather,
		scanner:   scanner,
		districts: districts,
		interval:  interval,
		timeout:   30 * time.Minute,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run starts immediately.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 360
	}

	_, err := s.scheduler.Every(minutes).Minutes().SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce warms the weather cache, then scans every farmer.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()
	s.logger.Info("scheduler: running scan job", zap.Int("districts", len(s.districts)))

	if s.weather != nil && len(s.districts) > 0 {
		s.weather.Warm(ctx, s.districts)
	}

	sum, err := s.scanner.ScanAll(ctx)
	if err != nil {
		s.logger.Error("scheduler: scan job incomplete", zap.Error(err))
	}
	s.logger.Info("scheduler: completed scan job",
		zap.Int("farmers", sum.Farmers),
		zap.Int("scanned", sum.Scanned),
		zap.Int("failed", sum.Failed),
		zap.Int("alerts", sum.Alerts),
		zap.Duration("took", time.Since(start)))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
