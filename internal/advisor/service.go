// Package advisor runs pest-risk scans for stored farmers.
package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/pest-advisory/internal/farm"
	"github.com/i474232898/pest-advisory/internal/notify"
	"github.com/i474232898/pest-advisory/internal/risk"
)

// Repository is the persistence the scan service needs.
type Repository interface {
	GetFarmer(ctx context.Context, uid string) (json.RawMessage, error)
	ListFarmerIDs(ctx context.Context) ([]string, error)
	ReportsForDistrict(ctx context.Context, district string, since time.Time) ([]risk.OfficialReport, error)
	SaveAlerts(ctx context.Context, alerts []risk.Alert) error
}

// WeatherSource returns the current weather of a district, or nil.
type WeatherSource interface {
	SnapshotForDistrict(ctx context.Context, district string) risk.WeatherSnapshot
}

// Config holds scan service settings.
type Config struct {
	Lookback    time.Duration // report window; default 14 days
	Workers     int           // concurrent scans in ScanAll; default 4
	ScanTimeout time.Duration // per-farmer deadline in ScanAll; default 30s
}

// ScanOptions controls the side effects of one scan.
type ScanOptions struct {
	Persist bool
	Notify  bool
}

// Summary reports the outcome of a ScanAll pass.
type Summary struct {
	Farmers int `json:"farmers"`
	Scanned int `json:"scanned"`
	Failed  int `json:"failed"`
	Alerts  int `json:"alerts"`
}

// Service loads farmer context, runs the risk engine and stores the result.
type Service struct {
	engine   *risk.Engine
	repo     Repository
	weather  WeatherSource
	notifier notify.Notifier
	cfg      Config
	now      func() time.Time
	newID    func() string
	logger   *zap.Logger
}

// NewService wires a scan service. weather and notifier may be nil.
func NewService(engine *risk.Engine, repo Repository, weather WeatherSource, notifier notify.Notifier, cfg Config, logger *zap.Logger) *Service {
	if cfg.Lookback <= 0 {
		cfg.Lookback = 14 * 24 * time.Hour
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.ScanTimeout <= 0 {
		cfg.ScanTimeout = 30 * time.Second
	}
	return &Service{
		engine:   engine,
		repo:     repo,
		weather:  weather,
		notifier: notifier,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		logger:   logger,
	}
}

// ScanFarmer runs one scan. It returns the repository's not-found error for
// unknown farmers and risk.ErrDistrictMissing for incomplete profiles.
func (s *Service) ScanFarmer(ctx context.Context, uid string, opts ScanOptions) ([]risk.Alert, error) {
	raw, err := s.repo.GetFarmer(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("load farmer %s: %w", uid, err)
	}
	farmer, err := farm.Decode(uid, raw)
	if err != nil {
		return nil, err
	}
	if farmer.District == "" {
		return nil, fmt.Errorf("farmer %s: %w", uid, risk.ErrDistrictMissing)
	}

	reports, err := s.repo.ReportsForDistrict(ctx, farmer.District, s.now().Add(-s.cfg.Lookback))
	if err != nil {
		// Reports only raise risk; scan without them rather than fail.
		s.logger.Warn("loading district reports failed", zap.String("district", farmer.District), zap.Error(err))
		reports = nil
	}

	var snapshot risk.WeatherSnapshot
	if s.weather != nil {
		snapshot = s.weather.SnapshotForDistrict(ctx, farmer.District)
	}

	alerts, err := s.engine.Scan(risk.ScanInput{Farmer: farmer, Reports: reports, Weather: snapshot})
	if err != nil {
		return nil, fmt.Errorf("scan farmer %s: %w", uid, err)
	}
	for i := range alerts {
		alerts[i].ID = s.newID()
	}

	s.logger.Info("farmer scanned",
		zap.String("uid", uid),
		zap.String("district", farmer.District),
		zap.Int("reports", len(reports)),
		zap.Bool("weather", snapshot != nil),
		zap.Int("alerts", len(alerts)))

	if opts.Persist {
		if err := s.repo.SaveAlerts(ctx, alerts); err != nil {
			return nil, fmt.Errorf("persist alerts for %s: %w", uid, err)
		}
	}
	if opts.Notify && s.notifier != nil {
		if err := s.notifier.Notify(ctx, farmer, alerts); err != nil {
			s.logger.Warn("alert notification failed", zap.String("uid", uid), zap.Error(err))
		}
	}
	return alerts, nil
}

// ScanAll scans every stored farmer with a bounded number of workers,
// persisting and notifying. Individual failures are logged and counted.
func (s *Service) ScanAll(ctx context.Context) (Summary, error) {
	ids, err := s.repo.ListFarmerIDs(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list farmers: %w", err)
	}

	var scanned, failed, created atomic.Int64
	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)

	for _, uid := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			scanCtx, cancel := context.WithTimeout(ctx, s.cfg.ScanTimeout)
			defer cancel()

			alerts, err := s.ScanFarmer(scanCtx, uid, ScanOptions{Persist: true, Notify: true})
			if err != nil {
				failed.Add(1)
				s.logger.Warn("scheduled scan failed", zap.String("uid", uid), zap.Error(err))
				return nil
			}
			scanned.Add(1)
			created.Add(int64(len(alerts)))
			return nil
		})
	}
	g.Wait()

	sum := Summary{
		Farmers: len(ids),
		Scanned: int(scanned.Load()),
		Failed:  int(failed.Load()),
		Alerts:  int(created.Load()),
	}
	return sum, ctx.Err()
}
