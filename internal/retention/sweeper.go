package retention

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gatewarden/gatewarden/internal/clock"
	"github.com/gatewarden/gatewarden/internal/logger"
	"github.com/gatewarden/gatewarden/internal/services"
)

// Sweeper purges security logs past the retention horizon on a daily cron
// schedule.
type Sweeper struct {
	audit         *services.AuditService
	retentionDays int
	clock         clock.Clock
	cron          *cron.Cron
}

// NewSweeper creates a sweeper keeping retentionDays of logs.
func NewSweeper(audit *services.AuditService, retentionDays int, clk clock.Clock) *Sweeper {
	if clk == nil {
		clk = clock.NewReal()
	}
	return &Sweeper{
		audit:         audit,
		retentionDays: retentionDays,
		clock:         clk,
		cron:          cron.New(),
	}
}

// Start schedules the nightly sweep. No-op when retention is disabled.
func (s *Sweeper) Start() error {
	if s.retentionDays <= 0 {
		return nil
	}
	if _, err := s.cron.AddFunc("@daily", func() { s.Sweep() }); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// Sweep deletes logs older than the retention window once.
func (s *Sweeper) Sweep() {
	cutoff := s.clock.Now().AddDate(0, 0, -s.retentionDays)
	purged, err := s.audit.PurgeOlderThan(cutoff)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"error": err.Error(),
		}).Error("security log retention sweep failed")
		return
	}
	if purged > 0 {
		logger.WithFields(map[string]interface{}{
			"purged": purged,
			"cutoff": cutoff.Format(time.RFC3339),
		}).Info("purged expired security logs")
	}
}
