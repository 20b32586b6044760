// Package jobs runs the periodic maintenance tasks on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wellness-ops-backend/config"
	"wellness-ops-backend/services"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

type OTPPurger interface {
	Purge(ctx context.Context) (int64, error)
}

type MonthCloser interface {
	ClosePreviousMonth(ctx context.Context) (*services.ClosingReport, error)
}

// Scheduler owns the cron runner. Jobs never overlap with themselves.
type Scheduler struct {
	cron    *cron.Cron
	otp     OTPPurger
	closing MonthCloser
	log     *slog.Logger
}

// ValidateSpec checks a five-field cron expression.
func ValidateSpec(spec string) error {
	if _, err := cronParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return nil
}

func New(cfg config.SchedulerConfig, otp OTPPurger, closing MonthCloser, log *slog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron: cron.New(
			cron.WithParser(cronParser),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		otp:     otp,
		closing: closing,
		log:     log,
	}

	if _, err := s.cron.AddFunc(cfg.OTPPurgeSpec, s.PurgeOTPs); err != nil {
		return nil, fmt.Errorf("schedule otp purge: %w", err)
	}
	if _, err := s.cron.AddFunc(cfg.MonthlyClosingSpec, s.CloseMonth); err != nil {
		return nil, fmt.Errorf("schedule monthly closing: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}

// PurgeOTPs removes used and expired OTP records.
func (s *Scheduler) PurgeOTPs() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.otp.Purge(ctx)
	if err != nil {
		s.log.Error("otp purge failed", "error", err)
		return
	}
	if n > 0 {
		s.log.Info("otp records purged", "count", n)
	}
}

// CloseMonth runs the monthly closing for the previous month.
func (s *Scheduler) CloseMonth() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	report, err := s.closing.ClosePreviousMonth(ctx)
	if err != nil {
		s.log.Error("monthly closing failed", "error", err)
		return
	}
	s.log.Info("monthly closing completed",
		"month", report.Month,
		"year", report.Year,
		"closings", len(report.Closings),
		"incentives", len(report.Incentives),
		"skipped", report.Skipped,
	)
}
