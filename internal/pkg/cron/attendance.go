package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance"
	"github.com/campusgeo/attendance-backend-go/internal/pkg/clock"
)

// LocationRefresher reloads cached locations from the backing store.
type LocationRefresher interface {
	Refresh(ctx context.Context) error
}

type AttendanceJobs struct {
	store     attendance.AttendanceStore
	locations LocationRefresher
	policy    attendance.TimeWindowPolicy
	clock     clock.Clock

	locationRefresh time.Duration
	openSessions    time.Duration
}

// NewAttendanceJobs wires the background jobs. locations may be nil when no
// cache is configured.
func NewAttendanceJobs(
	store attendance.AttendanceStore,
	locations LocationRefresher,
	policy attendance.TimeWindowPolicy,
	clk clock.Clock,
	locationRefresh time.Duration,
	openSessions time.Duration,
) *AttendanceJobs {
	if clk == nil {
		clk = clock.New()
	}
	return &AttendanceJobs{
		store:           store,
		locations:       locations,
		policy:          policy,
		clock:           clk,
		locationRefresh: locationRefresh,
		openSessions:    openSessions,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	if j.locations != nil {
		scheduler.AddJob("refresh_location_cache", j.locationRefresh, j.RefreshLocationCache)
	}
	scheduler.AddJob("report_open_sessions", j.openSessions, j.ReportOpenSessions)
}

// RefreshLocationCache reloads the authorized locations into the cache.
func (j *AttendanceJobs) RefreshLocationCache(ctx context.Context) error {
	if err := j.locations.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh location cache: %w", err)
	}
	return nil
}

// ReportOpenSessions logs records from earlier days that were checked in but
// never checked out. Those records stay CHECKED_IN; nothing is auto-closed.
func (j *AttendanceJobs) ReportOpenSessions(ctx context.Context) error {
	today := j.policy.CivilDate(j.clock.Now())

	count, err := j.store.CountOpenSessions(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to count open sessions: %w", err)
	}

	if count == 0 {
		slog.Debug("Cron: No open sessions from previous days")
		return nil
	}

	slog.Warn("Cron: Open sessions from previous days",
		"count", count,
		"before", attendance.DateKey(today),
	)
	return nil
}
