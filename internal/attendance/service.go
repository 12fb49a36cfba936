package attendance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	"github.com/frahmantamala/attendance-management/internal/keylock"
)

const dateLayout = "2006-01-02"

const (
	ActionClockIn  = "clock_in"
	ActionClockOut = "clock_out"
)

// ClockResult reports which transition a clock action performed.
type ClockResult struct {
	Action string
	At     time.Time
}

// Calendar answers whether a civil date is a weekend, holiday or
// disaster-leave day.
type Calendar interface {
	IsNonWorkingDay(ctx context.Context, day string) (bool, error)
}

// Repository defines the data access methods for attendance rows
type Repository interface {
	GetByUserAndDate(ctx context.Context, userID, workDate string) (*attendanceDatamodel.Record, error)
	Create(ctx context.Context, record *attendanceDatamodel.Record) error
	UpdateFields(ctx context.Context, userID, workDate string, fields map[string]interface{}) error
	ListByUserBetween(ctx context.Context, userID, from, to string) ([]*attendanceDatamodel.Record, error)
	ListLeaveByUser(ctx context.Context, userID string) ([]*attendanceDatamodel.Record, error)
	FindPendingLeave(ctx context.Context, userID, workDate string) (*attendanceDatamodel.Record, error)
	ListAll(ctx context.Context) ([]*attendanceDatamodel.Record, error)
}

// Service drives the per-user per-day clock state machine:
// NoRecord -> ClockedIn -> ClockedOut, with OnLeave short-circuiting both
// transitions. All mutations run inside the per-(user,date) lock because
// the store has no transactional isolation.
type Service struct {
	repo     Repository
	calendar Calendar
	locker   keylock.Locker
	loc      *time.Location
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, calendar Calendar, locker keylock.Locker, loc *time.Location, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		calendar: calendar,
		locker:   locker,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Clock performs today's next clock transition for the user. "Now" is the
// organization's civil time: payroll depends on local day boundaries.
func (s *Service) Clock(ctx context.Context, userID, displayName string) (*ClockResult, error) {
	now := s.now().In(s.loc)
	today := now.Format(dateLayout)

	nonWorking, err := s.calendar.IsNonWorkingDay(ctx, today)
	if err != nil {
		s.logger.Error("calendar lookup failed", "error", err, "user_id", userID)
		return nil, err
	}
	if nonWorking {
		return nil, internal.ErrNonWorkingDay
	}

	var result *ClockResult
	err = s.locker.Do(ctx, userID+"/"+today, func(ctx context.Context) error {
		record, err := s.repo.GetByUserAndDate(ctx, userID, today)
		if err != nil && !errors.Is(err, internal.ErrRecordNotFound) {
			return err
		}
		if record == nil {
			newRecord := &attendanceDatamodel.Record{
				UserID:      userID,
				DisplayName: displayName,
				WorkDate:    today,
				ClockIn:     &now,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.repo.Create(ctx, newRecord); err != nil {
				s.logger.Error("failed to create attendance record", "error", err, "user_id", userID)
				return err
			}
			result = &ClockResult{Action: ActionClockIn, At: now}
			return nil
		}

		if record.OnLeave {
			return internal.ErrOnLeaveToday
		}

		if !record.ClockedIn() {
			if err := s.repo.UpdateFields(ctx, userID, today, map[string]interface{}{
				"clock_in":   now,
				"updated_at": now,
			}); err != nil {
				return err
			}
			result = &ClockResult{Action: ActionClockIn, At: now}
			return nil
		}

		if record.ClockedOut() {
			return internal.ErrAlreadyClockedOut
		}

		if err := s.repo.UpdateFields(ctx, userID, today, map[string]interface{}{
			"clock_out":  now,
			"updated_at": now,
		}); err != nil {
			return err
		}
		result = &ClockResult{Action: ActionClockOut, At: now}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("clock action recorded",
		"user_id", userID,
		"work_date", today,
		"action", result.Action)

	return result, nil
}

// OffSiteVisit upserts today's off-site note regardless of clock state.
// Last write wins; the note is a single cell, not an append log.
func (s *Service) OffSiteVisit(ctx context.Context, userID, displayName, note string) error {
	now := s.now().In(s.loc)
	today := now.Format(dateLayout)

	if note == "" {
		note = "off-site"
	}

	err := s.locker.Do(ctx, userID+"/"+today, func(ctx context.Context) error {
		record, err := s.repo.GetByUserAndDate(ctx, userID, today)
		if err != nil && !errors.Is(err, internal.ErrRecordNotFound) {
			return err
		}
		if record == nil {
			newRecord := &attendanceDatamodel.Record{
				UserID:      userID,
				DisplayName: displayName,
				WorkDate:    today,
				OffSiteNote: note,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			return s.repo.Create(ctx, newRecord)
		}

		return s.repo.UpdateFields(ctx, userID, today, map[string]interface{}{
			"off_site_note": note,
			"updated_at":    now,
		})
	})
	if err != nil {
		s.logger.Error("failed to record off-site visit", "error", err, "user_id", userID)
		return err
	}

	s.logger.Info("off-site visit recorded", "user_id", userID, "work_date", today)

	return nil
}
