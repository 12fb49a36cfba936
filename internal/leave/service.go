package leave

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	staffDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/staff"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/internal/keylock"
)

// AdminDirectory lists the admin users that must be notified about new
// leave requests.
type AdminDirectory interface {
	Admins(ctx context.Context) ([]*staffDatamodel.Record, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Day is one leave row as reported to the requester.
type Day struct {
	Date     string
	TypeNote string
	Status   string
}

// RequestResult carries the dates that survived the non-working-day filter.
type RequestResult struct {
	Dates []string
}

// Service expands, filters and registers leave requests, one independently
// approvable attendance row per surviving day.
type Service struct {
	repo     attendance.Repository
	calendar attendance.Calendar
	admins   AdminDirectory
	locker   keylock.Locker
	bus      Publisher
	logger   *slog.Logger
}

func NewService(repo attendance.Repository, calendar attendance.Calendar, admins AdminDirectory, locker keylock.Locker, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		calendar: calendar,
		admins:   admins,
		locker:   locker,
		bus:      bus,
		logger:   logger,
	}
}

// Request registers a leave request. Every surviving date becomes a pending
// attendance row; leave takes precedence over same-day clock data. If the
// filter leaves nothing, the request fails and nothing is written.
func (s *Service) Request(ctx context.Context, requester *staffDatamodel.Record, entries []DateEntry, leaveType, reason string) (*RequestResult, error) {
	var valid []DateEntry
	for _, entry := range entries {
		nonWorking, err := s.calendar.IsNonWorkingDay(ctx, entry.Day)
		if err != nil {
			s.logger.Error("calendar lookup failed", "error", err, "day", entry.Day)
			return nil, err
		}
		if !nonWorking {
			valid = append(valid, entry)
		}
	}

	if len(valid) == 0 {
		return nil, internal.ErrAllNonWorkingDays
	}

	now := time.Now()
	dates := make([]string, 0, len(valid))
	for _, entry := range valid {
		description := reason
		if entry.Annotation != "" {
			description = reason + " " + entry.Annotation
		}

		err := s.locker.Do(ctx, requester.UserID+"/"+entry.Day, func(ctx context.Context) error {
			existing, err := s.repo.GetByUserAndDate(ctx, requester.UserID, entry.Day)
			if err != nil && !errors.Is(err, internal.ErrRecordNotFound) {
				return err
			}
			if existing == nil {
				return s.repo.Create(ctx, &attendanceDatamodel.Record{
					UserID:           requester.UserID,
					DisplayName:      requester.DisplayName,
					WorkDate:         entry.Day,
					OnLeave:          true,
					LeaveTypeNote:    leaveType,
					LeaveStatus:      attendanceDatamodel.LeaveStatusPending,
					LeaveDescription: description,
					CreatedAt:        now,
					UpdatedAt:        now,
				})
			}

			return s.repo.UpdateFields(ctx, requester.UserID, entry.Day, map[string]interface{}{
				"on_leave":          true,
				"leave_type_note":   leaveType,
				"leave_status":      attendanceDatamodel.LeaveStatusPending,
				"leave_description": description,
				"updated_at":        now,
			})
		})
		if err != nil {
			s.logger.Error("failed to write leave day", "error", err, "user_id", requester.UserID, "day", entry.Day)
			return nil, err
		}
		dates = append(dates, entry.Day)
	}

	adminIDs := s.adminUserIDs(ctx)
	s.bus.Publish(ctx, events.NewLeaveRequestedEvent(
		requester.UserID,
		requester.DisplayName,
		leaveType,
		dates,
		reason,
		adminIDs,
	))

	s.logger.Info("leave request registered",
		"user_id", requester.UserID,
		"leave_type", leaveType,
		"days", len(dates))

	return &RequestResult{Dates: dates}, nil
}

// ListLeave returns every leave day for the user, sorted by date for
// deterministic output.
func (s *Service) ListLeave(ctx context.Context, userID string) ([]Day, error) {
	records, err := s.repo.ListLeaveByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list leave records", "error", err, "user_id", userID)
		return nil, err
	}

	days := make([]Day, 0, len(records))
	for _, record := range records {
		days = append(days, Day{
			Date:     record.WorkDate,
			TypeNote: record.LeaveTypeNote,
			Status:   record.LeaveStatus,
		})
	}
	return days, nil
}

func (s *Service) adminUserIDs(ctx context.Context) []string {
	admins, err := s.admins.Admins(ctx)
	if err != nil {
		s.logger.Error("failed to resolve admins for notification", "error", err)
		return nil
	}
	ids := make([]string, 0, len(admins))
	for _, admin := range admins {
		ids = append(ids, admin.UserID)
	}
	return ids
}
