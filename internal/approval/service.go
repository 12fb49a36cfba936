package approval

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/attendance"
	"github.com/frahmantamala/attendance-management/internal/bonus"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	bonusDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/bonus"
	staffDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/staff"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/internal/keylock"
)

// StaffDirectory resolves the display name an admin typed into a staff
// record. Names are matched exactly; no fuzzy lookup.
type StaffDirectory interface {
	GetByName(ctx context.Context, displayName string) (*staffDatamodel.Record, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// ReviewResult reports the outcome of a single-day leave review.
type ReviewResult struct {
	UserID      string
	DisplayName string
	Date        string
	Status      string
}

// Service executes admin review and bonus commands. The caller is
// responsible for checking that the issuer is an admin.
type Service struct {
	staff     StaffDirectory
	leaveRepo attendance.Repository
	bonusRepo bonus.Repository
	locker    keylock.Locker
	bus       Publisher
	logger    *slog.Logger
}

func NewService(staff StaffDirectory, leaveRepo attendance.Repository, bonusRepo bonus.Repository, locker keylock.Locker, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		staff:     staff,
		leaveRepo: leaveRepo,
		bonusRepo: bonusRepo,
		locker:    locker,
		bus:       bus,
		logger:    logger,
	}
}

// Review settles the pending leave row for one (name, date) pair. Rows
// already approved or flagged do not match again, so repeating a command
// reports no pending request instead of silently rewriting the status.
func (s *Service) Review(ctx context.Context, cmd *ReviewCommand) (*ReviewResult, error) {
	target, err := s.staff.GetByName(ctx, cmd.DisplayName)
	if err != nil {
		return nil, err
	}

	status := attendanceDatamodel.LeaveStatusApproved
	if cmd.Action == ActionNeedsDiscussion {
		status = attendanceDatamodel.LeaveStatusNeedsDiscussion
	}

	err = s.locker.Do(ctx, target.UserID+"/"+cmd.Date, func(ctx context.Context) error {
		_, err := s.leaveRepo.FindPendingLeave(ctx, target.UserID, cmd.Date)
		if errors.Is(err, internal.ErrRecordNotFound) {
			return internal.ErrNoPendingLeave
		}
		if err != nil {
			return err
		}

		return s.leaveRepo.UpdateFields(ctx, target.UserID, cmd.Date, map[string]interface{}{
			"leave_status": status,
			"updated_at":   time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.NewLeaveReviewedEvent(target.UserID, cmd.Date, status))

	s.logger.Info("leave request reviewed",
		"user_id", target.UserID,
		"work_date", cmd.Date,
		"status", status)

	return &ReviewResult{
		UserID:      target.UserID,
		DisplayName: target.DisplayName,
		Date:        cmd.Date,
		Status:      status,
	}, nil
}

// AddBonus records one bonus per (user, month). A second bonus for the
// same month is rejected; corrections go through a human, not an
// overwrite.
func (s *Service) AddBonus(ctx context.Context, cmd *BonusCommand) error {
	target, err := s.staff.GetByName(ctx, cmd.DisplayName)
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.locker.Do(ctx, target.UserID+"/"+cmd.YearMonth, func(ctx context.Context) error {
		_, err := s.bonusRepo.GetByUserAndMonth(ctx, target.UserID, cmd.YearMonth)
		if err == nil {
			return internal.ErrDuplicateBonus
		}
		if !errors.Is(err, internal.ErrRecordNotFound) {
			return err
		}

		return s.bonusRepo.Create(ctx, &bonusDatamodel.Record{
			UserID:      target.UserID,
			DisplayName: target.DisplayName,
			YearMonth:   cmd.YearMonth,
			Amount:      cmd.Amount,
			Note:        cmd.Note,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	})
	if err != nil {
		return err
	}

	s.bus.Publish(ctx, events.NewBonusAddedEvent(target.UserID, cmd.YearMonth, cmd.Amount))

	s.logger.Info("bonus recorded",
		"user_id", target.UserID,
		"year_month", cmd.YearMonth,
		"amount", cmd.Amount)

	return nil
}
