package staff

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	staffDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/staff"
)

// Repository defines the data access methods for the staff roster
type Repository interface {
	Create(ctx context.Context, record *staffDatamodel.Record) error
	GetByUserID(ctx context.Context, userID string) (*staffDatamodel.Record, error)
	GetByDisplayName(ctx context.Context, displayName string) (*staffDatamodel.Record, error)
	GetAdmins(ctx context.Context) ([]*staffDatamodel.Record, error)
}

// Service handles registration and roster lookups
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Register creates a staff record for a previously unknown messaging user.
// Employee type, salary and admin flag stay empty until an admin fills them
// in out of band.
func (s *Service) Register(ctx context.Context, userID, displayName string) (*staffDatamodel.Record, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, internal.NewValidationError("display name is required to register", internal.ErrCodeValidationFailed)
	}

	existing, err := s.repo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, internal.ErrRecordNotFound) {
		s.logger.Error("roster lookup failed during registration", "error", err, "user_id", userID)
		return nil, err
	}
	if existing != nil {
		s.logger.Info("registration rejected, user already registered", "user_id", userID)
		return nil, internal.NewConflictError("already registered", internal.ErrCodeAlreadyRegistered)
	}

	record := &staffDatamodel.Record{
		UserID:      userID,
		DisplayName: displayName,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to create staff record", "error", err, "user_id", userID)
		return nil, err
	}

	s.logger.Info("staff registered", "user_id", userID, "display_name", displayName)

	return record, nil
}

// Get resolves the acting user; a nil record with nil error never happens,
// unknown users yield ErrStaffNotFound. Store failures propagate as-is so
// a registered user is never told they are unknown during an outage.
func (s *Service) Get(ctx context.Context, userID string) (*staffDatamodel.Record, error) {
	record, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, internal.ErrRecordNotFound) {
		return nil, internal.ErrStaffNotFound.WithCause(err)
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetByName resolves a display name to its roster record. Exact match only,
// no fuzzy resolution.
func (s *Service) GetByName(ctx context.Context, displayName string) (*staffDatamodel.Record, error) {
	record, err := s.repo.GetByDisplayName(ctx, displayName)
	if errors.Is(err, internal.ErrRecordNotFound) {
		s.logger.Warn("staff name lookup found no match", "display_name", displayName)
		return nil, internal.ErrStaffNotFound.WithCause(err)
	}
	if err != nil {
		s.logger.Error("staff name lookup failed", "display_name", displayName, "error", err)
		return nil, err
	}
	return record, nil
}

func (s *Service) Admins(ctx context.Context) ([]*staffDatamodel.Record, error) {
	admins, err := s.repo.GetAdmins(ctx)
	if err != nil {
		s.logger.Error("failed to list admins", "error", err)
		return nil, err
	}
	return admins, nil
}

func (s *Service) IsAdmin(ctx context.Context, userID string) bool {
	record, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return false
	}
	return record.IsAdmin
}
