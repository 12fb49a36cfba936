package calendar

import (
	"context"
	"log/slog"
	"sync"
	"time"

	holidayDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/holiday"
)

const dateLayout = "2006-01-02"

// Repository defines the data access methods for the holiday set
type Repository interface {
	ExistingDays(ctx context.Context) ([]string, error)
	Append(ctx context.Context, dates []*holidayDatamodel.Date) error
}

// Service answers "is this date a non-working day" from a snapshot of the
// stored holiday and disaster-leave sets plus the computed weekend, and
// keeps the holiday set synced from the external source.
type Service struct {
	repo            Repository
	source          Source
	refreshInterval time.Duration
	logger          *slog.Logger

	mu          sync.Mutex
	lastRefresh time.Time
}

func NewService(repo Repository, source Source, refreshInterval time.Duration, logger *slog.Logger) *Service {
	if refreshInterval <= 0 {
		refreshInterval = 24 * time.Hour
	}
	return &Service{
		repo:            repo,
		source:          source,
		refreshInterval: refreshInterval,
		logger:          logger,
	}
}

// IsNonWorkingDay reports whether the ISO date falls on a weekend or on a
// stored national-holiday or disaster-leave day. Pure read, no side effects.
func (s *Service) IsNonWorkingDay(ctx context.Context, day string) (bool, error) {
	d, err := time.Parse(dateLayout, day)
	if err != nil {
		return false, err
	}
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return true, nil
	}

	existing, err := s.repo.ExistingDays(ctx)
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if e == day {
			return true, nil
		}
	}
	return false, nil
}

// RefreshHolidays pulls the current and next calendar year from the source,
// keeps only entries flagged as holidays, drops dates already stored and
// appends the remainder. Repeated calls with identical upstream data leave
// the set unchanged. An unreachable source degrades to an empty fetch.
func (s *Service) RefreshHolidays(ctx context.Context) error {
	year := time.Now().Year()

	var fetched []SourceEntry
	for _, y := range []int{year, year + 1} {
		entries, err := s.source.FetchYear(ctx, y)
		if err != nil {
			s.logger.Warn("holiday source unavailable, treating year as empty",
				"year", y,
				"error", err)
			continue
		}
		fetched = append(fetched, entries...)
	}

	if len(fetched) == 0 {
		return nil
	}

	existing, err := s.repo.ExistingDays(ctx)
	if err != nil {
		s.logger.Error("failed to read existing holiday set", "error", err)
		return err
	}
	seen := make(map[string]struct{}, len(existing))
	for _, day := range existing {
		seen[day] = struct{}{}
	}

	var toAdd []*holidayDatamodel.Date
	for _, entry := range fetched {
		if !entry.IsHoliday {
			continue
		}
		day, ok := entry.NormalizedDate()
		if !ok {
			continue
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		toAdd = append(toAdd, &holidayDatamodel.Date{
			Day:       day,
			Name:      entry.Name,
			Kind:      holidayDatamodel.KindNational,
			CreatedAt: time.Now(),
		})
	}

	if len(toAdd) == 0 {
		return nil
	}

	if err := s.repo.Append(ctx, toAdd); err != nil {
		s.logger.Error("failed to append holidays", "error", err, "count", len(toAdd))
		return err
	}

	s.logger.Info("holiday set refreshed", "added", len(toAdd))

	return nil
}

// MaybeRefresh runs RefreshHolidays at most once per refresh interval. It is
// called opportunistically at the start of webhook handling; there is no
// background timer.
func (s *Service) MaybeRefresh(ctx context.Context) {
	s.mu.Lock()
	due := time.Since(s.lastRefresh) >= s.refreshInterval
	if due {
		s.lastRefresh = time.Now()
	}
	s.mu.Unlock()

	if !due {
		return
	}

	if err := s.RefreshHolidays(ctx); err != nil {
		s.logger.Warn("opportunistic holiday refresh failed", "error", err)
	}
}
