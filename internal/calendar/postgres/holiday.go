package postgres

import (
	"context"

	"github.com/frahmantamala/attendance-management/internal/calendar"
	holidayDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/holiday"
	"gorm.io/gorm"
)

// HolidayRepository implements the calendar.Repository interface using GORM
type HolidayRepository struct {
	db *gorm.DB
}

func NewHolidayRepository(db *gorm.DB) calendar.Repository {
	return &HolidayRepository{db: db}
}

func (r *HolidayRepository) ExistingDays(ctx context.Context) ([]string, error) {
	var days []string
	err := r.db.WithContext(ctx).
		Model(&holidayDatamodel.Date{}).
		Order("day ASC").
		Pluck("day", &days).Error
	return days, err
}

func (r *HolidayRepository) Append(ctx context.Context, dates []*holidayDatamodel.Date) error {
	if len(dates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(dates).Error
}
