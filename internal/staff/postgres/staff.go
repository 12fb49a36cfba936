package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/attendance-management/internal"
	staffDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/staff"
	"github.com/frahmantamala/attendance-management/internal/staff"
	"gorm.io/gorm"
)

// StaffRepository implements the staff.Repository interface using GORM
type StaffRepository struct {
	db *gorm.DB
}

func NewStaffRepository(db *gorm.DB) staff.Repository {
	return &StaffRepository{db: db}
}

func (r *StaffRepository) Create(ctx context.Context, record *staffDatamodel.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *StaffRepository) GetByUserID(ctx context.Context, userID string) (*staffDatamodel.Record, error) {
	var record staffDatamodel.Record
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *StaffRepository) GetByDisplayName(ctx context.Context, displayName string) (*staffDatamodel.Record, error) {
	var record staffDatamodel.Record
	err := r.db.WithContext(ctx).Where("display_name = ?", displayName).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *StaffRepository) GetAdmins(ctx context.Context) ([]*staffDatamodel.Record, error) {
	var records []*staffDatamodel.Record
	err := r.db.WithContext(ctx).Where("is_admin = ?", true).Find(&records).Error
	return records, err
}
