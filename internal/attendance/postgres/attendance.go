package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	"gorm.io/gorm"
)

// AttendanceRepository implements the attendance.Repository interface using GORM
type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) attendance.Repository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) GetByUserAndDate(ctx context.Context, userID, workDate string) (*attendanceDatamodel.Record, error) {
	var record attendanceDatamodel.Record
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND work_date = ?", userID, workDate).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *AttendanceRepository) Create(ctx context.Context, record *attendanceDatamodel.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *AttendanceRepository) UpdateFields(ctx context.Context, userID, workDate string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&attendanceDatamodel.Record{}).
		Where("user_id = ? AND work_date = ?", userID, workDate).
		Updates(fields).Error
}

func (r *AttendanceRepository) ListByUserBetween(ctx context.Context, userID, from, to string) ([]*attendanceDatamodel.Record, error) {
	var records []*attendanceDatamodel.Record
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND work_date >= ? AND work_date <= ?", userID, from, to).
		Order("work_date ASC").
		Find(&records).Error
	return records, err
}

func (r *AttendanceRepository) ListLeaveByUser(ctx context.Context, userID string) ([]*attendanceDatamodel.Record, error) {
	var records []*attendanceDatamodel.Record
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND on_leave = ?", userID, true).
		Order("work_date ASC").
		Find(&records).Error
	return records, err
}

func (r *AttendanceRepository) FindPendingLeave(ctx context.Context, userID, workDate string) (*attendanceDatamodel.Record, error) {
	var record attendanceDatamodel.Record
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND work_date = ? AND on_leave = ? AND leave_status = ?",
			userID, workDate, true, attendanceDatamodel.LeaveStatusPending).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *AttendanceRepository) ListAll(ctx context.Context) ([]*attendanceDatamodel.Record, error) {
	var records []*attendanceDatamodel.Record
	err := r.db.WithContext(ctx).
		Order("work_date ASC, user_id ASC").
		Find(&records).Error
	return records, err
}
