package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/bonus"
	bonusDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/bonus"
	"gorm.io/gorm"
)

// BonusRepository implements the bonus.Repository interface using GORM
type BonusRepository struct {
	db *gorm.DB
}

func NewBonusRepository(db *gorm.DB) bonus.Repository {
	return &BonusRepository{db: db}
}

func (r *BonusRepository) Create(ctx context.Context, record *bonusDatamodel.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *BonusRepository) GetByUserAndMonth(ctx context.Context, userID, yearMonth string) (*bonusDatamodel.Record, error) {
	var record bonusDatamodel.Record
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND year_month = ?", userID, yearMonth).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internal.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
