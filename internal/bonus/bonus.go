package bonus

import (
	"context"

	bonusDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/bonus"
)

// Repository defines the data access methods for bonus rows
type Repository interface {
	Create(ctx context.Context, record *bonusDatamodel.Record) error
	GetByUserAndMonth(ctx context.Context, userID, yearMonth string) (*bonusDatamodel.Record, error)
}
