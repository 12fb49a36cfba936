package holiday

import (
	"time"
)

const (
	KindNational = "national"
	KindDisaster = "disaster"
)

// Date marks one calendar day as non-working. The set is append-only;
// weekends are computed, not stored.
type Date struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Day       string    `json:"day" gorm:"column:day;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"column:name"`
	Kind      string    `json:"kind" gorm:"column:kind;default:national"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
}

func (Date) TableName() string {
	return "holiday_dates"
}
