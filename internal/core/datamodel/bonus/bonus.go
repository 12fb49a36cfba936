package bonus

import (
	"time"
)

// Record is one bonus row per (user, year-month); duplicates are rejected,
// never merged.
type Record struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:idx_user_year_month"`
	DisplayName string    `json:"display_name" gorm:"column:display_name"`
	YearMonth   string    `json:"year_month" gorm:"column:year_month;not null;uniqueIndex:idx_user_year_month"`
	Amount      int64     `json:"amount" gorm:"column:amount;not null"`
	Note        string    `json:"note" gorm:"column:note"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Record) TableName() string {
	return "bonus_records"
}
