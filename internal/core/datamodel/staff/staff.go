package staff

import (
	"time"
)

// Employee types decide which payroll formula applies.
const (
	TypeSalaried      = "salaried"
	TypeSalariedBonus = "salaried_bonus"
	TypeHourly        = "hourly"
)

// Record is one row of the staff roster, keyed by the stable messaging
// platform user id. Created by self-registration; employee type, salary and
// admin flag are maintained by an out-of-band admin process.
type Record struct {
	ID                  int64      `json:"id" gorm:"primaryKey"`
	UserID              string     `json:"user_id" gorm:"column:user_id;uniqueIndex;not null"`
	DisplayName         string     `json:"display_name" gorm:"column:display_name;not null"`
	EmployeeType        string     `json:"employee_type" gorm:"column:employee_type"`
	BaseSalary          float64    `json:"base_salary" gorm:"column:base_salary"`
	OvertimeMultiplier  float64    `json:"overtime_multiplier" gorm:"column:overtime_multiplier"`
	InsuranceNote       string     `json:"insurance_note" gorm:"column:insurance_note"`
	EmploymentStartDate *time.Time `json:"employment_start_date,omitempty" gorm:"column:employment_start_date;type:date"`
	IsAdmin             bool       `json:"is_admin" gorm:"column:is_admin;default:false"`
	CreatedAt           time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Record) TableName() string {
	return "staff_records"
}

// YearsOfService counts whole years of employment as of the given moment.
func (r *Record) YearsOfService(at time.Time) int {
	if r.EmploymentStartDate == nil {
		return 0
	}
	years := at.Year() - r.EmploymentStartDate.Year()
	anniversary := r.EmploymentStartDate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
