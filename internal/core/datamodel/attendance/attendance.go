package attendance

import (
	"time"
)

// Leave status lifecycle for a single day's leave request.
const (
	LeaveStatusPending         = "pending"
	LeaveStatusApproved        = "approved"
	LeaveStatusNeedsDiscussion = "needs_discussion"
)

// Record is one row per (user, civil date). The day is the natural key:
// the first clock-in, leave day or off-site note creates the row, later
// events for the same key update it in place.
type Record struct {
	ID               int64      `json:"id" gorm:"primaryKey"`
	UserID           string     `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:idx_user_work_date"`
	DisplayName      string     `json:"display_name" gorm:"column:display_name"`
	WorkDate         string     `json:"work_date" gorm:"column:work_date;not null;uniqueIndex:idx_user_work_date"`
	ClockIn          *time.Time `json:"clock_in,omitempty" gorm:"column:clock_in"`
	ClockOut         *time.Time `json:"clock_out,omitempty" gorm:"column:clock_out"`
	OnLeave          bool       `json:"on_leave" gorm:"column:on_leave;default:false"`
	LeaveTypeNote    string     `json:"leave_type_note" gorm:"column:leave_type_note"`
	LeaveStatus      string     `json:"leave_status" gorm:"column:leave_status"`
	LeaveDescription string     `json:"leave_description" gorm:"column:leave_description"`
	OffSiteNote      string     `json:"off_site_note" gorm:"column:off_site_note"`
	CreatedAt        time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (Record) TableName() string {
	return "attendance_records"
}

func (r *Record) ClockedIn() bool {
	return r.ClockIn != nil
}

func (r *Record) ClockedOut() bool {
	return r.ClockOut != nil
}

// WorkedSpan returns the clocked interval, or false when the day has no
// complete clock pair or is a leave day.
func (r *Record) WorkedSpan() (start, end time.Time, ok bool) {
	if r.OnLeave || r.ClockIn == nil || r.ClockOut == nil {
		return time.Time{}, time.Time{}, false
	}
	return *r.ClockIn, *r.ClockOut, true
}
