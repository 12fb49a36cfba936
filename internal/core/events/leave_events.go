package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeLeaveRequested = "leave.requested"
	EventTypeLeaveReviewed  = "leave.reviewed"
	EventTypeBonusAdded     = "bonus.added"
)

// LeaveRequestedEvent is published when a leave request survives the
// non-working-day filter; subscribers notify every admin with the exact
// approval-command syntax.
type LeaveRequestedEvent struct {
	BaseEvent
	UserID       string   `json:"user_id"`
	DisplayName  string   `json:"display_name"`
	LeaveType    string   `json:"leave_type"`
	Dates        []string `json:"dates"`
	Reason       string   `json:"reason"`
	AdminUserIDs []string `json:"admin_user_ids"`
}

func NewLeaveRequestedEvent(userID, displayName, leaveType string, dates []string, reason string, adminUserIDs []string) *LeaveRequestedEvent {
	return &LeaveRequestedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLeaveRequested,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":      userID,
				"display_name": displayName,
				"leave_type":   leaveType,
				"dates":        dates,
				"reason":       reason,
			},
		},
		UserID:       userID,
		DisplayName:  displayName,
		LeaveType:    leaveType,
		Dates:        dates,
		Reason:       reason,
		AdminUserIDs: adminUserIDs,
	}
}

// LeaveReviewedEvent is published when an admin approves or flags a single
// pending leave day; subscribers push the outcome to the affected user.
type LeaveReviewedEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

func NewLeaveReviewedEvent(userID, date, status string) *LeaveReviewedEvent {
	return &LeaveReviewedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLeaveReviewed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"date":    date,
				"status":  status,
			},
		},
		UserID: userID,
		Date:   date,
		Status: status,
	}
}

type BonusAddedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	YearMonth string `json:"year_month"`
	Amount    int64  `json:"amount"`
}

func NewBonusAddedEvent(userID, yearMonth string, amount int64) *BonusAddedEvent {
	return &BonusAddedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBonusAdded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"year_month": yearMonth,
				"amount":     amount,
			},
		},
		UserID:    userID,
		YearMonth: yearMonth,
		Amount:    amount,
	}
}
