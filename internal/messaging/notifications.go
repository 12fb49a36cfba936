package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/attendance-management/internal/core/events"
)

// RegisterNotificationHandlers wires the event bus to outbound pushes:
// leave requests fan out to the admins with the exact review syntax, review
// outcomes go back to the requester.
func RegisterNotificationHandlers(bus *events.EventBus, messenger Messenger, logger *slog.Logger) {
	bus.Subscribe(events.EventTypeLeaveRequested, func(ctx context.Context, event events.Event) error {
		req, ok := event.(*events.LeaveRequestedEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s", event.EventType())
		}

		text := fmt.Sprintf("[leave review] %s requests %s\ndates: %s\nreason: %s\nreply with \"Approve %s %s\" or \"NeedsDiscussion %s %s\"",
			req.DisplayName,
			req.LeaveType,
			strings.Join(req.Dates, ", "),
			req.Reason,
			req.DisplayName, req.Dates[0],
			req.DisplayName, req.Dates[0])

		for _, adminID := range req.AdminUserIDs {
			if err := messenger.Push(ctx, adminID, text); err != nil {
				logger.Error("failed to notify admin about leave request",
					"error", err, "admin_user_id", adminID)
			}
		}
		return nil
	})

	bus.Subscribe(events.EventTypeLeaveReviewed, func(ctx context.Context, event events.Event) error {
		reviewed, ok := event.(*events.LeaveReviewedEvent)
		if !ok {
			return fmt.Errorf("unexpected event payload for %s", event.EventType())
		}

		text := fmt.Sprintf("Your leave for %s is now: %s", reviewed.Date, reviewed.Status)
		if err := messenger.Push(ctx, reviewed.UserID, text); err != nil {
			logger.Error("failed to notify user about leave review",
				"error", err, "user_id", reviewed.UserID)
		}
		return nil
	})
}
