package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/approval"
	"github.com/frahmantamala/attendance-management/internal/attendance"
	"github.com/frahmantamala/attendance-management/internal/classifier"
	staffDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/staff"
	"github.com/frahmantamala/attendance-management/internal/leave"
	"github.com/frahmantamala/attendance-management/internal/messaging"
	"github.com/frahmantamala/attendance-management/internal/payroll"
)

const helpText = `Welcome to the attendance assistant.
[register] send: register <your name>
[clock] send: clock in, clock out, or just "clock"
[leave] describe it, e.g. "sick leave 2025-07-01~2025-07-03 family matter"
[off-site] send "off-site <place>" to log a site visit
[salary] send "salary" for last month, "2025-07 salary" for a specific month
[my leave] send: myleave
Send "help" anytime to see this message.`

var greetingPattern = regexp.MustCompile(`(?i)^(hi|hello|help)$`)

// StaffService is the roster surface the router needs.
type StaffService interface {
	Register(ctx context.Context, userID, displayName string) (*staffDatamodel.Record, error)
	Get(ctx context.Context, userID string) (*staffDatamodel.Record, error)
	IsAdmin(ctx context.Context, userID string) bool
}

type AttendanceService interface {
	Clock(ctx context.Context, userID, displayName string) (*attendance.ClockResult, error)
	OffSiteVisit(ctx context.Context, userID, displayName, note string) error
}

type LeaveService interface {
	Request(ctx context.Context, requester *staffDatamodel.Record, entries []leave.DateEntry, leaveType, reason string) (*leave.RequestResult, error)
	ListLeave(ctx context.Context, userID string) ([]leave.Day, error)
}

type ApprovalService interface {
	Review(ctx context.Context, cmd *approval.ReviewCommand) (*approval.ReviewResult, error)
	AddBonus(ctx context.Context, cmd *approval.BonusCommand) error
}

type PayrollService interface {
	ComputeMonthly(ctx context.Context, userID string, year int, month time.Month) (*payroll.Statement, error)
}

type ReportService interface {
	TextPreview(ctx context.Context) (string, error)
}

// IntentRouter dispatches one inbound message: literal commands first, then
// the classified intent. It implements messaging.Dispatcher.
type IntentRouter struct {
	staff      StaffService
	attendance AttendanceService
	leave      LeaveService
	approval   ApprovalService
	payroll    PayrollService
	report     ReportService
	classifier classifier.Classifier
	logger     *slog.Logger
	now        func() time.Time
}

func New(staff StaffService, attendanceSvc AttendanceService, leaveSvc LeaveService, approvalSvc ApprovalService, payrollSvc PayrollService, reportSvc ReportService, cls classifier.Classifier, logger *slog.Logger) *IntentRouter {
	return &IntentRouter{
		staff:      staff,
		attendance: attendanceSvc,
		leave:      leaveSvc,
		approval:   approvalSvc,
		payroll:    payrollSvc,
		report:     reportSvc,
		classifier: cls,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the time source; used by tests.
func (rt *IntentRouter) WithClock(now func() time.Time) *IntentRouter {
	rt.now = now
	return rt
}

// Dispatch answers one message. ok=false means no reply at all.
func (rt *IntentRouter) Dispatch(ctx context.Context, event *messaging.InboundEvent) (string, bool) {
	msg := strings.TrimSpace(event.Text)
	if msg == "" {
		return "", false
	}

	// Registration and help work before any roster lookup, everything
	// else requires a known user.
	if strings.HasPrefix(msg, "register") {
		return rt.handleRegister(ctx, event.UserID, strings.TrimPrefix(msg, "register"))
	}
	if greetingPattern.MatchString(msg) {
		return helpText, true
	}

	user, err := rt.staff.Get(ctx, event.UserID)
	if err != nil || user == nil {
		return "You are not registered yet. Send: register <your name>", true
	}

	if rt.staff.IsAdmin(ctx, event.UserID) {
		if approval.IsReviewCommand(msg) {
			return rt.handleReview(ctx, msg)
		}
		if approval.IsBonusCommand(msg) {
			return rt.handleAddBonus(ctx, msg)
		}
		if msg == "export" {
			return rt.handleExport(ctx)
		}
	}

	if strings.HasPrefix(msg, "myleave") {
		return rt.handleMyLeave(ctx, user.UserID)
	}

	intent := rt.classifier.Classify(ctx, msg)
	switch intent.Kind {
	case classifier.KindClockAction:
		return rt.handleClock(ctx, user)
	case classifier.KindOffSiteVisit:
		return rt.handleOffSite(ctx, user, intent.Description)
	case classifier.KindLeaveRequest:
		return rt.handleLeaveRequest(ctx, user, msg, intent)
	case classifier.KindSalaryQuery:
		return rt.handleSalaryQuery(ctx, user.UserID, msg)
	case classifier.KindAddBonus:
		if rt.staff.IsAdmin(ctx, event.UserID) {
			return rt.handleAddBonus(ctx, msg)
		}
		return "", false
	case classifier.KindClarify:
		if intent.Clarification != "" {
			return intent.Clarification, true
		}
		return "", false
	default:
		return "", false
	}
}

func (rt *IntentRouter) handleRegister(ctx context.Context, userID, name string) (string, bool) {
	_, err := rt.staff.Register(ctx, userID, name)
	if err != nil {
		return rt.errorReply(err)
	}
	return "Registration complete. Please ask an admin to activate your profile.\n" + helpText, true
}

func (rt *IntentRouter) handleClock(ctx context.Context, user *staffDatamodel.Record) (string, bool) {
	result, err := rt.attendance.Clock(ctx, user.UserID, user.DisplayName)
	if err != nil {
		return rt.errorReply(err)
	}
	when := result.At.Format("15:04")
	if result.Action == attendance.ActionClockIn {
		return "Clocked in at " + when, true
	}
	return "Clocked out at " + when, true
}

func (rt *IntentRouter) handleOffSite(ctx context.Context, user *staffDatamodel.Record, note string) (string, bool) {
	if err := rt.attendance.OffSiteVisit(ctx, user.UserID, user.DisplayName, note); err != nil {
		return rt.errorReply(err)
	}
	return "Off-site visit recorded.", true
}

func (rt *IntentRouter) handleLeaveRequest(ctx context.Context, user *staffDatamodel.Record, msg string, intent classifier.Intent) (string, bool) {
	entries := leave.EntriesFromISO(intent.Dates)
	if len(entries) == 0 {
		entries = leave.ExpandDates(leave.ExtractDateExpr(msg))
	}
	if len(entries) == 0 {
		return "I could not find a date in your request. Try e.g. 2025-07-01 or 2025-07-01~2025-07-03.", true
	}

	result, err := rt.leave.Request(ctx, user, entries, intent.LeaveType, intent.Description)
	if err != nil {
		return rt.errorReply(err)
	}
	return fmt.Sprintf("Leave registered for %s, pending review.", strings.Join(result.Dates, ", ")), true
}

func (rt *IntentRouter) handleSalaryQuery(ctx context.Context, userID, msg string) (string, bool) {
	year, month := payroll.ResolveMonth(msg, rt.now())
	stmt, err := rt.payroll.ComputeMonthly(ctx, userID, year, month)
	if err != nil {
		return rt.errorReply(err)
	}
	return payroll.FormatStatement(stmt), true
}

func (rt *IntentRouter) handleReview(ctx context.Context, msg string) (string, bool) {
	cmd, err := approval.ParseReviewCommand(msg)
	if err != nil {
		return rt.errorReply(err)
	}
	result, err := rt.approval.Review(ctx, cmd)
	if err != nil {
		return rt.errorReply(err)
	}
	return fmt.Sprintf("Reviewed: %s %s is now %s.", result.DisplayName, result.Date, result.Status), true
}

func (rt *IntentRouter) handleAddBonus(ctx context.Context, msg string) (string, bool) {
	cmd, err := approval.ParseBonusCommand(msg)
	if err != nil {
		return rt.errorReply(err)
	}
	if err := rt.approval.AddBonus(ctx, cmd); err != nil {
		return rt.errorReply(err)
	}
	return "Bonus recorded.", true
}

func (rt *IntentRouter) handleMyLeave(ctx context.Context, userID string) (string, bool) {
	days, err := rt.leave.ListLeave(ctx, userID)
	if err != nil {
		return rt.errorReply(err)
	}
	if len(days) == 0 {
		return "No leave records found.", true
	}

	var b strings.Builder
	b.WriteString("Your leave records:\n")
	for i, day := range days {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: %s, status: %s", day.Date, day.TypeNote, day.Status)
	}
	return b.String(), true
}

func (rt *IntentRouter) handleExport(ctx context.Context) (string, bool) {
	preview, err := rt.report.TextPreview(ctx)
	if err != nil {
		return rt.errorReply(err)
	}
	return preview, true
}

// errorReply surfaces domain errors as chat text; anything unexpected is
// logged and answered with a generic apology so the conversation never
// dead-ends.
func (rt *IntentRouter) errorReply(err error) (string, bool) {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr.Message, true
	}
	rt.logger.Error("message handling failed", "error", err)
	return "Something went wrong, please try again later.", true
}
