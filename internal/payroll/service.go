package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/attendance"
	"github.com/frahmantamala/attendance-management/internal/bonus"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	staffDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/staff"
)

const dateLayout = "2006-01-02"

// StaffDirectory resolves a user id to the roster record carrying the
// payroll parameters.
type StaffDirectory interface {
	Get(ctx context.Context, userID string) (*staffDatamodel.Record, error)
}

// Statement is one month's computed pay for one employee. Amounts stay in
// float64 until formatting; rounding happens only at presentation.
type Statement struct {
	DisplayName  string
	EmployeeType string
	Year         int
	Month        time.Month

	BaseSalary     float64
	OvertimeHours  float64
	OvertimePay    float64
	LeaveDays      int
	LeaveDeduction float64
	InsuranceNote  string

	SpecialLeaveEntitled  int
	SpecialLeaveUsed      int
	SpecialLeaveRemaining int

	Bonus     float64
	BonusNote string

	HourlyWage  float64
	WorkedHours float64

	Total float64
}

// Calculator computes monthly pay per the employee-type formulas from the
// month's attendance rows plus the bonus ledger.
type Calculator struct {
	staff     StaffDirectory
	repo      attendance.Repository
	bonusRepo bonus.Repository
	cfg       internal.PayrollConfig
	logger    *slog.Logger
	now       func() time.Time
}

func NewCalculator(staff StaffDirectory, repo attendance.Repository, bonusRepo bonus.Repository, cfg internal.PayrollConfig, logger *slog.Logger) *Calculator {
	return &Calculator{
		staff:     staff,
		repo:      repo,
		bonusRepo: bonusRepo,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source; used by tests.
func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	c.now = now
	return c
}

// ComputeMonthly builds the pay statement for one user and month. Unknown
// employee types get no formula guessed for them.
func (c *Calculator) ComputeMonthly(ctx context.Context, userID string, year int, month time.Month) (*Statement, error) {
	record, err := c.staff.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	daysInMonth := DaysInMonth(year, month)
	from := fmt.Sprintf("%04d-%02d-01", year, month)
	to := fmt.Sprintf("%04d-%02d-%02d", year, month, daysInMonth)

	rows, err := c.repo.ListByUserBetween(ctx, userID, from, to)
	if err != nil {
		c.logger.Error("failed to load attendance rows", "error", err, "user_id", userID)
		return nil, err
	}

	stmt := &Statement{
		DisplayName:  record.DisplayName,
		EmployeeType: record.EmployeeType,
		Year:         year,
		Month:        month,
	}

	switch record.EmployeeType {
	case staffDatamodel.TypeSalaried, staffDatamodel.TypeSalariedBonus:
		if err := c.computeSalaried(ctx, record, rows, daysInMonth, stmt); err != nil {
			return nil, err
		}
	case staffDatamodel.TypeHourly:
		c.computeHourly(record, rows, stmt)
	default:
		return nil, internal.ErrNoPayrollConfig
	}

	c.logger.Info("pay statement computed",
		"user_id", userID,
		"employee_type", record.EmployeeType,
		"year", year,
		"month", int(month))

	return stmt, nil
}

func (c *Calculator) computeSalaried(ctx context.Context, record *staffDatamodel.Record, rows []*attendanceDatamodel.Record, daysInMonth int, stmt *Statement) error {
	dailySalary := record.BaseSalary / float64(daysInMonth)

	leaveDays := 0
	overtimeHours := 0.0
	for _, row := range rows {
		if row.OnLeave {
			if !strings.Contains(row.LeaveTypeNote, c.cfg.SpecialLeaveLabel) {
				leaveDays++
			}
			continue
		}
		overtimeHours += c.overtimeHours(row)
	}

	stmt.BaseSalary = record.BaseSalary
	stmt.LeaveDays = leaveDays
	stmt.LeaveDeduction = dailySalary * float64(leaveDays)
	stmt.InsuranceNote = record.InsuranceNote

	// Overtime applies to the plain salaried type only; the bonus type
	// trades overtime pay for the monthly bonus row.
	if record.EmployeeType == staffDatamodel.TypeSalaried {
		stmt.OvertimeHours = overtimeHours
		stmt.OvertimePay = dailySalary / c.cfg.StandardShiftHours * overtimeHours * record.OvertimeMultiplier
	}

	entitled := c.cfg.EntitlementDays(record.YearsOfService(c.now()))
	used, err := c.specialLeaveUsed(ctx, record.UserID)
	if err != nil {
		return err
	}
	stmt.SpecialLeaveEntitled = entitled
	stmt.SpecialLeaveUsed = used
	stmt.SpecialLeaveRemaining = entitled - used

	if record.EmployeeType == staffDatamodel.TypeSalariedBonus {
		yearMonth := fmt.Sprintf("%04d-%02d", stmt.Year, stmt.Month)
		b, err := c.bonusRepo.GetByUserAndMonth(ctx, record.UserID, yearMonth)
		if err != nil && !errors.Is(err, internal.ErrRecordNotFound) {
			// A store failure must not silently zero the bonus line.
			return err
		}
		if b != nil {
			stmt.Bonus = float64(b.Amount)
			stmt.BonusNote = b.Note
		}
	}

	stmt.Total = stmt.BaseSalary + stmt.Bonus + stmt.OvertimePay - stmt.LeaveDeduction
	return nil
}

// overtimeHours applies the per-day overtime rule: the standard end is
// start plus the standard shift length, and overage past it accrues in
// half-hour steps once it reaches the threshold. The midday break affects
// the worked span, not the overtime clock.
func (c *Calculator) overtimeHours(row *attendanceDatamodel.Record) float64 {
	start, end, ok := row.WorkedSpan()
	if !ok {
		return 0
	}

	standardEnd := start.Add(time.Duration(c.cfg.StandardShiftHours * float64(time.Hour)))
	over := end.Sub(standardEnd)
	if over < c.cfg.OvertimeThreshold {
		return 0
	}
	return math.Floor(over.Minutes()/60*2) / 2
}

// WorkedHoursWithBreak measures the clocked span minus the midday break
// hour when the interval overlaps the configured window.
func (c *Calculator) WorkedHoursWithBreak(row *attendanceDatamodel.Record) float64 {
	start, end, ok := row.WorkedSpan()
	if !ok {
		return 0
	}
	hours := end.Sub(start).Hours()
	if c.overlapsBreak(row.WorkDate, start, end) {
		hours -= 1
	}
	return hours
}

func (c *Calculator) overlapsBreak(workDate string, start, end time.Time) bool {
	day, err := time.ParseInLocation(dateLayout, workDate, start.Location())
	if err != nil {
		return false
	}
	breakStart := atClock(day, c.cfg.BreakStart)
	breakEnd := atClock(day, c.cfg.BreakEnd)
	return start.Before(breakEnd) && end.After(breakStart)
}

func atClock(day time.Time, hm string) time.Time {
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location())
}

func (c *Calculator) computeHourly(record *staffDatamodel.Record, rows []*attendanceDatamodel.Record, stmt *Statement) {
	totalMinutes := 0.0
	leaveDays := 0
	for _, row := range rows {
		if row.OnLeave {
			leaveDays++
			continue
		}
		start, end, ok := row.WorkedSpan()
		if !ok {
			continue
		}
		minutes := end.Sub(start).Minutes()
		if minutes >= 301 {
			minutes -= 60 // unpaid meal break on long shifts
		}
		if minutes > 0 {
			totalMinutes += minutes
		}
	}

	stmt.HourlyWage = record.BaseSalary
	stmt.WorkedHours = totalMinutes / 60
	stmt.LeaveDays = leaveDays
	stmt.Total = stmt.HourlyWage * stmt.WorkedHours
}

// specialLeaveUsed counts this calendar year's leave days carrying the
// special-leave label, regardless of the statement month.
func (c *Calculator) specialLeaveUsed(ctx context.Context, userID string) (int, error) {
	year := c.now().Year()
	from := fmt.Sprintf("%04d-01-01", year)
	to := fmt.Sprintf("%04d-12-31", year)

	rows, err := c.repo.ListByUserBetween(ctx, userID, from, to)
	if err != nil {
		return 0, err
	}

	used := 0
	for _, row := range rows {
		if row.OnLeave && strings.Contains(row.LeaveTypeNote, c.cfg.SpecialLeaveLabel) {
			used++
		}
	}
	return used, nil
}

// FormatStatement renders the statement as the chat reply. Whole-unit
// rounding happens here and only here.
func FormatStatement(stmt *Statement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s pay statement for %04d-%02d\n", stmt.DisplayName, stmt.Year, stmt.Month)

	if stmt.EmployeeType == staffDatamodel.TypeHourly {
		fmt.Fprintf(&b, "hourly wage: %.0f\n", stmt.HourlyWage)
		fmt.Fprintf(&b, "total hours: %.2f\n", stmt.WorkedHours)
		fmt.Fprintf(&b, "leave days: %d\n", stmt.LeaveDays)
		fmt.Fprintf(&b, "monthly pay: %.0f x %.2f = %.0f", stmt.HourlyWage, stmt.WorkedHours, stmt.Total)
		return b.String()
	}

	fmt.Fprintf(&b, "base salary: %.0f\n", stmt.BaseSalary)
	if stmt.EmployeeType == staffDatamodel.TypeSalaried {
		fmt.Fprintf(&b, "overtime: %.1fh, pay %.0f\n", stmt.OvertimeHours, stmt.OvertimePay)
	}
	if stmt.InsuranceNote != "" {
		fmt.Fprintf(&b, "insurance: %s (company paid)\n", stmt.InsuranceNote)
	}
	fmt.Fprintf(&b, "special leave: %d days, used %d, remaining %d\n",
		stmt.SpecialLeaveEntitled, stmt.SpecialLeaveUsed, stmt.SpecialLeaveRemaining)
	fmt.Fprintf(&b, "leave days: %d, deduction %.0f\n", stmt.LeaveDays, stmt.LeaveDeduction)
	if stmt.EmployeeType == staffDatamodel.TypeSalariedBonus {
		fmt.Fprintf(&b, "monthly bonus: %.0f", stmt.Bonus)
		if stmt.BonusNote != "" {
			fmt.Fprintf(&b, " (%s)", stmt.BonusNote)
		}
		b.WriteString("\n")
	}
	b.WriteString("-------------------------\n")
	fmt.Fprintf(&b, "total: %.0f", stmt.Total)
	return b.String()
}
