package payroll_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/attendance-management/internal"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	bonusDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/bonus"
	staffDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/staff"
	"github.com/frahmantamala/attendance-management/internal/payroll"
)

type mockStaffDirectory struct {
	records map[string]*staffDatamodel.Record
}

func (m *mockStaffDirectory) Get(ctx context.Context, userID string) (*staffDatamodel.Record, error) {
	record, ok := m.records[userID]
	if !ok {
		return nil, internal.ErrStaffNotFound
	}
	return record, nil
}

type mockAttendanceRepository struct {
	rows []*attendanceDatamodel.Record
}

func (m *mockAttendanceRepository) GetByUserAndDate(ctx context.Context, userID, workDate string) (*attendanceDatamodel.Record, error) {
	return nil, errors.New("not implemented")
}

func (m *mockAttendanceRepository) Create(ctx context.Context, record *attendanceDatamodel.Record) error {
	m.rows = append(m.rows, record)
	return nil
}

func (m *mockAttendanceRepository) UpdateFields(ctx context.Context, userID, workDate string, fields map[string]interface{}) error {
	return nil
}

func (m *mockAttendanceRepository) ListByUserBetween(ctx context.Context, userID, from, to string) ([]*attendanceDatamodel.Record, error) {
	var out []*attendanceDatamodel.Record
	for _, row := range m.rows {
		if row.UserID == userID && row.WorkDate >= from && row.WorkDate <= to {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepository) ListLeaveByUser(ctx context.Context, userID string) ([]*attendanceDatamodel.Record, error) {
	return nil, nil
}

func (m *mockAttendanceRepository) FindPendingLeave(ctx context.Context, userID, workDate string) (*attendanceDatamodel.Record, error) {
	return nil, internal.ErrRecordNotFound
}

func (m *mockAttendanceRepository) ListAll(ctx context.Context) ([]*attendanceDatamodel.Record, error) {
	return m.rows, nil
}

type mockBonusRepository struct {
	records  map[string]*bonusDatamodel.Record
	getError error
}

func (m *mockBonusRepository) Create(ctx context.Context, record *bonusDatamodel.Record) error {
	m.records[record.UserID+"/"+record.YearMonth] = record
	return nil
}

func (m *mockBonusRepository) GetByUserAndMonth(ctx context.Context, userID, yearMonth string) (*bonusDatamodel.Record, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	record, ok := m.records[userID+"/"+yearMonth]
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	return record, nil
}

func workedDay(userID, day string, in, out string) *attendanceDatamodel.Record {
	clockIn, _ := time.Parse("2006-01-02 15:04", day+" "+in)
	clockOut, _ := time.Parse("2006-01-02 15:04", day+" "+out)
	return &attendanceDatamodel.Record{
		UserID:   userID,
		WorkDate: day,
		ClockIn:  &clockIn,
		ClockOut: &clockOut,
	}
}

func leaveDay(userID, day, typeNote string) *attendanceDatamodel.Record {
	return &attendanceDatamodel.Record{
		UserID:        userID,
		WorkDate:      day,
		OnLeave:       true,
		LeaveTypeNote: typeNote,
		LeaveStatus:   attendanceDatamodel.LeaveStatusApproved,
	}
}

var _ = Describe("PayrollCalculator", func() {
	var (
		calculator *payroll.Calculator
		staffDir   *mockStaffDirectory
		repo       *mockAttendanceRepository
		bonusRepo  *mockBonusRepository
	)

	cfg := internal.PayrollConfig{
		Timezone:           "UTC",
		StandardShiftHours: 9,
		BreakStart:         "12:00",
		BreakEnd:           "13:00",
		OvertimeThreshold:  30 * time.Minute,
		SpecialLeaveLabel:  "special",
		SpecialLeaveTable:  map[int]int{1: 3, 2: 7, 3: 10},
	}

	now := time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)

	BeforeEach(func() {
		staffDir = &mockStaffDirectory{records: make(map[string]*staffDatamodel.Record)}
		repo = &mockAttendanceRepository{}
		bonusRepo = &mockBonusRepository{records: make(map[string]*bonusDatamodel.Record)}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		calculator = payroll.NewCalculator(staffDir, repo, bonusRepo, cfg, logger).
			WithClock(func() time.Time { return now })
	})

	Describe("salaried employees", func() {
		BeforeEach(func() {
			staffDir.records["user-1"] = &staffDatamodel.Record{
				UserID:             "user-1",
				DisplayName:        "Mei Lin",
				EmployeeType:       staffDatamodel.TypeSalaried,
				BaseSalary:         30000,
				OvertimeMultiplier: 1.33,
			}
		})

		It("accrues one overtime hour for a 09:00 to 19:05 shift", func() {
			repo.rows = append(repo.rows, workedDay("user-1", "2025-06-10", "09:00", "19:05"))

			stmt, err := calculator.ComputeMonthly(context.Background(), "user-1", 2025, time.June)

			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.OvertimeHours).To(Equal(1.0))
		})

		It("accrues nothing when the overage stays under the threshold", func() {
			repo.rows = append(repo.rows, workedDay("user-1", "2025-06-10", "09:00", "18:20"))

			stmt, err := calculator.ComputeMonthly(context.Background(), "user-1", 2025, time.June)

			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.OvertimeHours).To(BeZero())
		})

		It("rounds overtime down to half-hour units", func() {
			// 09:00 to 19:50: overage 110 minutes -> 1.5 units
			repo.rows = append(repo.rows, workedDay("user-1", "2025-06-10", "09:00", "19:50"))

			stmt, err := calculator.ComputeMonthly(context.Background(), "user-1", 2025, time.June)

			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.OvertimeHours).To(Equal(1.5))
		})

		It("computes the full statement for a 30-day month", func() {
			repo.rows = append(repo.rows,
				workedDay("user-1", "2025-06-10", "09:00", "19:05"),
				leaveDay("user-1", "2025-06-11", "personal"),
				leaveDay("user-1", "2025-06-12", "personal"),
			)

			stmt, err := calculator.ComputeMonthly(context.Background(), "user-1", 2025, time.June)

			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.LeaveDays).To(Equal(2))
			Expect(stmt.LeaveDeduction).To(BeNumerically("~", 2000, 0.01))
			Expect(stmt.OvertimeHours).To(Equal(1.0))
			Expect(stmt.OvertimePay).To(BeNumerically("~", 147.78, 0.01))
			Expect(stmt.Total).To(BeNumerically("~", 28147.78, 0.01))

			text := payroll.FormatStatement(stmt)
			Expect(text).To(ContainSubstring("total: 28148"))
		})

		It("excludes special leave from the deduction but counts it against the entitlement", func() {
			staffDir.records["user-1"].EmploymentStartDate = timePtr(time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC))
			repo.rows = append(repo.rows,
				leaveDay("user-1", "2025-06-11", "special"),
				leaveDay("user-1", "2025-06-12", "personal"),
			)

			stmt, err := calculator.ComputeMonthly(context.Background(), "user-1", 2025, time.June)

			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.LeaveDays).To(Equal(1))
			Expect(stmt.SpecialLeaveEntitled).To(Equal(10))
			Expect(stmt.SpecialLeaveUsed).To(Equal(1))
			Expect(stmt.SpecialLeaveRemaining).To(Equal(9))
		})
	})

	Describe("salaried with bonus employees", func() {
		BeforeEach(func() {
			staffDir.records["user-2"] = &staffDatamodel.Record{
				UserID:             "user-2",
				DisplayName:        "Sam Wu",
				EmployeeType:       staffDatamodel.TypeSalariedBonus,
				BaseSalary:         36000,
				OvertimeMultiplier: 1.33,
			}
		})

		It("adds the month's bonus row and skips overtime pay", func() {
			repo.rows = append(repo.rows, workedDay("user-2", "2025-06-10", "09:00", "19:05"))
			bonusRepo.records["user-2/2025-06"] = &bonusDatamodel.Record{
				UserID: "user-2", YearMonth: "2025-06", Amount: 5000, Note: "project",
			}

			stmt, err := calculator.ComputeMonthly(context.Background(), "user-2", 2025, time.June)

			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.Bonus).To(Equal(5000.0))
			Expect(stmt.OvertimePay).To(BeZero())
			Expect(stmt.Total).To(BeNumerically("~", 41000, 0.01))
		})

		It("treats a missing bonus row as zero", func() {
			stmt, err := calculator.ComputeMonthly(context.Background(), "user-2", 2025, time.June)

			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.Bonus).To(BeZero())
			Expect(stmt.Total).To(BeNumerically("~", 36000, 0.01))
		})

		It("fails the statement when the bonus ledger cannot be read", func() {
			bonusRepo.getError = errors.New("connection refused")

			_, err := calculator.ComputeMonthly(context.Background(), "user-2", 2025, time.June)

			Expect(err).To(MatchError(bonusRepo.getError))
		})
	})

	Describe("hourly employees", func() {
		BeforeEach(func() {
			staffDir.records["user-3"] = &staffDatamodel.Record{
				UserID:       "user-3",
				DisplayName:  "Ping Ho",
				EmployeeType: staffDatamodel.TypeHourly,
				BaseSalary:   190,
			}
		})

		It("keeps a 300-minute day intact and docks an hour from a 301-minute day", func() {
			repo.rows = append(repo.rows,
				workedDay("user-3", "2025-06-10", "09:00", "14:00"),
				workedDay("user-3", "2025-06-11", "09:00", "14:01"),
			)

			stmt, err := calculator.ComputeMonthly(context.Background(), "user-3", 2025, time.June)

			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.WorkedHours).To(BeNumerically("~", 541.0/60, 0.001))
			Expect(stmt.Total).To(BeNumerically("~", 190*541.0/60, 0.01))
		})

		It("reports leave days without deducting them", func() {
			repo.rows = append(repo.rows,
				workedDay("user-3", "2025-06-10", "09:00", "14:00"),
				leaveDay("user-3", "2025-06-11", "personal"),
			)

			stmt, err := calculator.ComputeMonthly(context.Background(), "user-3", 2025, time.June)

			Expect(err).ToNot(HaveOccurred())
			Expect(stmt.LeaveDays).To(Equal(1))
			Expect(stmt.Total).To(BeNumerically("~", 190*5, 0.01))
		})
	})

	Describe("unknown employee type", func() {
		It("refuses to guess a formula", func() {
			staffDir.records["user-4"] = &staffDatamodel.Record{
				UserID:      "user-4",
				DisplayName: "New Hire",
			}

			_, err := calculator.ComputeMonthly(context.Background(), "user-4", 2025, time.June)

			Expect(err).To(MatchError(internal.ErrNoPayrollConfig))
		})
	})

	Describe("WorkedHoursWithBreak", func() {
		It("subtracts the midday break when the span overlaps it", func() {
			row := workedDay("user-1", "2025-06-10", "09:00", "19:05")

			hours := calculator.WorkedHoursWithBreak(row)

			Expect(hours).To(BeNumerically("~", 605.0/60-1, 0.001))
		})

		It("keeps a morning-only span untouched", func() {
			row := workedDay("user-1", "2025-06-10", "08:00", "11:30")

			hours := calculator.WorkedHoursWithBreak(row)

			Expect(hours).To(BeNumerically("~", 3.5, 0.001))
		})
	})
})

func timePtr(t time.Time) *time.Time {
	return &t
}
