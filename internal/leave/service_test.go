package leave_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/attendance-management/internal"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	staffDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/staff"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/internal/keylock"
	"github.com/frahmantamala/attendance-management/internal/leave"
)

// Mock attendance repository for testing
type mockAttendanceRepository struct {
	records     map[string]*attendanceDatamodel.Record
	getError    error
	createError error
}

func newMockAttendanceRepository() *mockAttendanceRepository {
	return &mockAttendanceRepository{records: make(map[string]*attendanceDatamodel.Record)}
}

func (m *mockAttendanceRepository) key(userID, workDate string) string {
	return userID + "/" + workDate
}

func (m *mockAttendanceRepository) GetByUserAndDate(ctx context.Context, userID, workDate string) (*attendanceDatamodel.Record, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	record, ok := m.records[m.key(userID, workDate)]
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	return record, nil
}

func (m *mockAttendanceRepository) Create(ctx context.Context, record *attendanceDatamodel.Record) error {
	if m.createError != nil {
		return m.createError
	}
	m.records[m.key(record.UserID, record.WorkDate)] = record
	return nil
}

func (m *mockAttendanceRepository) UpdateFields(ctx context.Context, userID, workDate string, fields map[string]interface{}) error {
	record, ok := m.records[m.key(userID, workDate)]
	if !ok {
		return errors.New("record not found")
	}
	applyFields(record, fields)
	return nil
}

func applyFields(record *attendanceDatamodel.Record, fields map[string]interface{}) {
	if v, ok := fields["on_leave"]; ok {
		record.OnLeave = v.(bool)
	}
	if v, ok := fields["leave_type_note"]; ok {
		record.LeaveTypeNote = v.(string)
	}
	if v, ok := fields["leave_status"]; ok {
		record.LeaveStatus = v.(string)
	}
	if v, ok := fields["leave_description"]; ok {
		record.LeaveDescription = v.(string)
	}
}

func (m *mockAttendanceRepository) ListByUserBetween(ctx context.Context, userID, from, to string) ([]*attendanceDatamodel.Record, error) {
	var out []*attendanceDatamodel.Record
	for _, record := range m.records {
		if record.UserID == userID && record.WorkDate >= from && record.WorkDate <= to {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepository) ListLeaveByUser(ctx context.Context, userID string) ([]*attendanceDatamodel.Record, error) {
	var out []*attendanceDatamodel.Record
	for _, record := range m.records {
		if record.UserID == userID && record.OnLeave {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepository) FindPendingLeave(ctx context.Context, userID, workDate string) (*attendanceDatamodel.Record, error) {
	record, ok := m.records[m.key(userID, workDate)]
	if !ok || !record.OnLeave || record.LeaveStatus != attendanceDatamodel.LeaveStatusPending {
		return nil, internal.ErrRecordNotFound
	}
	return record, nil
}

func (m *mockAttendanceRepository) ListAll(ctx context.Context) ([]*attendanceDatamodel.Record, error) {
	var out []*attendanceDatamodel.Record
	for _, record := range m.records {
		out = append(out, record)
	}
	return out, nil
}

// Mock calendar with a fixed non-working set
type mockCalendar struct {
	nonWorking map[string]bool
	lookupErr  error
}

func (m *mockCalendar) IsNonWorkingDay(ctx context.Context, day string) (bool, error) {
	if m.lookupErr != nil {
		return false, m.lookupErr
	}
	return m.nonWorking[day], nil
}

type mockAdminDirectory struct {
	admins []*staffDatamodel.Record
}

func (m *mockAdminDirectory) Admins(ctx context.Context) ([]*staffDatamodel.Record, error) {
	return m.admins, nil
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("LeaveService", func() {
	var (
		service   *leave.Service
		repo      *mockAttendanceRepository
		calendar  *mockCalendar
		admins    *mockAdminDirectory
		bus       *mockPublisher
		requester *staffDatamodel.Record
	)

	BeforeEach(func() {
		repo = newMockAttendanceRepository()
		calendar = &mockCalendar{nonWorking: make(map[string]bool)}
		admins = &mockAdminDirectory{admins: []*staffDatamodel.Record{
			{UserID: "admin-1", DisplayName: "Boss", IsAdmin: true},
		}}
		bus = &mockPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = leave.NewService(repo, calendar, admins, keylock.NewInProcess(), bus, logger)
		requester = &staffDatamodel.Record{UserID: "user-1", DisplayName: "Mei Lin"}
	})

	Describe("Request", func() {
		It("creates one pending row per working day", func() {
			entries := leave.ExpandDates("2025-07-01~2025-07-03")

			result, err := service.Request(context.Background(), requester, entries, "sick", "flu")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Dates).To(Equal([]string{"2025-07-01", "2025-07-02", "2025-07-03"}))
			for _, day := range result.Dates {
				record := repo.records["user-1/"+day]
				Expect(record).ToNot(BeNil())
				Expect(record.OnLeave).To(BeTrue())
				Expect(record.LeaveStatus).To(Equal(attendanceDatamodel.LeaveStatusPending))
				Expect(record.LeaveTypeNote).To(Equal("sick"))
			}
		})

		It("filters out non-working days and keeps the rest", func() {
			calendar.nonWorking["2025-07-02"] = true
			entries := leave.ExpandDates("2025-07-01~2025-07-03")

			result, err := service.Request(context.Background(), requester, entries, "personal", "")

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Dates).To(Equal([]string{"2025-07-01", "2025-07-03"}))
			Expect(repo.records).ToNot(HaveKey("user-1/2025-07-02"))
		})

		It("rejects the request and writes nothing when every day is non-working", func() {
			calendar.nonWorking["2025-07-05"] = true
			calendar.nonWorking["2025-07-06"] = true
			entries := leave.ExpandDates("2025-07-05~2025-07-06")

			_, err := service.Request(context.Background(), requester, entries, "personal", "")

			Expect(err).To(MatchError(internal.ErrAllNonWorkingDays))
			Expect(repo.records).To(BeEmpty())
			Expect(bus.published).To(BeEmpty())
		})

		It("overwrites same-day clock data with the leave marking", func() {
			repo.records["user-1/2025-07-01"] = &attendanceDatamodel.Record{
				UserID:   "user-1",
				WorkDate: "2025-07-01",
			}

			_, err := service.Request(context.Background(), requester,
				leave.ExpandDates("2025-07-01"), "sick", "flu")

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.records["user-1/2025-07-01"].OnLeave).To(BeTrue())
		})

		It("attaches a date annotation only to that day's description", func() {
			entries := leave.EntriesFromISO([]string{"2025-07-01(morning only)", "2025-07-02"})

			_, err := service.Request(context.Background(), requester, entries, "personal", "errand")

			Expect(err).ToNot(HaveOccurred())
			Expect(repo.records["user-1/2025-07-01"].LeaveDescription).To(Equal("errand (morning only)"))
			Expect(repo.records["user-1/2025-07-02"].LeaveDescription).To(Equal("errand"))
		})

		It("propagates a store failure and publishes nothing", func() {
			repo.getError = errors.New("connection refused")

			_, err := service.Request(context.Background(), requester,
				leave.ExpandDates("2025-07-01"), "sick", "flu")

			Expect(err).To(MatchError(repo.getError))
			Expect(repo.records).To(BeEmpty())
			Expect(bus.published).To(BeEmpty())
		})

		It("publishes a leave.requested event addressed to the admins", func() {
			_, err := service.Request(context.Background(), requester,
				leave.ExpandDates("2025-07-01"), "sick", "flu")

			Expect(err).ToNot(HaveOccurred())
			Expect(bus.published).To(HaveLen(1))
			event, ok := bus.published[0].(*events.LeaveRequestedEvent)
			Expect(ok).To(BeTrue())
			Expect(event.AdminUserIDs).To(Equal([]string{"admin-1"}))
			Expect(event.Dates).To(Equal([]string{"2025-07-01"}))
		})
	})

	Describe("ListLeave", func() {
		It("returns only leave rows for the user", func() {
			repo.records["user-1/2025-07-01"] = &attendanceDatamodel.Record{
				UserID: "user-1", WorkDate: "2025-07-01", OnLeave: true,
				LeaveTypeNote: "sick", LeaveStatus: attendanceDatamodel.LeaveStatusApproved,
			}
			repo.records["user-1/2025-07-02"] = &attendanceDatamodel.Record{
				UserID: "user-1", WorkDate: "2025-07-02",
			}

			days, err := service.ListLeave(context.Background(), "user-1")

			Expect(err).ToNot(HaveOccurred())
			Expect(days).To(HaveLen(1))
			Expect(days[0].Date).To(Equal("2025-07-01"))
			Expect(days[0].Status).To(Equal(attendanceDatamodel.LeaveStatusApproved))
		})
	})
})
