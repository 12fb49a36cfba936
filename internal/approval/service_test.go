package approval_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/approval"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	bonusDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/bonus"
	staffDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/staff"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/internal/keylock"
)

type mockStaffDirectory struct {
	byName map[string]*staffDatamodel.Record
}

func (m *mockStaffDirectory) GetByName(ctx context.Context, displayName string) (*staffDatamodel.Record, error) {
	record, ok := m.byName[displayName]
	if !ok {
		return nil, internal.ErrStaffNotFound
	}
	return record, nil
}

type mockLeaveRepository struct {
	records   map[string]*attendanceDatamodel.Record
	findError error
}

func newMockLeaveRepository() *mockLeaveRepository {
	return &mockLeaveRepository{records: make(map[string]*attendanceDatamodel.Record)}
}

func (m *mockLeaveRepository) key(userID, workDate string) string {
	return userID + "/" + workDate
}

func (m *mockLeaveRepository) GetByUserAndDate(ctx context.Context, userID, workDate string) (*attendanceDatamodel.Record, error) {
	record, ok := m.records[m.key(userID, workDate)]
	if !ok {
		return nil, internal.ErrRecordNotFound
	}
	return record, nil
}

func (m *mockLeaveRepository) Create(ctx context.Context, record *attendanceDatamodel.Record) error {
	m.records[m.key(record.UserID, record.WorkDate)] = record
	return nil
}

func (m *mockLeaveRepository) UpdateFields(ctx context.Context, userID, workDate string, fields map[string]interface{}) error {
	record, ok := m.records[m.key(userID, workDate)]
	if !ok {
		return errors.New("record not found")
	}
	if v, ok := fields["leave_status"]; ok {
		record.LeaveStatus = v.(string)
	}
	return nil
}

func (m *mockLeaveRepository) ListByUserBetween(ctx context.Context, userID, from, to string) ([]*attendanceDatamodel.Record, error) {
	return nil, nil
}

func (m *mockLeaveRepository) ListLeaveByUser(ctx context.Context, userID string) ([]*attendanceDatamodel.Record, error) {
	return nil, nil
}

func (m *mockLeaveRepository) FindPendingLeave(ctx context.Context, userID, workDate string) (*attendanceDatamodel.Record, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	record, ok := m.records[m.key(userID, workDate)]
	if !ok || !record.OnLeave || record.LeaveStatus != attendanceDatamodel.LeaveStatusPending {
		return nil, internal.ErrRecordNotFound
	}
	return record, nil
}

func (m *mockLeaveRepository) ListAll(ctx context.Context) ([]*attendanceDatamodel.Record, error) {
	return nil, nil
}

type mockBonusRepository struct {
	records  map[string]*bonusDatamodel.Record
	getError error
}

func newMockBonusRepository() *mockBonusRepository {
	return &mockBonusRepository{records: make(map[string]*bonusDatamodel.Record)}
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

type mockBus struct {
	published []events.Event
}

func (m *mockBus) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("ApprovalService", func() {
	var (
		service   *approval.Service
		staffDir  *mockStaffDirectory
		leaveRepo *mockLeaveRepository
		bonusRepo *mockBonusRepository
		bus       *mockBus
	)

	BeforeEach(func() {
		staffDir = &mockStaffDirectory{byName: map[string]*staffDatamodel.Record{
			"Mei": {UserID: "user-1", DisplayName: "Mei"},
		}}
		leaveRepo = newMockLeaveRepository()
		bonusRepo = newMockBonusRepository()
		bus = &mockBus{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = approval.NewService(staffDir, leaveRepo, bonusRepo, keylock.NewInProcess(), bus, logger)
	})

	Describe("Review", func() {
		pendingDay := func(day string) {
			leaveRepo.records["user-1/"+day] = &attendanceDatamodel.Record{
				UserID:      "user-1",
				WorkDate:    day,
				OnLeave:     true,
				LeaveStatus: attendanceDatamodel.LeaveStatusPending,
			}
		}

		It("approves the pending day and publishes the outcome", func() {
			pendingDay("2025-07-01")
			cmd, _ := approval.ParseReviewCommand("Approve Mei 2025-07-01")

			result, err := service.Review(context.Background(), cmd)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(attendanceDatamodel.LeaveStatusApproved))
			Expect(leaveRepo.records["user-1/2025-07-01"].LeaveStatus).
				To(Equal(attendanceDatamodel.LeaveStatusApproved))
			Expect(bus.published).To(HaveLen(1))
		})

		It("flags the day for discussion", func() {
			pendingDay("2025-07-01")
			cmd, _ := approval.ParseReviewCommand("NeedsDiscussion Mei 2025-07-01")

			result, err := service.Review(context.Background(), cmd)

			Expect(err).ToNot(HaveOccurred())
			Expect(result.Status).To(Equal(attendanceDatamodel.LeaveStatusNeedsDiscussion))
		})

		It("reports no pending request when nothing matches", func() {
			cmd, _ := approval.ParseReviewCommand("Approve Mei 2025-07-01")

			_, err := service.Review(context.Background(), cmd)

			Expect(err).To(MatchError(internal.ErrNoPendingLeave))
		})

		It("does not match an already reviewed day again", func() {
			pendingDay("2025-07-01")
			cmd, _ := approval.ParseReviewCommand("Approve Mei 2025-07-01")
			service.Review(context.Background(), cmd)

			_, err := service.Review(context.Background(), cmd)

			Expect(err).To(MatchError(internal.ErrNoPendingLeave))
		})

		It("rejects an unknown display name", func() {
			cmd, _ := approval.ParseReviewCommand("Approve Nobody 2025-07-01")

			_, err := service.Review(context.Background(), cmd)

			Expect(err).To(MatchError(internal.ErrStaffNotFound))
		})

		It("propagates a store failure instead of reporting no pending request", func() {
			pendingDay("2025-07-01")
			leaveRepo.findError = errors.New("connection refused")
			cmd, _ := approval.ParseReviewCommand("Approve Mei 2025-07-01")

			_, err := service.Review(context.Background(), cmd)

			Expect(err).To(MatchError(leaveRepo.findError))
			Expect(leaveRepo.records["user-1/2025-07-01"].LeaveStatus).
				To(Equal(attendanceDatamodel.LeaveStatusPending))
		})
	})

	Describe("AddBonus", func() {
		It("records one bonus per user and month", func() {
			cmd, _ := approval.ParseBonusCommand("AddBonus Mei 2025-07 12000 good work")

			err := service.AddBonus(context.Background(), cmd)

			Expect(err).ToNot(HaveOccurred())
			record := bonusRepo.records["user-1/2025-07"]
			Expect(record).ToNot(BeNil())
			Expect(record.Amount).To(Equal(int64(12000)))
			Expect(record.Note).To(Equal("good work"))
			Expect(record.CreatedAt).ToNot(BeZero())
			Expect(record.UpdatedAt).ToNot(BeZero())
		})

		It("rejects a duplicate month and leaves the store unchanged", func() {
			cmd, _ := approval.ParseBonusCommand("AddBonus Mei 2025-07 12000 good work")
			Expect(service.AddBonus(context.Background(), cmd)).To(Succeed())

			dup, _ := approval.ParseBonusCommand("AddBonus Mei 2025-07 99999 replacement")
			err := service.AddBonus(context.Background(), dup)

			Expect(err).To(MatchError(internal.ErrDuplicateBonus))
			Expect(bonusRepo.records["user-1/2025-07"].Amount).To(Equal(int64(12000)))
		})

		It("propagates a ledger store failure without writing a bonus", func() {
			bonusRepo.getError = errors.New("connection refused")
			cmd, _ := approval.ParseBonusCommand("AddBonus Mei 2025-07 12000 good work")

			err := service.AddBonus(context.Background(), cmd)

			Expect(err).To(MatchError(bonusRepo.getError))
			Expect(bonusRepo.records).To(BeEmpty())
		})

		It("allows the same month for different users", func() {
			staffDir.byName["Sam"] = &staffDatamodel.Record{UserID: "user-2", DisplayName: "Sam"}

			first, _ := approval.ParseBonusCommand("AddBonus Mei 2025-07 12000 note")
			second, _ := approval.ParseBonusCommand("AddBonus Sam 2025-07 8000 note")

			Expect(service.AddBonus(context.Background(), first)).To(Succeed())
			Expect(service.AddBonus(context.Background(), second)).To(Succeed())
		})
	})
})
