package approval_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/approval"
	"github.com/tms/timesheet-management/internal/auth"
)

func TestApprovalService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ApprovalService Suite")
}

type mockApprovalRepository struct {
	approvals map[int64]*approval.Approval
	nextID    int64
	saveError error
}

func newMockApprovalRepository() *mockApprovalRepository {
	return &mockApprovalRepository{
		approvals: make(map[int64]*approval.Approval),
		nextID:    1,
	}
}

func (m *mockApprovalRepository) GetByID(id int64) (*approval.Approval, error) {
	a, ok := m.approvals[id]
	if !ok {
		return nil, internal.ErrApprovalNotFound
	}
	copied := *a
	return &copied, nil
}

func (m *mockApprovalRepository) ListByManager(managerID int64) ([]*approval.Approval, error) {
	var result []*approval.Approval
	for _, a := range m.approvals {
		if a.ManagerID == managerID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockApprovalRepository) Save(a *approval.Approval) error {
	if m.saveError != nil {
		return m.saveError
	}
	if a.ID == 0 {
		a.ID = m.nextID
		m.nextID++
	}
	copied := *a
	m.approvals[a.ID] = &copied
	return nil
}

type mockTimesheetStore struct {
	statuses map[int64]string
	details  map[int64]*approval.TimesheetDetail
	setError error
}

func newMockTimesheetStore() *mockTimesheetStore {
	return &mockTimesheetStore{
		statuses: make(map[int64]string),
		details:  make(map[int64]*approval.TimesheetDetail),
	}
}

func (m *mockTimesheetStore) SetApprovalStatus(timesheetID int64, status string) error {
	if m.setError != nil {
		return m.setError
	}
	m.statuses[timesheetID] = status
	return nil
}

func (m *mockTimesheetStore) GetDetail(timesheetID int64) (*approval.TimesheetDetail, error) {
	d, ok := m.details[timesheetID]
	if !ok {
		return nil, internal.ErrTimesheetNotFound
	}
	return d, nil
}

var _ = Describe("ApprovalService", func() {
	var (
		repo       *mockApprovalRepository
		timesheets *mockTimesheetStore
		service    *approval.Service

		manager      auth.Identity
		otherManager auth.Identity
		admin        auth.Identity

		fixedNow time.Time
	)

	const (
		managerID   = int64(20)
		timesheetID = int64(7)
	)

	BeforeEach(func() {
		repo = newMockApprovalRepository()
		timesheets = newMockTimesheetStore()

		tx := &txManagerStub{repos: approval.TxRepos{Approvals: repo, Timesheets: timesheets}}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		fixedNow = time.Date(2025, 6, 18, 14, 30, 0, 0, time.UTC)
		service = approval.NewService(repo, timesheets, tx, logger).
			WithClock(func() time.Time { return fixedNow })

		manager = auth.Identity{UserID: managerID, Email: "manager@mail.com", Role: auth.RoleManager}
		otherManager = auth.Identity{UserID: 21, Email: "other@mail.com", Role: auth.RoleManager}
		admin = auth.Identity{UserID: 1, Email: "admin@mail.com", Role: auth.RoleAdmin}

		Expect(repo.Save(&approval.Approval{
			TimesheetID: timesheetID,
			ManagerID:   managerID,
			Status:      approval.StatusPending,
		})).To(Succeed())
		timesheets.statuses[timesheetID] = approval.StatusPending
	})

	Describe("UpdateStatus", func() {
		It("approves and mirrors the status onto the paired timesheet", func() {
			a, err := service.UpdateStatus(manager, 1, approval.UpdateStatusDTO{Status: "APPROVED"})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Status).To(Equal(approval.StatusApproved))
			Expect(a.ActionDate).NotTo(BeNil())
			Expect(*a.ActionDate).To(Equal(fixedNow))

			Expect(timesheets.statuses[timesheetID]).To(Equal(approval.StatusApproved))
		})

		It("accepts case-insensitive statuses", func() {
			a, err := service.UpdateStatus(manager, 1, approval.UpdateStatusDTO{Status: "rejected"})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Status).To(Equal(approval.StatusRejected))
			Expect(timesheets.statuses[timesheetID]).To(Equal(approval.StatusRejected))
		})

		It("records remarks as comments", func() {
			remarks := "missing project reference"
			a, err := service.UpdateStatus(manager, 1, approval.UpdateStatusDTO{Status: "REJECTED", Remarks: &remarks})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Comments).NotTo(BeNil())
			Expect(*a.Comments).To(Equal(remarks))
		})

		It("rejects statuses outside APPROVED/REJECTED", func() {
			for _, status := range []string{"PENDING", "DONE", ""} {
				_, err := service.UpdateStatus(manager, 1, approval.UpdateStatusDTO{Status: status})
				Expect(err).To(Equal(internal.ErrInvalidStatus))
			}
		})

		It("rejects a manager who is not assigned", func() {
			_, err := service.UpdateStatus(otherManager, 1, approval.UpdateStatusDTO{Status: "APPROVED"})
			Expect(err).To(Equal(internal.ErrNotAssignedManager))

			Expect(timesheets.statuses[timesheetID]).To(Equal(approval.StatusPending))
		})

		It("rejects admins who are not the assigned manager", func() {
			_, err := service.UpdateStatus(admin, 1, approval.UpdateStatusDTO{Status: "APPROVED"})
			Expect(err).To(Equal(internal.ErrNotAssignedManager))
		})

		It("returns not found for a missing approval", func() {
			_, err := service.UpdateStatus(manager, 999, approval.UpdateStatusDTO{Status: "APPROVED"})
			Expect(err).To(Equal(internal.ErrApprovalNotFound))
		})

		It("allows re-adjudicating an already actioned approval", func() {
			_, err := service.UpdateStatus(manager, 1, approval.UpdateStatusDTO{Status: "REJECTED"})
			Expect(err).NotTo(HaveOccurred())

			later := fixedNow.Add(2 * time.Hour)
			service.WithClock(func() time.Time { return later })

			a, err := service.UpdateStatus(manager, 1, approval.UpdateStatusDTO{Status: "APPROVED"})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Status).To(Equal(approval.StatusApproved))
			Expect(*a.ActionDate).To(Equal(later))
			Expect(timesheets.statuses[timesheetID]).To(Equal(approval.StatusApproved))
		})
	})

	Describe("GetByID", func() {
		It("lets the assigned manager and admins read", func() {
			for _, id := range []auth.Identity{manager, admin} {
				a, err := service.GetByID(id, 1)
				Expect(err).NotTo(HaveOccurred())
				Expect(a.ID).To(Equal(int64(1)))
			}
		})

		It("hides approvals from other managers", func() {
			_, err := service.GetByID(otherManager, 1)
			Expect(err).To(Equal(internal.ErrNotAssignedManager))
		})
	})

	Describe("ListForManager", func() {
		BeforeEach(func() {
			projectName := "Internal Platform"
			timesheets.details[timesheetID] = &approval.TimesheetDetail{
				TimesheetID:  timesheetID,
				EmployeeName: "Eng Employee",
				ProjectName:  &projectName,
				HoursWorked:  8,
				WorkDate:     time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
			}
		})

		It("returns denormalized views for the manager's queue", func() {
			views, err := service.ListForManager(manager, managerID)
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(1))
			Expect(views[0].EmployeeName).To(Equal("Eng Employee"))
			Expect(views[0].ProjectName).To(Equal("Internal Platform"))
			Expect(views[0].SubmittedDate).To(Equal("2025-06-16"))
		})

		It("folds the activity label into the project name for activity entries", func() {
			activity := "TRAINING"
			timesheets.details[timesheetID].ProjectName = nil
			timesheets.details[timesheetID].ActivityType = &activity

			views, err := service.ListForManager(manager, managerID)
			Expect(err).NotTo(HaveOccurred())
			Expect(views[0].ProjectName).To(Equal("TRAINING"))
		})

		It("duplicates comments as remarks", func() {
			remarks := "ok"
			_, err := service.UpdateStatus(manager, 1, approval.UpdateStatusDTO{Status: "APPROVED", Remarks: &remarks})
			Expect(err).NotTo(HaveOccurred())

			views, err := service.ListForManager(manager, managerID)
			Expect(err).NotTo(HaveOccurred())
			Expect(views[0].Remarks).NotTo(BeNil())
			Expect(*views[0].Remarks).To(Equal("ok"))
		})

		It("blocks managers from listing another manager's queue", func() {
			_, err := service.ListForManager(otherManager, managerID)
			Expect(err).To(Equal(internal.ErrNotAssignedManager))
		})

		It("lets admins inspect any queue", func() {
			views, err := service.ListForManager(admin, managerID)
			Expect(err).NotTo(HaveOccurred())
			Expect(views).To(HaveLen(1))
		})
	})
})

type txManagerStub struct {
	repos approval.TxRepos
}

func (m *txManagerStub) Do(fn func(approval.TxRepos) error) error {
	return fn(m.repos)
}
