package timesheet_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/approval"
	"github.com/tms/timesheet-management/internal/auth"
	"github.com/tms/timesheet-management/internal/timesheet"
)

func TestTimesheetService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TimesheetService Suite")
}

type mockTimesheetRepository struct {
	timesheets  map[int64]*timesheet.Timesheet
	nextID      int64
	createError error
	updateError error
}

func newMockTimesheetRepository() *mockTimesheetRepository {
	return &mockTimesheetRepository{
		timesheets: make(map[int64]*timesheet.Timesheet),
		nextID:     1,
	}
}

func (m *mockTimesheetRepository) Create(ts *timesheet.Timesheet) error {
	if m.createError != nil {
		return m.createError
	}
	ts.ID = m.nextID
	m.nextID++
	ts.CreatedAt = time.Now()
	ts.UpdatedAt = time.Now()
	copied := *ts
	m.timesheets[ts.ID] = &copied
	return nil
}

func (m *mockTimesheetRepository) GetByID(id int64) (*timesheet.Timesheet, error) {
	ts, ok := m.timesheets[id]
	if !ok {
		return nil, internal.ErrTimesheetNotFound
	}
	copied := *ts
	return &copied, nil
}

func (m *mockTimesheetRepository) ListAll() ([]*timesheet.Timesheet, error) {
	result := make([]*timesheet.Timesheet, 0, len(m.timesheets))
	for _, ts := range m.timesheets {
		result = append(result, ts)
	}
	return result, nil
}

func (m *mockTimesheetRepository) ListByUser(userID int64) ([]*timesheet.Timesheet, error) {
	var result []*timesheet.Timesheet
	for _, ts := range m.timesheets {
		if ts.UserID == userID {
			result = append(result, ts)
		}
	}
	return result, nil
}

func (m *mockTimesheetRepository) ListByUserAndStatus(userID int64, status string) ([]*timesheet.Timesheet, error) {
	var result []*timesheet.Timesheet
	for _, ts := range m.timesheets {
		if ts.UserID == userID && ts.ApprovalStatus == status {
			result = append(result, ts)
		}
	}
	return result, nil
}

func (m *mockTimesheetRepository) ListPendingForManager(managerID int64) ([]*timesheet.Timesheet, error) {
	return nil, nil
}

func (m *mockTimesheetRepository) Update(ts *timesheet.Timesheet) error {
	if m.updateError != nil {
		return m.updateError
	}
	if _, ok := m.timesheets[ts.ID]; !ok {
		return internal.ErrTimesheetNotFound
	}
	copied := *ts
	m.timesheets[ts.ID] = &copied
	return nil
}

func (m *mockTimesheetRepository) Delete(id int64) error {
	delete(m.timesheets, id)
	return nil
}

type mockApprovalStore struct {
	byTimesheet map[int64]*approval.Approval
	nextID      int64
	saveError   error
}

func newMockApprovalStore() *mockApprovalStore {
	return &mockApprovalStore{
		byTimesheet: make(map[int64]*approval.Approval),
		nextID:      1,
	}
}

func (m *mockApprovalStore) GetByTimesheetID(timesheetID int64) (*approval.Approval, error) {
	a, ok := m.byTimesheet[timesheetID]
	if !ok {
		return nil, nil
	}
	copied := *a
	return &copied, nil
}

func (m *mockApprovalStore) Save(a *approval.Approval) error {
	if m.saveError != nil {
		return m.saveError
	}
	if a.ID == 0 {
		a.ID = m.nextID
		m.nextID++
	}
	copied := *a
	m.byTimesheet[a.TimesheetID] = &copied
	return nil
}

func (m *mockApprovalStore) DeleteByTimesheetID(timesheetID int64) error {
	delete(m.byTimesheet, timesheetID)
	return nil
}

type mockUserStore struct {
	owners map[int64]*timesheet.Owner
}

func (m *mockUserStore) GetOwner(userID int64) (*timesheet.Owner, error) {
	owner, ok := m.owners[userID]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	copied := *owner
	return &copied, nil
}

type mockProjectStore struct {
	projects    map[int64]*timesheet.ProjectRef
	assignments map[[2]int64]bool
}

func (m *mockProjectStore) GetRef(projectID int64) (*timesheet.ProjectRef, error) {
	p, ok := m.projects[projectID]
	if !ok {
		return nil, internal.ErrProjectNotFound
	}
	return p, nil
}

func (m *mockProjectStore) IsAssigned(userID, projectID int64) (bool, error) {
	return m.assignments[[2]int64{userID, projectID}], nil
}

type mockTxManager struct {
	repos   timesheet.TxRepos
	doError error
}

func (m *mockTxManager) Do(fn func(timesheet.TxRepos) error) error {
	if m.doError != nil {
		return m.doError
	}
	return fn(m.repos)
}

var _ = Describe("TimesheetService", func() {
	var (
		repo      *mockTimesheetRepository
		approvals *mockApprovalStore
		users     *mockUserStore
		projects  *mockProjectStore
		service   *timesheet.Service

		employee auth.Identity
		manager  auth.Identity
		admin    auth.Identity

		fixedNow time.Time
	)

	const (
		employeeID = int64(10)
		managerID  = int64(20)
		projectID  = int64(5)
	)

	BeforeEach(func() {
		repo = newMockTimesheetRepository()
		approvals = newMockApprovalStore()

		mgr := managerID
		dept := int64(1)
		users = &mockUserStore{owners: map[int64]*timesheet.Owner{
			employeeID: {ID: employeeID, Name: "Eng Employee", Email: "employee@mail.com", DepartmentID: &dept, ManagerID: &mgr},
		}}

		projects = &mockProjectStore{
			projects:    map[int64]*timesheet.ProjectRef{projectID: {ID: projectID, Name: "Internal Platform"}},
			assignments: map[[2]int64]bool{{employeeID, projectID}: true},
		}

		tx := &mockTxManager{repos: timesheet.TxRepos{Timesheets: repo, Approvals: approvals}}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		fixedNow = time.Date(2025, 6, 18, 10, 0, 0, 0, time.UTC)
		service = timesheet.NewService(repo, approvals, users, projects, tx, logger).
			WithClock(func() time.Time { return fixedNow })

		employee = auth.Identity{UserID: employeeID, Email: "employee@mail.com", Role: auth.RoleEmployee}
		manager = auth.Identity{UserID: managerID, Email: "manager@mail.com", Role: auth.RoleManager}
		admin = auth.Identity{UserID: 1, Email: "admin@mail.com", Role: auth.RoleAdmin}
	})

	validCreate := func() timesheet.CreateTimesheetDTO {
		pid := projectID
		return timesheet.CreateTimesheetDTO{
			ProjectID:   &pid,
			WorkDate:    time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
			HoursWorked: 8,
			Description: "implementation work",
		}
	}

	Describe("Create", func() {
		It("persists the timesheet as PENDING with a paired approval", func() {
			ts, err := service.Create(employee, validCreate())
			Expect(err).NotTo(HaveOccurred())
			Expect(ts.ApprovalStatus).To(Equal(approval.StatusPending))

			a, err := approvals.GetByTimesheetID(ts.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(a).NotTo(BeNil())
			Expect(a.ManagerID).To(Equal(managerID))
			Expect(a.Status).To(Equal(approval.StatusPending))
			Expect(a.ActionDate).To(BeNil())
		})

		It("rejects an employee logging for another user", func() {
			other := int64(99)
			dept := int64(1)
			mgr := managerID
			users.owners[other] = &timesheet.Owner{ID: other, Email: "other@mail.com", DepartmentID: &dept, ManagerID: &mgr}

			dto := validCreate()
			dto.UserID = other

			_, err := service.Create(employee, dto)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.AsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("rejects an employee not assigned to the project", func() {
			projects.assignments = map[[2]int64]bool{}

			_, err := service.Create(employee, validCreate())
			Expect(err).To(Equal(internal.ErrNotAssignedProject))
		})

		It("rejects a project that does not exist", func() {
			missing := int64(404)
			dto := validCreate()
			dto.ProjectID = &missing

			_, err := service.Create(employee, dto)
			Expect(err).To(Equal(internal.ErrProjectNotFound))
		})

		It("refuses to create when the owner's department has no manager", func() {
			users.owners[employeeID].ManagerID = nil

			_, err := service.Create(employee, validCreate())
			Expect(err).To(Equal(internal.ErrNoManagerForApprval))
		})

		It("rejects a payload with both project and activity", func() {
			activity := "TRAINING"
			dto := validCreate()
			dto.ActivityType = &activity

			_, err := service.Create(employee, dto)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.AsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("accepts an activity-only entry", func() {
			activity := "TRAINING"
			dto := validCreate()
			dto.ProjectID = nil
			dto.ActivityType = &activity

			ts, err := service.Create(employee, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(ts.ProjectID).To(BeNil())
			Expect(*ts.ActivityType).To(Equal("TRAINING"))
		})

		It("rejects negative hours", func() {
			dto := validCreate()
			dto.HoursWorked = -1

			_, err := service.Create(employee, dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		var existing *timesheet.Timesheet

		BeforeEach(func() {
			var err error
			existing, err = service.Create(employee, validCreate())
			Expect(err).NotTo(HaveOccurred())
		})

		It("applies a partial edit and keeps the pair PENDING", func() {
			hours := 6.5
			updated, err := service.Update(employee, existing.ID, timesheet.UpdateTimesheetDTO{HoursWorked: &hours})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.HoursWorked).To(Equal(6.5))
			Expect(updated.ApprovalStatus).To(Equal(approval.StatusPending))

			a, _ := approvals.GetByTimesheetID(existing.ID)
			Expect(a.Status).To(Equal(approval.StatusPending))
			Expect(a.ActionDate).To(BeNil())
		})

		It("rejects edits once the timesheet is no longer PENDING", func() {
			stored, _ := repo.GetByID(existing.ID)
			stored.ApprovalStatus = approval.StatusApproved
			Expect(repo.Update(stored)).To(Succeed())

			hours := 4.0
			_, err := service.Update(employee, existing.ID, timesheet.UpdateTimesheetDTO{HoursWorked: &hours})
			Expect(err).To(Equal(internal.ErrTimesheetNotPending))
		})

		It("rejects a non-owner employee", func() {
			stranger := auth.Identity{UserID: 77, Email: "stranger@mail.com", Role: auth.RoleEmployee}
			hours := 4.0
			_, err := service.Update(stranger, existing.ID, timesheet.UpdateTimesheetDTO{HoursWorked: &hours})
			Expect(err).To(Equal(internal.ErrNotResourceOwner))
		})

		It("rejects managers and admins from editing timesheets", func() {
			hours := 4.0
			for _, id := range []auth.Identity{manager, admin} {
				_, err := service.Update(id, existing.ID, timesheet.UpdateTimesheetDTO{HoursWorked: &hours})
				Expect(err).To(HaveOccurred())
				appErr, ok := internal.AsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
			}
		})

		It("returns not found for a missing timesheet", func() {
			hours := 4.0
			_, err := service.Update(employee, 9999, timesheet.UpdateTimesheetDTO{HoursWorked: &hours})
			Expect(err).To(Equal(internal.ErrTimesheetNotFound))
		})
	})

	Describe("Delete", func() {
		var existing *timesheet.Timesheet

		BeforeEach(func() {
			var err error
			existing, err = service.Create(employee, validCreate())
			Expect(err).NotTo(HaveOccurred())
		})

		It("removes the timesheet and its paired approval", func() {
			Expect(service.Delete(employee, existing.ID)).To(Succeed())

			_, err := repo.GetByID(existing.ID)
			Expect(err).To(Equal(internal.ErrTimesheetNotFound))

			a, err := approvals.GetByTimesheetID(existing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(BeNil())
		})

		It("rejects deleting a non-PENDING timesheet", func() {
			stored, _ := repo.GetByID(existing.ID)
			stored.ApprovalStatus = approval.StatusRejected
			Expect(repo.Update(stored)).To(Succeed())

			err := service.Delete(employee, existing.ID)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.AsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects a non-owner", func() {
			stranger := auth.Identity{UserID: 77, Email: "stranger@mail.com", Role: auth.RoleEmployee}
			Expect(service.Delete(stranger, existing.ID)).To(Equal(internal.ErrNotResourceOwner))
		})
	})

	Describe("reads", func() {
		var existing *timesheet.Timesheet

		BeforeEach(func() {
			var err error
			existing, err = service.Create(employee, validCreate())
			Expect(err).NotTo(HaveOccurred())
		})

		It("lets the owner read their own timesheet", func() {
			ts, err := service.GetByID(employee, existing.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ts.ID).To(Equal(existing.ID))
		})

		It("hides other employees' timesheets", func() {
			stranger := auth.Identity{UserID: 77, Email: "stranger@mail.com", Role: auth.RoleEmployee}
			_, err := service.GetByID(stranger, existing.ID)
			Expect(err).To(Equal(internal.ErrNotResourceOwner))
		})

		It("lets managers and admins read any timesheet", func() {
			for _, id := range []auth.Identity{manager, admin} {
				ts, err := service.GetByID(id, existing.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(ts.ID).To(Equal(existing.ID))
			}
		})

		It("restricts the manager pending queue to that manager or an admin", func() {
			_, err := service.PendingForManager(employee, managerID)
			Expect(err).To(Equal(internal.ErrNotAssignedManager))

			_, err = service.PendingForManager(manager, managerID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.PendingForManager(admin, managerID)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("transactional coupling", func() {
		It("does not keep a timesheet whose approval failed to materialize", func() {
			approvals.saveError = errors.New("storage offline")

			failTx := &mockTxManager{doError: errors.New("storage offline")}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			svc := timesheet.NewService(repo, approvals, users, projects, failTx, logger)

			_, err := svc.Create(employee, validCreate())
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.AsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeInternal))
		})

		It("surfaces a business error raised inside a delete transaction unchanged", func() {
			existing, err := service.Create(employee, validCreate())
			Expect(err).NotTo(HaveOccurred())

			failTx := &mockTxManager{doError: internal.ErrApprovalNotFound}
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			svc := timesheet.NewService(repo, approvals, users, projects, failTx, logger)

			err = svc.Delete(employee, existing.ID)
			appErr, ok := internal.AsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})
})
