package dashboard_test

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
	"github.com/tms/timesheet-management/internal/dashboard"
	"github.com/tms/timesheet-management/internal/timesheet"
)

func TestDashboardService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DashboardService Suite")
}

type mockTimesheetStore struct {
	byUser map[int64][]*timesheet.Timesheet
}

func (m *mockTimesheetStore) ListByUser(userID int64) ([]*timesheet.Timesheet, error) {
	return m.byUser[userID], nil
}

type mockManagerStatsStore struct {
	team     int64
	projects int64
	actioned int64
	pending  int64
}

func (m *mockManagerStatsStore) CountTeamMembers(managerID int64) (int64, error) {
	return m.team, nil
}

func (m *mockManagerStatsStore) CountProjects(managerID int64) (int64, error) {
	return m.projects, nil
}

func (m *mockManagerStatsStore) CountApprovalsActioned(managerID int64) (int64, error) {
	return m.actioned, nil
}

func (m *mockManagerStatsStore) CountPendingApprovals(managerID int64) (int64, error) {
	return m.pending, nil
}

var _ = Describe("DashboardService", func() {
	var (
		timesheets *mockTimesheetStore
		stats      *mockManagerStatsStore
		service    *dashboard.Service

		employee auth.Identity
		manager  auth.Identity
		admin    auth.Identity
	)

	const employeeID = int64(10)

	// Wednesday 2025-06-18; its Monday-start week runs 06-16 through 06-22.
	now := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)

	entry := func(day time.Time, hours float64, status string) *timesheet.Timesheet {
		return &timesheet.Timesheet{
			UserID:         employeeID,
			WorkDate:       day,
			HoursWorked:    hours,
			ApprovalStatus: status,
		}
	}

	BeforeEach(func() {
		timesheets = &mockTimesheetStore{byUser: map[int64][]*timesheet.Timesheet{}}
		stats = &mockManagerStatsStore{}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		service = dashboard.NewService(timesheets, stats, logger).
			WithClock(func() time.Time { return now })

		employee = auth.Identity{UserID: employeeID, Email: "employee@mail.com", Role: auth.RoleEmployee}
		manager = auth.Identity{UserID: 20, Email: "manager@mail.com", Role: auth.RoleManager}
		admin = auth.Identity{UserID: 1, Email: "admin@mail.com", Role: auth.RoleAdmin}
	})

	Describe("EmployeeStats", func() {
		It("sums hours inside the Monday-start week", func() {
			timesheets.byUser[employeeID] = []*timesheet.Timesheet{
				entry(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), 8, approval.StatusPending),   // Monday, in week
				entry(time.Date(2025, 6, 18, 0, 0, 0, 0, time.UTC), 7.5, approval.StatusPending), // Wednesday, in week
				entry(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), 4, approval.StatusPending),   // Sunday, previous week
			}

			result, err := service.EmployeeStats(employee)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.WeeklyHours).To(Equal(15.5))
		})

		It("sums hours inside the calendar month", func() {
			timesheets.byUser[employeeID] = []*timesheet.Timesheet{
				entry(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), 8, approval.StatusApproved),
				entry(time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC), 6, approval.StatusApproved),
				entry(time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC), 5, approval.StatusApproved), // previous month
			}

			result, err := service.EmployeeStats(employee)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.MonthlyHours).To(Equal(14.0))
		})

		It("counts entries per approval status", func() {
			timesheets.byUser[employeeID] = []*timesheet.Timesheet{
				entry(time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), 8, approval.StatusPending),
				entry(time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC), 8, approval.StatusApproved),
				entry(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), 8, approval.StatusApproved),
				entry(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC), 8, approval.StatusRejected),
			}

			result, err := service.EmployeeStats(employee)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.PendingCount).To(Equal(1))
			Expect(result.ApprovedCount).To(Equal(2))
			Expect(result.RejectedCount).To(Equal(1))
			Expect(result.TotalEntries).To(Equal(4))
		})

		It("returns zeros for a user with no entries", func() {
			result, err := service.EmployeeStats(employee)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.WeeklyHours).To(BeZero())
			Expect(result.MonthlyHours).To(BeZero())
			Expect(result.TotalEntries).To(BeZero())
		})
	})

	Describe("ManagerStats", func() {
		BeforeEach(func() {
			stats.team = 5
			stats.projects = 2
			stats.actioned = 14
			stats.pending = 3
		})

		It("returns the aggregate counters for the manager", func() {
			result, err := service.ManagerStats(manager, manager.UserID)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.TeamCount).To(Equal(int64(5)))
			Expect(result.ProjectsCount).To(Equal(int64(2)))
			Expect(result.ApprovalsActioned).To(Equal(int64(14)))
			Expect(result.PendingApprovals).To(Equal(int64(3)))
		})

		It("blocks other callers from a manager's stats", func() {
			_, err := service.ManagerStats(employee, manager.UserID)
			Expect(err).To(Equal(internal.ErrNotAssignedManager))
		})

		It("lets admins read any manager's stats", func() {
			_, err := service.ManagerStats(admin, manager.UserID)
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
