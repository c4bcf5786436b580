package dashboard

import (
	"log/slog"
	"time"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/approval"
	"github.com/tms/timesheet-management/internal/auth"
	"github.com/tms/timesheet-management/internal/timesheet"
)

// TimesheetStore is the timesheet read slice employee stats need.
type TimesheetStore interface {
	ListByUser(userID int64) ([]*timesheet.Timesheet, error)
}

// ManagerStatsStore aggregates a manager's span of control in the storage layer.
type ManagerStatsStore interface {
	CountTeamMembers(managerID int64) (int64, error)
	CountProjects(managerID int64) (int64, error)
	CountApprovalsActioned(managerID int64) (int64, error)
	CountPendingApprovals(managerID int64) (int64, error)
}

// Service computes dashboard statistics. Employee stats are derived in memory
// from the user's own timesheets; manager stats lean on aggregate queries.
type Service struct {
	timesheets TimesheetStore
	stats      ManagerStatsStore
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(timesheets TimesheetStore, stats ManagerStatsStore, logger *slog.Logger) *Service {
	return &Service{
		timesheets: timesheets,
		stats:      stats,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// EmployeeStats computes the caller's weekly hours (Monday-start week),
// monthly hours and per-status entry counts.
func (s *Service) EmployeeStats(identity auth.Identity) (*EmployeeStats, error) {
	entries, err := s.timesheets.ListByUser(identity.UserID)
	if err != nil {
		s.logger.Error("failed to load timesheets for stats", "error", err, "user_id", identity.UserID)
		return nil, internal.NewInternalError("failed to compute statistics", err)
	}

	now := s.now()
	weekStart := startOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	stats := &EmployeeStats{TotalEntries: len(entries)}
	for _, ts := range entries {
		if inRange(ts.WorkDate, weekStart, weekEnd) {
			stats.WeeklyHours += ts.HoursWorked
		}
		if inRange(ts.WorkDate, monthStart, monthEnd) {
			stats.MonthlyHours += ts.HoursWorked
		}
		switch ts.ApprovalStatus {
		case approval.StatusPending:
			stats.PendingCount++
		case approval.StatusApproved:
			stats.ApprovedCount++
		case approval.StatusRejected:
			stats.RejectedCount++
		}
	}

	return stats, nil
}

// ManagerStats returns the span-of-control summary for a manager. Only that
// manager or an admin may ask.
func (s *Service) ManagerStats(identity auth.Identity, managerID int64) (*ManagerStats, error) {
	if !identity.IsAdmin() && identity.UserID != managerID {
		return nil, internal.ErrNotAssignedManager
	}

	team, err := s.stats.CountTeamMembers(managerID)
	if err != nil {
		return nil, internal.NewInternalError("failed to compute statistics", err)
	}
	projects, err := s.stats.CountProjects(managerID)
	if err != nil {
		return nil, internal.NewInternalError("failed to compute statistics", err)
	}
	actioned, err := s.stats.CountApprovalsActioned(managerID)
	if err != nil {
		return nil, internal.NewInternalError("failed to compute statistics", err)
	}
	pending, err := s.stats.CountPendingApprovals(managerID)
	if err != nil {
		return nil, internal.NewInternalError("failed to compute statistics", err)
	}

	return &ManagerStats{
		TeamCount:         team,
		ProjectsCount:     projects,
		ApprovalsActioned: actioned,
		PendingApprovals:  pending,
	}, nil
}

// startOfWeek returns midnight of the Monday of t's week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
