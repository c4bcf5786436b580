package timesheet

import (
	"log/slog"
	"time"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/approval"
	"github.com/tms/timesheet-management/internal/auth"
)

// Repository defines the data access methods for timesheets.
type Repository interface {
	Create(ts *Timesheet) error
	GetByID(id int64) (*Timesheet, error)
	ListAll() ([]*Timesheet, error)
	ListByUser(userID int64) ([]*Timesheet, error)
	ListByUserAndStatus(userID int64, status string) ([]*Timesheet, error)
	ListPendingForManager(managerID int64) ([]*Timesheet, error)
	Update(ts *Timesheet) error
	Delete(id int64) error
}

// ApprovalStore is the approval persistence slice the synchronization step
// needs. GetByTimesheetID returns (nil, nil) when no approval exists yet.
type ApprovalStore interface {
	GetByTimesheetID(timesheetID int64) (*approval.Approval, error)
	Save(a *approval.Approval) error
	DeleteByTimesheetID(timesheetID int64) error
}

// Owner is the timesheet owner with the approval chain resolved: ManagerID is
// the manager of the owner's department, when both exist.
type Owner struct {
	ID           int64
	Name         string
	Email        string
	DepartmentID *int64
	ManagerID    *int64
}

type UserStore interface {
	GetOwner(userID int64) (*Owner, error)
}

type ProjectRef struct {
	ID   int64
	Name string
}

type ProjectStore interface {
	GetRef(projectID int64) (*ProjectRef, error)
	IsAssigned(userID, projectID int64) (bool, error)
}

// TxRepos carries the repositories bound to one transaction.
type TxRepos struct {
	Timesheets Repository
	Approvals  ApprovalStore
}

// TxManager runs fn inside a single persistence transaction so a timesheet and
// its paired approval are never updated independently.
type TxManager interface {
	Do(fn func(TxRepos) error) error
}

// Service is the approval consistency engine: every timesheet write runs
// through it, and it alone keeps the paired approval in sync. All operations
// take the caller identity explicitly; there is no ambient auth state.
type Service struct {
	repo      Repository
	approvals ApprovalStore
	users     UserStore
	projects  ProjectStore
	tx        TxManager
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, approvals ApprovalStore, users UserStore, projects ProjectStore, tx TxManager, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		approvals: approvals,
		users:     users,
		projects:  projects,
		tx:        tx,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create logs a new timesheet. Employees may only log for themselves and only
// against projects they are assigned to; the owner's department must have a
// manager so the entry can enter an approval chain. The timesheet is persisted
// PENDING and its paired approval is materialized in the same transaction.
func (s *Service) Create(identity auth.Identity, dto CreateTimesheetDTO) (*Timesheet, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ownerID := dto.UserID
	if ownerID == 0 {
		ownerID = identity.UserID
	}

	owner, err := s.users.GetOwner(ownerID)
	if err != nil {
		return nil, err
	}

	if identity.IsEmployee() && identity.Email != owner.Email {
		s.logger.Warn("timesheet create rejected: employee logging for another user",
			"caller", identity.Email, "owner", owner.Email)
		return nil, internal.NewForbiddenError("employees can only create timesheets for themselves", internal.ErrCodeNotResourceOwner)
	}

	if dto.ProjectID != nil {
		if _, err := s.projects.GetRef(*dto.ProjectID); err != nil {
			return nil, err
		}
		if identity.IsEmployee() {
			assigned, err := s.projects.IsAssigned(owner.ID, *dto.ProjectID)
			if err != nil {
				return nil, internal.NewInternalError("failed to check project assignment", err)
			}
			if !assigned {
				return nil, internal.ErrNotAssignedProject
			}
		}
	}

	if owner.ManagerID == nil {
		return nil, internal.ErrNoManagerForApprval
	}

	ts := &Timesheet{
		UserID:         owner.ID,
		ProjectID:      dto.ProjectID,
		ActivityType:   dto.ActivityType,
		WorkDate:       dto.WorkDate,
		HoursWorked:    dto.HoursWorked,
		Description:    dto.Description,
		ApprovalStatus: approval.StatusPending,
	}

	err = s.tx.Do(func(r TxRepos) error {
		if err := r.Timesheets.Create(ts); err != nil {
			return err
		}
		return s.syncApproval(r.Approvals, ts, owner.ManagerID)
	})
	if err != nil {
		if appErr, ok := internal.AsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create timesheet", "error", err, "user_id", owner.ID)
		return nil, internal.NewInternalError("failed to create timesheet", err)
	}

	s.logger.Info("timesheet created",
		"timesheet_id", ts.ID,
		"user_id", owner.ID,
		"work_date", ts.WorkDate.Format("2006-01-02"),
		"hours", ts.HoursWorked)

	return ts, nil
}

// Update applies a partial edit to a PENDING timesheet. Only the owning
// employee may edit, the status is forced back to PENDING regardless of the
// request, and the paired approval is reset in the same transaction.
func (s *Service) Update(identity auth.Identity, id int64, dto UpdateTimesheetDTO) (*Timesheet, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ts, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	owner, err := s.authorizeEmployeeMutation(identity, ts, "update")
	if err != nil {
		return nil, err
	}

	if !ts.IsPending() {
		return nil, internal.ErrTimesheetNotPending
	}

	if dto.WorkDate != nil {
		ts.WorkDate = *dto.WorkDate
	}
	if dto.HoursWorked != nil {
		ts.HoursWorked = *dto.HoursWorked
	}
	if dto.Description != nil {
		ts.Description = *dto.Description
	}
	if dto.ActivityType != nil {
		ts.ActivityType = dto.ActivityType
	}

	// Employees cannot change approval status.
	ts.ApprovalStatus = approval.StatusPending

	err = s.tx.Do(func(r TxRepos) error {
		if err := r.Timesheets.Update(ts); err != nil {
			return err
		}
		return s.syncApproval(r.Approvals, ts, owner.ManagerID)
	})
	if err != nil {
		if appErr, ok := internal.AsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to update timesheet", "error", err, "timesheet_id", id)
		return nil, internal.NewInternalError("failed to update timesheet", err)
	}

	s.logger.Info("timesheet updated", "timesheet_id", ts.ID, "user_id", ts.UserID)

	return ts, nil
}

// Delete removes a PENDING timesheet and its paired approval in one
// transaction; the approval never outlives the timesheet.
func (s *Service) Delete(identity auth.Identity, id int64) error {
	ts, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if _, err := s.authorizeEmployeeMutation(identity, ts, "delete"); err != nil {
		return err
	}

	if !ts.IsPending() {
		return internal.NewBadRequestError("only pending timesheets can be deleted", internal.ErrCodeTimesheetNotPending)
	}

	err = s.tx.Do(func(r TxRepos) error {
		if err := r.Approvals.DeleteByTimesheetID(ts.ID); err != nil {
			return err
		}
		return r.Timesheets.Delete(ts.ID)
	})
	if err != nil {
		if appErr, ok := internal.AsAppError(err); ok {
			return appErr
		}
		s.logger.Error("failed to delete timesheet", "error", err, "timesheet_id", id)
		return internal.NewInternalError("failed to delete timesheet", err)
	}

	s.logger.Info("timesheet deleted", "timesheet_id", id, "user_id", ts.UserID)

	return nil
}

// GetByID returns a timesheet; employees may only read their own.
func (s *Service) GetByID(identity auth.Identity, id int64) (*Timesheet, error) {
	ts, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if identity.IsEmployee() && identity.UserID != ts.UserID {
		return nil, internal.ErrNotResourceOwner
	}

	return ts, nil
}

// ListForCaller returns the caller's own timesheets; admins get everything.
func (s *Service) ListForCaller(identity auth.Identity) ([]*Timesheet, error) {
	if identity.IsAdmin() {
		return s.repo.ListAll()
	}
	return s.repo.ListByUser(identity.UserID)
}

// PendingForCaller returns the caller's timesheets still awaiting adjudication.
func (s *Service) PendingForCaller(identity auth.Identity) ([]*Timesheet, error) {
	return s.repo.ListByUserAndStatus(identity.UserID, approval.StatusPending)
}

// PendingForManager returns the pending timesheets awaiting a manager. Only
// that manager (or an admin) may ask.
func (s *Service) PendingForManager(identity auth.Identity, managerID int64) ([]*Timesheet, error) {
	if !identity.IsAdmin() && identity.UserID != managerID {
		return nil, internal.ErrNotAssignedManager
	}
	return s.repo.ListPendingForManager(managerID)
}

// authorizeEmployeeMutation enforces the shared write rules: only employees
// mutate timesheets, and only their own. The resolved owner is returned so the
// sync step can reuse the manager lookup.
func (s *Service) authorizeEmployeeMutation(identity auth.Identity, ts *Timesheet, action string) (*Owner, error) {
	if !identity.IsEmployee() {
		s.logger.Warn("timesheet mutation rejected: caller is not an employee",
			"action", action, "caller_id", identity.UserID, "role", identity.Role)
		return nil, internal.NewForbiddenError("only employees can "+action+" timesheets", internal.ErrCodeRoleRequired)
	}

	owner, err := s.users.GetOwner(ts.UserID)
	if err != nil {
		return nil, err
	}

	if identity.Email != owner.Email {
		s.logger.Warn("timesheet mutation rejected: caller does not own the timesheet",
			"action", action, "caller", identity.Email, "owner", owner.Email)
		return nil, internal.ErrNotResourceOwner
	}

	return owner, nil
}

// syncApproval is the single choke point that keeps a timesheet and its
// approval paired. It upserts the approval for the timesheet: status mirrors
// the timesheet, the action date is set for APPROVED/REJECTED and cleared for
// PENDING, and on first materialization the manager comes from the owner's
// department. Every status-affecting timesheet write must route through here.
func (s *Service) syncApproval(store ApprovalStore, ts *Timesheet, managerID *int64) error {
	if !approval.IsValidStatus(ts.ApprovalStatus) {
		return nil
	}

	var actionDate *time.Time
	if ts.ApprovalStatus != approval.StatusPending {
		t := s.now()
		actionDate = &t
	}

	existing, err := store.GetByTimesheetID(ts.ID)
	if err != nil {
		return err
	}

	if existing != nil {
		existing.Status = ts.ApprovalStatus
		existing.ActionDate = actionDate
		return store.Save(existing)
	}

	// A manager-less approval could never be adjudicated, so refuse to
	// materialize one instead of persisting an unreachable state.
	if managerID == nil {
		return internal.ErrNoManagerForApprval
	}

	return store.Save(&approval.Approval{
		TimesheetID: ts.ID,
		ManagerID:   *managerID,
		Status:      ts.ApprovalStatus,
		ActionDate:  actionDate,
	})
}
