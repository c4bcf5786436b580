package approval

import (
	"log/slog"
	"time"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/auth"
)

// Repository defines the data access methods for approvals.
type Repository interface {
	GetByID(id int64) (*Approval, error)
	ListByManager(managerID int64) ([]*Approval, error)
	Save(a *Approval) error
}

// TimesheetStore is the slice of timesheet persistence the adjudication path
// needs: propagating the adjudicated status onto the paired timesheet and
// resolving display details for views.
type TimesheetStore interface {
	SetApprovalStatus(timesheetID int64, status string) error
	GetDetail(timesheetID int64) (*TimesheetDetail, error)
}

// TxRepos carries the repositories bound to one transaction.
type TxRepos struct {
	Approvals  Repository
	Timesheets TimesheetStore
}

// TxManager runs fn inside a single persistence transaction; the approval and
// its paired timesheet are never updated independently.
type TxManager interface {
	Do(fn func(TxRepos) error) error
}

// Service adjudicates approvals. It is the only writer that moves an approval
// out of PENDING, and every status write is mirrored onto the paired timesheet
// within the same transaction.
type Service struct {
	repo       Repository
	timesheets TimesheetStore
	tx         TxManager
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo Repository, timesheets TimesheetStore, tx TxManager, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		timesheets: timesheets,
		tx:         tx,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the wall clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// UpdateStatus adjudicates an approval. Only the assigned manager may act, the
// status must be APPROVED or REJECTED (case-insensitive), and the paired
// timesheet is updated in the same transaction. Re-adjudicating an already
// actioned approval is permitted: it is the correction workflow, and simply
// runs the same transition again with a fresh action date.
func (s *Service) UpdateStatus(identity auth.Identity, approvalID int64, dto UpdateStatusDTO) (*Approval, error) {
	a, err := s.repo.GetByID(approvalID)
	if err != nil {
		return nil, err
	}

	status, ok := NormalizeActionStatus(dto.Status)
	if !ok {
		s.logger.Warn("adjudication rejected: invalid status",
			"approval_id", approvalID, "status", dto.Status)
		return nil, internal.ErrInvalidStatus
	}

	if identity.UserID != a.ManagerID {
		s.logger.Warn("adjudication rejected: caller is not the assigned manager",
			"approval_id", approvalID,
			"caller_id", identity.UserID,
			"manager_id", a.ManagerID)
		return nil, internal.ErrNotAssignedManager
	}

	actionDate := s.now()
	a.Status = status
	a.ActionDate = &actionDate
	if dto.Remarks != nil {
		a.Comments = dto.Remarks
	}

	err = s.tx.Do(func(r TxRepos) error {
		if err := r.Approvals.Save(a); err != nil {
			return err
		}
		return r.Timesheets.SetApprovalStatus(a.TimesheetID, status)
	})
	if err != nil {
		s.logger.Error("failed to persist adjudication", "error", err, "approval_id", approvalID)
		return nil, internal.NewInternalError("failed to update approval", err)
	}

	s.logger.Info("approval adjudicated",
		"approval_id", a.ID,
		"timesheet_id", a.TimesheetID,
		"manager_id", a.ManagerID,
		"status", status)

	return a, nil
}

// GetByID returns an approval; only the assigned manager or an admin may read it.
func (s *Service) GetByID(identity auth.Identity, approvalID int64) (*Approval, error) {
	a, err := s.repo.GetByID(approvalID)
	if err != nil {
		return nil, err
	}

	if !identity.IsAdmin() && identity.UserID != a.ManagerID {
		return nil, internal.ErrNotAssignedManager
	}

	return a, nil
}

// ListForManager returns the denormalized approval views for a manager's queue.
func (s *Service) ListForManager(identity auth.Identity, managerID int64) ([]ApprovalView, error) {
	if !identity.IsAdmin() && identity.UserID != managerID {
		return nil, internal.ErrNotAssignedManager
	}

	approvals, err := s.repo.ListByManager(managerID)
	if err != nil {
		s.logger.Error("failed to list approvals", "error", err, "manager_id", managerID)
		return nil, internal.NewInternalError("failed to list approvals", err)
	}

	views := make([]ApprovalView, 0, len(approvals))
	for _, a := range approvals {
		detail, err := s.timesheets.GetDetail(a.TimesheetID)
		if err != nil {
			s.logger.Error("failed to resolve timesheet detail for approval",
				"error", err, "approval_id", a.ID, "timesheet_id", a.TimesheetID)
			return nil, internal.NewInternalError("failed to list approvals", err)
		}
		views = append(views, BuildView(a, detail))
	}

	return views, nil
}
