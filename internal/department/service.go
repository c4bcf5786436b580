package department

import (
	"log/slog"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/auth"
)

// Repository defines the data access methods for departments.
type Repository interface {
	Create(d *Department) error
	GetByID(id int64) (*Department, error)
	GetByName(name string) (*Department, error)
	List() ([]*Department, error)
	Update(d *Department) error
	Delete(id int64) error
	CountMembers(id int64) (int64, error)
}

// ManagerStore checks that a referenced manager exists and carries the role.
type ManagerStore interface {
	IsManager(userID int64) (bool, error)
}

// Service manages departments. Mutations are admin-only.
type Service struct {
	repo     Repository
	managers ManagerStore
	logger   *slog.Logger
}

func NewService(repo Repository, managers ManagerStore, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		managers: managers,
		logger:   logger,
	}
}

func (s *Service) Create(identity auth.Identity, dto CreateDepartmentDTO) (*Department, error) {
	if !identity.IsAdmin() {
		return nil, internal.NewForbiddenError("only admins can manage departments", internal.ErrCodeRoleRequired)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByName(dto.Name); err == nil && existing != nil {
		return nil, internal.NewConflictError("department name is already taken", internal.ErrCodeValidationFailed)
	}

	if dto.ManagerID != nil {
		if err := s.checkManager(*dto.ManagerID); err != nil {
			return nil, err
		}
	}

	d := &Department{
		Name:      dto.Name,
		ManagerID: dto.ManagerID,
	}

	if err := s.repo.Create(d); err != nil {
		s.logger.Error("failed to create department", "error", err, "name", dto.Name)
		return nil, internal.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "department_id", d.ID, "name", d.Name)

	return d, nil
}

func (s *Service) Update(identity auth.Identity, id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if !identity.IsAdmin() {
		return nil, internal.NewForbiddenError("only admins can manage departments", internal.ErrCodeRoleRequired)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	d, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != d.Name {
		if existing, err := s.repo.GetByName(*dto.Name); err == nil && existing != nil {
			return nil, internal.NewConflictError("department name is already taken", internal.ErrCodeValidationFailed)
		}
		d.Name = *dto.Name
	}
	if dto.ManagerID != nil {
		if err := s.checkManager(*dto.ManagerID); err != nil {
			return nil, err
		}
		d.ManagerID = dto.ManagerID
	}

	if err := s.repo.Update(d); err != nil {
		s.logger.Error("failed to update department", "error", err, "department_id", id)
		return nil, internal.NewInternalError("failed to update department", err)
	}

	s.logger.Info("department updated", "department_id", d.ID)

	return d, nil
}

// Delete removes a department; refused while users still belong to it so no
// employee silently loses their approval chain.
func (s *Service) Delete(identity auth.Identity, id int64) error {
	if !identity.IsAdmin() {
		return internal.NewForbiddenError("only admins can manage departments", internal.ErrCodeRoleRequired)
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return err
	}

	members, err := s.repo.CountMembers(id)
	if err != nil {
		return internal.NewInternalError("failed to count department members", err)
	}
	if members > 0 {
		return internal.NewConflictError("department still has members", internal.ErrCodeDepartmentNotEmpty)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete department", "error", err, "department_id", id)
		return internal.NewInternalError("failed to delete department", err)
	}

	s.logger.Info("department deleted", "department_id", id)

	return nil
}

func (s *Service) GetByID(id int64) (*Department, error) {
	return s.repo.GetByID(id)
}

func (s *Service) List() ([]*Department, error) {
	return s.repo.List()
}

func (s *Service) checkManager(managerID int64) error {
	ok, err := s.managers.IsManager(managerID)
	if err != nil {
		return internal.NewInternalError("failed to check manager", err)
	}
	if !ok {
		return internal.NewBadRequestError("manager_id must reference a user with the MANAGER role", internal.ErrCodeValidationFailed)
	}
	return nil
}
