package project

import (
	"log/slog"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/auth"
)

// Repository defines the data access methods for projects and assignments.
type Repository interface {
	Create(p *Project) error
	GetByID(id int64) (*Project, error)
	GetByName(name string) (*Project, error)
	List() ([]*Project, error)
	ListByDepartment(departmentID int64) ([]*Project, error)
	Update(p *Project) error
	Assign(a *Assignment) error
	Unassign(userID, projectID int64) error
	IsAssigned(userID, projectID int64) (bool, error)
	ListAssignments(projectID int64) ([]*Assignment, error)
}

// MemberStore resolves department membership for assignment checks.
type MemberStore interface {
	GetDepartmentID(userID int64) (*int64, error)
}

// Service manages projects. Creation is manager-only and scoped to the
// manager's own department; admins may act across departments.
type Service struct {
	repo    Repository
	members MemberStore
	logger  *slog.Logger
}

func NewService(repo Repository, members MemberStore, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		members: members,
		logger:  logger,
	}
}

// Create opens a new project in the caller's department. The caller becomes
// the project manager.
func (s *Service) Create(identity auth.Identity, dto CreateProjectDTO) (*Project, error) {
	if !identity.IsManager() {
		return nil, internal.NewForbiddenError("only managers can create projects", internal.ErrCodeRoleRequired)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	deptID, err := s.members.GetDepartmentID(identity.UserID)
	if err != nil {
		return nil, err
	}
	if deptID == nil {
		return nil, internal.NewBadRequestError("manager must belong to a department to create projects", internal.ErrCodeValidationFailed)
	}

	if existing, err := s.repo.GetByName(dto.Name); err == nil && existing != nil {
		return nil, internal.NewConflictError("project name is already taken", internal.ErrCodeValidationFailed)
	}

	p := &Project{
		DepartmentID: *deptID,
		Name:         dto.Name,
		Description:  dto.Description,
		StartDate:    dto.StartDate,
		EndDate:      dto.EndDate,
		Status:       StatusActive,
		ManagerID:    identity.UserID,
	}

	if err := s.repo.Create(p); err != nil {
		s.logger.Error("failed to create project", "error", err, "name", dto.Name)
		return nil, internal.NewInternalError("failed to create project", err)
	}

	s.logger.Info("project created", "project_id", p.ID, "department_id", p.DepartmentID, "manager_id", p.ManagerID)

	return p, nil
}

func (s *Service) Update(identity auth.Identity, id int64, dto UpdateProjectDTO) (*Project, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeProjectManager(identity, p); err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != p.Name {
		if existing, err := s.repo.GetByName(*dto.Name); err == nil && existing != nil {
			return nil, internal.NewConflictError("project name is already taken", internal.ErrCodeValidationFailed)
		}
		p.Name = *dto.Name
	}
	if dto.Description != nil {
		p.Description = *dto.Description
	}
	if dto.StartDate != nil {
		p.StartDate = *dto.StartDate
	}
	if dto.EndDate != nil {
		p.EndDate = *dto.EndDate
	}
	if dto.Status != nil {
		p.Status = *dto.Status
	}
	if p.EndDate.Before(p.StartDate) {
		return nil, internal.NewBadRequestError("end date cannot be before start date", internal.ErrCodeValidationFailed)
	}

	if err := s.repo.Update(p); err != nil {
		s.logger.Error("failed to update project", "error", err, "project_id", id)
		return nil, internal.NewInternalError("failed to update project", err)
	}

	s.logger.Info("project updated", "project_id", p.ID)

	return p, nil
}

func (s *Service) GetByID(id int64) (*Project, error) {
	return s.repo.GetByID(id)
}

// ListForCaller scopes the listing: employees and managers see their
// department's projects, admins see everything.
func (s *Service) ListForCaller(identity auth.Identity) ([]*Project, error) {
	if identity.IsAdmin() {
		return s.repo.List()
	}

	deptID, err := s.members.GetDepartmentID(identity.UserID)
	if err != nil {
		return nil, err
	}
	if deptID == nil {
		return []*Project{}, nil
	}
	return s.repo.ListByDepartment(*deptID)
}

// AssignUser adds a user to the project team. Only the project manager or an
// admin may assign; the user must belong to the project's department.
func (s *Service) AssignUser(identity auth.Identity, projectID int64, dto AssignUserDTO) (*Assignment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(projectID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeProjectManager(identity, p); err != nil {
		return nil, err
	}

	deptID, err := s.members.GetDepartmentID(dto.UserID)
	if err != nil {
		return nil, err
	}
	if deptID == nil || *deptID != p.DepartmentID {
		return nil, internal.NewBadRequestError("user must belong to the project's department", internal.ErrCodeValidationFailed)
	}

	assigned, err := s.repo.IsAssigned(dto.UserID, projectID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check assignment", err)
	}
	if assigned {
		return nil, internal.NewConflictError("user is already assigned to the project", internal.ErrCodeDuplicateAssignment)
	}

	a := &Assignment{
		UserID:        dto.UserID,
		ProjectID:     projectID,
		RoleInProject: dto.RoleInProject,
	}

	if err := s.repo.Assign(a); err != nil {
		s.logger.Error("failed to assign user to project", "error", err, "project_id", projectID, "user_id", dto.UserID)
		return nil, internal.NewInternalError("failed to assign user", err)
	}

	s.logger.Info("user assigned to project", "project_id", projectID, "user_id", dto.UserID)

	return a, nil
}

func (s *Service) UnassignUser(identity auth.Identity, projectID, userID int64) error {
	p, err := s.repo.GetByID(projectID)
	if err != nil {
		return err
	}

	if err := s.authorizeProjectManager(identity, p); err != nil {
		return err
	}

	if err := s.repo.Unassign(userID, projectID); err != nil {
		s.logger.Error("failed to unassign user from project", "error", err, "project_id", projectID, "user_id", userID)
		return internal.NewInternalError("failed to unassign user", err)
	}

	s.logger.Info("user unassigned from project", "project_id", projectID, "user_id", userID)

	return nil
}

func (s *Service) ListAssignments(identity auth.Identity, projectID int64) ([]*Assignment, error) {
	p, err := s.repo.GetByID(projectID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeProjectManager(identity, p); err != nil {
		return nil, err
	}

	return s.repo.ListAssignments(projectID)
}

func (s *Service) authorizeProjectManager(identity auth.Identity, p *Project) error {
	if identity.IsAdmin() {
		return nil
	}
	if !identity.IsManager() || identity.UserID != p.ManagerID {
		return internal.NewForbiddenError("only the project manager can modify the project", internal.ErrCodeNotResourceOwner)
	}
	return nil
}
