package user

import (
	"log/slog"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/auth"
)

// Repository defines the data access methods for users.
type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	List() ([]*User, error)
	Update(u *User) error
	Delete(id int64) error
}

// DepartmentStore is the department slice user management needs: checking a
// department exists and keeping its manager reference current.
type DepartmentStore interface {
	Exists(departmentID int64) (bool, error)
	SetManager(departmentID int64, managerID *int64) error
	GetManagerID(departmentID int64) (*int64, error)
}

// Hasher abstracts password hashing so the service stays testable without
// paying bcrypt cost in every test.
type Hasher interface {
	HashPassword(password string) (string, error)
}

// Service manages user accounts. All mutations are admin-only; the handler
// layer enforces that via RBAC middleware, and the service re-checks it so
// authorization never silently depends on routing.
type Service struct {
	repo        Repository
	departments DepartmentStore
	hasher      Hasher
	logger      *slog.Logger
}

func NewService(repo Repository, departments DepartmentStore, hasher Hasher, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		departments: departments,
		hasher:      hasher,
		logger:      logger,
	}
}

// Create registers a new user. When a manager is placed into a department that
// has no manager yet, the department's manager slot is assigned automatically.
func (s *Service) Create(identity auth.Identity, dto CreateUserDTO) (*User, error) {
	if !identity.IsAdmin() {
		return nil, internal.NewForbiddenError("only admins can manage users", internal.ErrCodeRoleRequired)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		return nil, internal.NewConflictError("email is already registered", internal.ErrCodeDuplicateEmail)
	}

	if dto.DepartmentID != nil {
		exists, err := s.departments.Exists(*dto.DepartmentID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check department", err)
		}
		if !exists {
			return nil, internal.ErrDepartmentNotFound
		}
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		Role:         dto.Role,
		PhoneNumber:  dto.PhoneNumber,
		DepartmentID: dto.DepartmentID,
		IsActive:     true,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	if err := s.maybeAssignDepartmentManager(u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)

	return u, nil
}

// Update applies a partial edit to a user.
func (s *Service) Update(identity auth.Identity, id int64, dto UpdateUserDTO) (*User, error) {
	if !identity.IsAdmin() {
		return nil, internal.NewForbiddenError("only admins can manage users", internal.ErrCodeRoleRequired)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Email != nil && *dto.Email != u.Email {
		if existing, err := s.repo.GetByEmail(*dto.Email); err == nil && existing != nil {
			return nil, internal.NewConflictError("email is already registered", internal.ErrCodeDuplicateEmail)
		}
		u.Email = *dto.Email
	}
	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Password != nil {
		hash, err := s.hasher.HashPassword(*dto.Password)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = hash
	}
	if dto.Role != nil {
		u.Role = *dto.Role
	}
	if dto.PhoneNumber != nil {
		u.PhoneNumber = dto.PhoneNumber
	}
	if dto.DepartmentID != nil {
		exists, err := s.departments.Exists(*dto.DepartmentID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check department", err)
		}
		if !exists {
			return nil, internal.ErrDepartmentNotFound
		}
		u.DepartmentID = dto.DepartmentID
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to update user", err)
	}

	if err := s.maybeAssignDepartmentManager(u); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "user_id", u.ID)

	return u, nil
}

// Deactivate soft-disables an account instead of deleting it; timesheets and
// approvals keep their historical references.
func (s *Service) Deactivate(identity auth.Identity, id int64) error {
	if !identity.IsAdmin() {
		return internal.NewForbiddenError("only admins can manage users", internal.ErrCodeRoleRequired)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	u.IsActive = false
	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to deactivate user", "error", err, "user_id", id)
		return internal.NewInternalError("failed to deactivate user", err)
	}

	s.logger.Info("user deactivated", "user_id", id)

	return nil
}

// GetByID returns a user; non-admins may only read themselves.
func (s *Service) GetByID(identity auth.Identity, id int64) (*User, error) {
	if !identity.IsAdmin() && identity.UserID != id {
		return nil, internal.ErrNotResourceOwner
	}
	return s.repo.GetByID(id)
}

func (s *Service) List(identity auth.Identity) ([]*User, error) {
	if !identity.IsAdmin() && !identity.IsManager() {
		return nil, internal.NewForbiddenError("only managers and admins can list users", internal.ErrCodeRoleRequired)
	}
	return s.repo.List()
}

// maybeAssignDepartmentManager fills an empty department manager slot when a
// manager is placed into that department. An occupied slot is left alone.
func (s *Service) maybeAssignDepartmentManager(u *User) error {
	if u.Role != auth.RoleManager || u.DepartmentID == nil {
		return nil
	}

	current, err := s.departments.GetManagerID(*u.DepartmentID)
	if err != nil {
		return internal.NewInternalError("failed to check department manager", err)
	}
	if current != nil {
		return nil
	}

	if err := s.departments.SetManager(*u.DepartmentID, &u.ID); err != nil {
		return internal.NewInternalError("failed to assign department manager", err)
	}

	s.logger.Info("department manager assigned", "department_id", *u.DepartmentID, "manager_id", u.ID)

	return nil
}
