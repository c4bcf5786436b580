package user

import (
	"net/mail"
	"strings"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/auth"
)

const minPasswordLength = 8

type CreateUserDTO struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Role         string  `json:"role"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
	DepartmentID *int64  `json:"department_id,omitempty"`
}

func (dto *CreateUserDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return internal.NewBadRequestError("name is required", internal.ErrCodeValidationFailed)
	}
	if _, err := mail.ParseAddress(dto.Email); err != nil {
		return internal.NewBadRequestError("a valid email is required", internal.ErrCodeValidationFailed)
	}
	if len(dto.Password) < minPasswordLength {
		return internal.NewBadRequestError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	dto.Role = strings.ToUpper(dto.Role)
	switch dto.Role {
	case auth.RoleAdmin, auth.RoleManager, auth.RoleEmployee:
	case "":
		dto.Role = auth.RoleEmployee
	default:
		return internal.NewBadRequestError("role must be one of ADMIN, MANAGER, EMPLOYEE", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateUserDTO carries a partial update: nil fields are left untouched.
type UpdateUserDTO struct {
	Name         *string `json:"name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Password     *string `json:"password,omitempty"`
	Role         *string `json:"role,omitempty"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
	DepartmentID *int64  `json:"department_id,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

func (dto *UpdateUserDTO) Validate() error {
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return internal.NewBadRequestError("name cannot be empty", internal.ErrCodeValidationFailed)
	}
	if dto.Email != nil {
		if _, err := mail.ParseAddress(*dto.Email); err != nil {
			return internal.NewBadRequestError("a valid email is required", internal.ErrCodeValidationFailed)
		}
	}
	if dto.Password != nil && len(*dto.Password) < minPasswordLength {
		return internal.NewBadRequestError("password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	if dto.Role != nil {
		role := strings.ToUpper(*dto.Role)
		switch role {
		case auth.RoleAdmin, auth.RoleManager, auth.RoleEmployee:
			*dto.Role = role
		default:
			return internal.NewBadRequestError("role must be one of ADMIN, MANAGER, EMPLOYEE", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}
