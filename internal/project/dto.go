package project

import (
	"strings"
	"time"

	"github.com/tms/timesheet-management/internal"
)

type CreateProjectDTO struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
}

func (dto CreateProjectDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return internal.NewBadRequestError("project name is required", internal.ErrCodeValidationFailed)
	}
	if dto.StartDate.IsZero() || dto.EndDate.IsZero() {
		return internal.NewBadRequestError("start and end dates are required", internal.ErrCodeValidationFailed)
	}
	if dto.EndDate.Before(dto.StartDate) {
		return internal.NewBadRequestError("end date cannot be before start date", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateProjectDTO struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Status      *string    `json:"status,omitempty"`
}

func (dto *UpdateProjectDTO) Validate() error {
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return internal.NewBadRequestError("project name cannot be empty", internal.ErrCodeValidationFailed)
	}
	if dto.Status != nil {
		status := strings.ToUpper(*dto.Status)
		switch status {
		case StatusActive, StatusCompleted, StatusOnHold:
			*dto.Status = status
		default:
			return internal.NewBadRequestError("status must be one of ACTIVE, COMPLETED, ON_HOLD", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

type AssignUserDTO struct {
	UserID        int64  `json:"user_id"`
	RoleInProject string `json:"role_in_project,omitempty"`
}

func (dto *AssignUserDTO) Validate() error {
	if dto.UserID == 0 {
		return internal.NewBadRequestError("user_id is required", internal.ErrCodeValidationFailed)
	}
	if dto.RoleInProject == "" {
		dto.RoleInProject = "DEVELOPER"
	}
	return nil
}
