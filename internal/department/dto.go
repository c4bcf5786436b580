package department

import (
	"strings"

	"github.com/tms/timesheet-management/internal"
)

type CreateDepartmentDTO struct {
	Name      string `json:"name"`
	ManagerID *int64 `json:"manager_id,omitempty"`
}

func (dto CreateDepartmentDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return internal.NewBadRequestError("department name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateDepartmentDTO struct {
	Name      *string `json:"name,omitempty"`
	ManagerID *int64  `json:"manager_id,omitempty"`
}

func (dto UpdateDepartmentDTO) Validate() error {
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return internal.NewBadRequestError("department name cannot be empty", internal.ErrCodeValidationFailed)
	}
	return nil
}
