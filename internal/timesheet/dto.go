package timesheet

import (
	"time"

	"github.com/tms/timesheet-management/internal"
)

const (
	maxDescriptionLength  = 500
	maxActivityTypeLength = 100
)

// CreateTimesheetDTO is the request payload for logging a work entry.
// UserID defaults to the caller when omitted; managers and admins may log on
// behalf of another user.
type CreateTimesheetDTO struct {
	UserID       int64     `json:"user_id,omitempty"`
	ProjectID    *int64    `json:"project_id,omitempty"`
	ActivityType *string   `json:"activity_type,omitempty"`
	WorkDate     time.Time `json:"work_date"`
	HoursWorked  float64   `json:"hours_worked"`
	Description  string    `json:"description,omitempty"`
}

func (dto CreateTimesheetDTO) Validate() error {
	if dto.WorkDate.IsZero() {
		return internal.NewBadRequestError("work date is required", internal.ErrCodeInvalidWorkDate)
	}
	if dto.HoursWorked < 0 {
		return internal.NewBadRequestError("hours worked must be at least 0", internal.ErrCodeInvalidHours)
	}
	hasProject := dto.ProjectID != nil
	hasActivity := dto.ActivityType != nil && *dto.ActivityType != ""
	if !hasProject && !hasActivity {
		return internal.NewBadRequestError("either a project or an activity type is required", internal.ErrCodeValidationFailed)
	}
	if hasProject && hasActivity {
		return internal.NewBadRequestError("project and activity type are mutually exclusive", internal.ErrCodeValidationFailed)
	}
	if hasActivity && len(*dto.ActivityType) > maxActivityTypeLength {
		return internal.NewBadRequestError("activity type cannot exceed 100 characters", internal.ErrCodeValidationFailed)
	}
	if len(dto.Description) > maxDescriptionLength {
		return internal.NewBadRequestError("description cannot exceed 500 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateTimesheetDTO carries a partial update: nil fields are left untouched.
// Approval status is never accepted from the caller; every employee edit
// forces the timesheet back to PENDING.
type UpdateTimesheetDTO struct {
	WorkDate     *time.Time `json:"work_date,omitempty"`
	HoursWorked  *float64   `json:"hours_worked,omitempty"`
	Description  *string    `json:"description,omitempty"`
	ActivityType *string    `json:"activity_type,omitempty"`
}

func (dto UpdateTimesheetDTO) Validate() error {
	if dto.WorkDate != nil && dto.WorkDate.IsZero() {
		return internal.NewBadRequestError("work date cannot be empty", internal.ErrCodeInvalidWorkDate)
	}
	if dto.HoursWorked != nil && *dto.HoursWorked < 0 {
		return internal.NewBadRequestError("hours worked must be at least 0", internal.ErrCodeInvalidHours)
	}
	if dto.ActivityType != nil && len(*dto.ActivityType) > maxActivityTypeLength {
		return internal.NewBadRequestError("activity type cannot exceed 100 characters", internal.ErrCodeValidationFailed)
	}
	if dto.Description != nil && len(*dto.Description) > maxDescriptionLength {
		return internal.NewBadRequestError("description cannot exceed 500 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}
