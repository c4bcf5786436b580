package timesheet

import (
	"time"

	"github.com/tms/timesheet-management/internal/approval"
	timesheetDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/timesheet"
)

// Timesheet is a single day's logged work entry against a project or an
// internal activity. Exactly one of ProjectID and ActivityType is meaningful.
type Timesheet struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	ProjectID      *int64     `json:"project_id,omitempty"`
	ActivityType   *string    `json:"activity_type,omitempty"`
	WorkDate       time.Time  `json:"work_date"`
	HoursWorked    float64    `json:"hours_worked"`
	Description    string     `json:"description"`
	ApprovalStatus string     `json:"approval_status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsPending reports whether the timesheet is still open to employee edits.
// APPROVED and REJECTED are terminal to the employee.
func (t *Timesheet) IsPending() bool {
	return t.ApprovalStatus == approval.StatusPending
}

func ToDataModel(t *Timesheet) *timesheetDatamodel.Timesheet {
	return &timesheetDatamodel.Timesheet{
		ID:             t.ID,
		UserID:         t.UserID,
		ProjectID:      t.ProjectID,
		ActivityType:   t.ActivityType,
		WorkDate:       t.WorkDate,
		HoursWorked:    t.HoursWorked,
		Description:    t.Description,
		ApprovalStatus: t.ApprovalStatus,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func FromDataModel(t *timesheetDatamodel.Timesheet) *Timesheet {
	return &Timesheet{
		ID:             t.ID,
		UserID:         t.UserID,
		ProjectID:      t.ProjectID,
		ActivityType:   t.ActivityType,
		WorkDate:       t.WorkDate,
		HoursWorked:    t.HoursWorked,
		Description:    t.Description,
		ApprovalStatus: t.ApprovalStatus,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func FromDataModelSlice(timesheets []*timesheetDatamodel.Timesheet) []*Timesheet {
	result := make([]*Timesheet, len(timesheets))
	for i, t := range timesheets {
		result[i] = FromDataModel(t)
	}
	return result
}
