package timesheet

import "time"

type Timesheet struct {
	ID             int64     `gorm:"primaryKey"`
	UserID         int64     `gorm:"column:user_id;not null"`
	ProjectID      *int64    `gorm:"column:project_id"`
	ActivityType   *string   `gorm:"column:activity_type;size:100"`
	WorkDate       time.Time `gorm:"column:work_date;type:date;not null"`
	HoursWorked    float64   `gorm:"column:hours_worked;not null"`
	Description    string    `gorm:"column:description;size:500"`
	ApprovalStatus string    `gorm:"column:approval_status;not null;default:PENDING"`
	CreatedAt      time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time `gorm:"column:updated_at;default:now()"`
}

func (Timesheet) TableName() string {
	return "timesheets"
}
