package approval

import "time"

// Approval pairs one-to-one with a timesheet; the unique index on timesheet_id
// enforces the at-most-one pairing at the storage layer.
type Approval struct {
	ID          int64      `gorm:"primaryKey"`
	TimesheetID int64      `gorm:"column:timesheet_id;uniqueIndex;not null"`
	ManagerID   int64      `gorm:"column:manager_id;not null"`
	Status      string     `gorm:"column:status;not null;default:PENDING"`
	Comments    *string    `gorm:"column:comments;size:500"`
	ActionDate  *time.Time `gorm:"column:action_date"`
	CreatedAt   time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Approval) TableName() string {
	return "approvals"
}
