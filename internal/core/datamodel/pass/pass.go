package pass

import "time"

type Pass struct {
	ID              int64      `gorm:"primaryKey"`
	UserID          int64      `gorm:"column:user_id;not null;index"`
	Type            string     `gorm:"column:type;type:varchar(32);not null"`
	Purpose         string     `gorm:"column:purpose;not null"`
	Location        *string    `gorm:"column:location"`
	StartDate       time.Time  `gorm:"column:start_date;not null"`
	EndDate         time.Time  `gorm:"column:end_date;not null"`
	Notes           *string    `gorm:"column:notes;type:varchar(1000)"`
	Status          string     `gorm:"column:status;type:varchar(16);not null;index"`
	RequestedAt     time.Time  `gorm:"column:requested_at;not null"`
	DecidedBy       *int64     `gorm:"column:decided_by"`
	DecidedAt       *time.Time `gorm:"column:decided_at"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (Pass) TableName() string {
	return "passes"
}

// PassWithOwner is a pass row joined with its owner's profile and the name of
// the deciding administrator.
type PassWithOwner struct {
	ID              int64      `gorm:"column:id"`
	UserID          int64      `gorm:"column:user_id"`
	Type            string     `gorm:"column:type"`
	Purpose         string     `gorm:"column:purpose"`
	Location        *string    `gorm:"column:location"`
	StartDate       time.Time  `gorm:"column:start_date"`
	EndDate         time.Time  `gorm:"column:end_date"`
	Notes           *string    `gorm:"column:notes"`
	Status          string     `gorm:"column:status"`
	RequestedAt     time.Time  `gorm:"column:requested_at"`
	DecidedBy       *int64     `gorm:"column:decided_by"`
	DecidedAt       *time.Time `gorm:"column:decided_at"`
	RejectionReason *string    `gorm:"column:rejection_reason"`
	OwnerName       string     `gorm:"column:owner_name"`
	OwnerEmail      string     `gorm:"column:owner_email"`
	OwnerDepartment string     `gorm:"column:owner_department"`
	DeciderName     *string    `gorm:"column:decider_name"`
}
