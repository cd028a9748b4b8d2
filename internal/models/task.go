package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	StatusAssigned   = "ASSIGNED"
	StatusAccepted   = "ACCEPTED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
)

type Task struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Status      string    `json:"status" gorm:"not null;default:'ASSIGNED'"`
	Priority    string    `json:"priority" gorm:"not null;default:'MEDIUM'"`

	// AssignedBy is fixed at creation to the admin who created the task
	// and is never taken from a request payload.
	AssignedTo uuid.UUID `json:"assigned_to" gorm:"type:uuid;not null;index"`
	AssignedBy uuid.UUID `json:"assigned_by" gorm:"type:uuid;not null"`

	DueDate *time.Time `json:"due_date" gorm:"type:date"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Assignee *User `json:"-" gorm:"foreignKey:AssignedTo"`
}

func ValidStatus(s string) bool {
	switch s {
	case StatusAssigned, StatusAccepted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// IsOverdue reports whether the task's due date has passed without the
// task reaching COMPLETED. Tasks without a due date are never overdue.
func (t *Task) IsOverdue(today time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	y, m, d := today.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := t.DueDate.Date()
	due := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return due.Before(day) && t.Status != StatusCompleted
}
