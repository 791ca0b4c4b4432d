package task

import (
	"time"

	"github.com/bahati/elimu/core"
)

type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Subject     string    `json:"subject"` // school subject, e.g. "Mathematics"
	DueDate     time.Time `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC

	Assignments []Assignment `json:"assignments,omitempty"`
}

// Assignment links a Task to one Student it concerns.
type Assignment struct {
	ID        int `json:"id"`
	TaskID    int `json:"task_id"`
	StudentID int `json:"student_id"`
}

// NewTask contains information needed to create a new Task.
type NewTask struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Subject     string    `json:"subject" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
	StudentIDs  []int     `json:"student_ids" validate:"required,min=1,dive,gt=0"`
}

func (nt *NewTask) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	nt.Subject = core.CleanString(nt.Subject)
	return core.Validate.Struct(nt)
}

// UpdateTask defines what information may be provided to modify an existing Task.
type UpdateTask struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Subject     string     `json:"subject"`
	DueDate     *time.Time `json:"due_date"`
}

func (ut *UpdateTask) Validate(orig Task) error {
	title := core.CleanString(ut.Title)
	if title != "" {
		ut.Title = title
	} else {
		ut.Title = orig.Title
	}

	subject := core.CleanString(ut.Subject)
	if subject != "" {
		ut.Subject = subject
	} else {
		ut.Subject = orig.Subject
	}
	return core.Validate.Struct(ut)
}
