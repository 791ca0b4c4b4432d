package payment

import (
	"time"

	"github.com/bahati/elimu/core"
)

type Payment struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	DueDate   time.Time `json:"due_date"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC

	Assignments []Assignment `json:"assignments,omitempty"`
}

// Assignment links a Payment to one Student it concerns.
type Assignment struct {
	ID        int `json:"id"`
	PaymentID int `json:"payment_id"`
	StudentID int `json:"student_id"`
}

// NewPayment contains information needed to record a new Payment.
type NewPayment struct {
	Title      string    `json:"title" validate:"required"`
	Amount     float64   `json:"amount" validate:"required,gt=0"`
	DueDate    time.Time `json:"due_date" validate:"required"`
	StudentIDs []int     `json:"student_ids" validate:"required,min=1,dive,gt=0"`
}

func (np *NewPayment) Validate() error {
	np.Title = core.CleanString(np.Title)
	return core.Validate.Struct(np)
}
