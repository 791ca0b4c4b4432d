package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/bahati/elimu/core"
)

type Student struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	AdmissionNo string `json:"admission_no"`
	ClassName   string `json:"class_name"`

	// ParentID references the guardian's User record, when one is linked.
	ParentID null.Int `json:"parent_id,omitempty"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (s *Student) HasParent() bool {
	return s.ParentID.Valid && s.ParentID.Int > 0
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	Name        string `json:"name" validate:"required"`
	AdmissionNo string `json:"admission_no" validate:"required,alphanum_"`
	ClassName   string `json:"class_name" validate:"required"`
	ParentID    *int   `json:"parent_id"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.AdmissionNo = core.CleanString(ns.AdmissionNo, true /* lower */)
	ns.ClassName = core.CleanString(ns.ClassName)
	return core.Validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
	ParentID  *int   `json:"parent_id"`
}

func (us *UpdateStudent) Validate(orig Student) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	className := core.CleanString(us.ClassName)
	if className != "" {
		us.ClassName = className
	} else {
		us.ClassName = orig.ClassName
	}
	return core.Validate.Struct(us)
}
