package sqlxrepos

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/bahati/elimu/core/notif"
)

type assignmentSource struct {
	db *sqlx.DB
}

var _ notif.AssignmentSource = (*assignmentSource)(nil) // interface compliance check

func NewAssignmentSource(db *sqlx.DB) *assignmentSource {
	return &assignmentSource{db: db}
}

func (src assignmentSource) AssignedStudentIDs(e notif.Entity, entityID int) ([]int, error) {
	var query string
	switch e {
	case notif.EntityPayment:
		query = `SELECT student_id FROM payment_assignment WHERE payment_id = $1`
	case notif.EntityTask:
		query = `SELECT student_id FROM task_assignment WHERE task_id = $1`
	default:
		return nil, fmt.Errorf("unknown entity %q", e)
	}

	var ids []int
	if err := src.db.Select(&ids, query, entityID); err != nil {
		return nil, errors.Wrapf(err, "querying %s assignments", e)
	}
	return ids, nil
}
