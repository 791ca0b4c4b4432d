package inmemdb

import (
	"fmt"

	"github.com/bahati/elimu/core/notif"
)

type assignmentSource struct {
	payment *paymentTable
	task    *taskTable
}

var _ notif.AssignmentSource = (*assignmentSource)(nil) // interface compliance check

func NewAssignmentSource(db *DB) *assignmentSource {
	return &assignmentSource{payment: db.payment, task: db.task}
}

func (src *assignmentSource) AssignedStudentIDs(e notif.Entity, entityID int) ([]int, error) {
	switch e {
	case notif.EntityPayment:
		src.payment.mutex.RLock()
		defer src.payment.mutex.RUnlock()

		assignments := src.payment.assignments[entityID]
		ids := make([]int, 0, len(assignments))
		for _, a := range assignments {
			ids = append(ids, a.StudentID)
		}
		return ids, nil

	case notif.EntityTask:
		src.task.mutex.RLock()
		defer src.task.mutex.RUnlock()

		assignments := src.task.assignments[entityID]
		ids := make([]int, 0, len(assignments))
		for _, a := range assignments {
			ids = append(ids, a.StudentID)
		}
		return ids, nil
	}
	return nil, fmt.Errorf("unknown entity %q", e)
}
