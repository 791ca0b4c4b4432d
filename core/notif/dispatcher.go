package notif

import (
	"fmt"

	"github.com/bahati/elimu/core"
	"github.com/bahati/elimu/core/student"
	"github.com/bahati/elimu/core/user"
)

type (
	// AssignmentSource resolves which students an aggregate was assigned to.
	// Implementations return IDs in store order; no ordering is guaranteed.
	AssignmentSource interface {
		AssignedStudentIDs(e Entity, entityID int) ([]int, error)
	}

	StudentSource interface {
		GetStudentByID(id int) (student.Student, error)
	}

	UserSource interface {
		GetUserByID(id int) (user.User, error)
	}
)

// Dispatcher listens for domain events and enqueues one delivery job per
// eligible (recipient, assignment) pair. A recipient is eligible when the
// assignment's student has a linked parent with the parent role and a
// non-empty notification key. Missing relations mean "nothing to notify",
// never an error; recipients are deliberately not de-duplicated across
// assignments of the same event.
type Dispatcher struct {
	assignments AssignmentSource
	students    StudentSource
	users       UserSource
	queue       *Queue
	logger      core.Logger
}

var _ Listener = (*Dispatcher)(nil)

func NewDispatcher(
	queue *Queue,
	assignments AssignmentSource,
	students StudentSource,
	users UserSource,
	logger core.Logger,
) *Dispatcher {
	return &Dispatcher{
		assignments: assignments,
		students:    students,
		users:       users,
		queue:       queue,
		logger:      logger,
	}
}

func (d *Dispatcher) Handle(e Event) {
	studentIDs, err := d.assignments.AssignedStudentIDs(e.Entity, e.EntityID)
	if err != nil {
		// a failed load yields an empty traversal, not a failure
		d.logger.Warn(fmt.Sprintf("notif: loading assignments for %s#%d", e.Entity, e.EntityID), err)
		return
	}

	for _, sid := range studentIDs {
		recipient, ok := d.resolveRecipient(sid)
		if !ok {
			continue
		}
		d.queue.Enqueue(NewJob(e, recipient))
	}
}

// resolveRecipient walks student -> parent and applies the eligibility filter.
// A missing student, missing parent or empty notification key is silent.
func (d *Dispatcher) resolveRecipient(studentID int) (user.User, bool) {
	stu, err := d.students.GetStudentByID(studentID)
	if err != nil {
		d.logger.Debug(fmt.Sprintf("notif: student %d not found, skipping", studentID))
		return user.User{}, false
	}
	if !stu.HasParent() {
		return user.User{}, false
	}

	parent, err := d.users.GetUserByID(stu.ParentID.Int)
	if err != nil {
		d.logger.Debug(fmt.Sprintf("notif: parent %d of student %d not found, skipping", stu.ParentID.Int, studentID))
		return user.User{}, false
	}
	if !parent.IsParent() || !parent.IsNotifiable() {
		return user.User{}, false
	}
	return parent, true
}
