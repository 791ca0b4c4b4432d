package notif

import (
	"time"

	"github.com/google/uuid"

	"github.com/bahati/elimu/core/user"
)

// Job is one unit of notification delivery work: a single event notified to a
// single recipient. Its lifecycle ends at delivery; jobs are never persisted.
type Job struct {
	ID         uuid.UUID
	Event      Event
	Recipient  user.User
	EnqueuedAt time.Time
}

func NewJob(e Event, recipient user.User) Job {
	return Job{
		ID:         uuid.New(),
		Event:      e,
		Recipient:  recipient,
		EnqueuedAt: time.Now().UTC(),
	}
}
