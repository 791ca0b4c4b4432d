package notif

// Kind labels what happened to the entity an event refers to.
type Kind string

const (
	KindCreated Kind = "created"
	KindUpdated Kind = "updated"
)

// Entity identifies the kind of aggregate an event refers to.
type Entity string

const (
	EntityPayment Entity = "payment"
	EntityTask    Entity = "task"
)

// Event is a domain event fired after a write on an aggregate that guardians
// care about. The closed set of events is defined by the constructors below;
// listeners re-load related records by ID so an event stays a small value.
type Event struct {
	Entity   Entity `json:"entity"`
	EntityID int    `json:"entity_id"`
	Title    string `json:"title"`
	Subject  string `json:"subject,omitempty"` // school subject, for tasks
	Kind     Kind   `json:"kind"`
}

func PaymentCreated(id int, title string) Event {
	return Event{Entity: EntityPayment, EntityID: id, Title: title, Kind: KindCreated}
}

func TaskCreated(id int, title, subject string) Event {
	return Event{Entity: EntityTask, EntityID: id, Title: title, Subject: subject, Kind: KindCreated}
}

func TaskUpdated(id int, title, subject string) Event {
	return Event{Entity: EntityTask, EntityID: id, Title: title, Subject: subject, Kind: KindUpdated}
}

func (e Event) Name() string {
	return string(e.Entity) + "." + string(e.Kind)
}
