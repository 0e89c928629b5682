package events

// Type identifies a poll lifecycle event on the stream.
type Type string

const (
	TypePollCreated Type = "poll_created"
	TypePollUpdated Type = "poll_updated"
	TypePollDeleted Type = "poll_deleted"
)

// Event is a single unit broadcast to stream subscribers. Events are
// immutable once constructed and are not persisted: only subscribers
// connected at publish time can observe them.
type Event struct {
	Type    Type `json:"event_type"`
	Payload any  `json:"payload"`
}

// NewPollEvent builds an event carrying a full poll snapshot, used for
// poll_created and poll_updated.
func NewPollEvent(t Type, poll any) Event {
	return Event{
		Type:    t,
		Payload: map[string]any{"poll": poll},
	}
}

// NewPollDeletedEvent builds a poll_deleted event. The poll row is gone by
// the time the event is published, so the payload carries only the id.
func NewPollDeletedEvent(pollID string) Event {
	return Event{
		Type:    TypePollDeleted,
		Payload: map[string]any{"poll_id": pollID},
	}
}
