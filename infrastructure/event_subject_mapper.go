package infrastructure

import (
	"fmt"

	"arenaapp/domain/events"
)

// DomainEventStream is the JetStream stream every arena subject belongs to
const DomainEventStream = "arena_events"

var subjectsByEventType = map[events.EventType]string{
	events.EventTypeParticipantRegistered: "arena.participants.registered",
	events.EventTypeContestCreated:        "arena.contests.created",
	events.EventTypeContestAccepted:       "arena.contests.accepted",
	events.EventTypeContestCancelled:      "arena.contests.cancelled",
	events.EventTypeContestSettled:        "arena.contests.settled",
	events.EventTypeWagerPlaced:           "arena.wagers.placed",
	events.EventTypeVoteCast:              "arena.wagers.voted",
	events.EventTypeWinningsClaimed:       "arena.wagers.claimed",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByEventType[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("arena.unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByEventType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns the subjects captured by the domain event stream
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{"arena.>"}
}
