package domain

import "time"

// EventType represents the type of game event.
type EventType string

const (
	EventSpeak       EventType = "SPEAK"
	EventNominate    EventType = "NOMINATE"
	EventVote        EventType = "VOTE"
	EventKill        EventType = "KILL"
	EventEliminate   EventType = "ELIMINATE"
	EventNightAction EventType = "NIGHT_ACTION"
	EventPhaseChange EventType = "PHASE_CHANGE"
)

// Event is one entry in the append-only game log.
type Event struct {
	Type      EventType         `json:"type"`
	Phase     Phase             `json:"phase"`
	Day       int               `json:"day"`
	PlayerID  string            `json:"playerId,omitempty"`
	TargetID  string            `json:"targetId,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// EventLog records everything that happens in a game, in order.
type EventLog struct {
	events []Event
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Append adds an event to the log and returns it.
func (l *EventLog) Append(e Event) Event {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	l.events = append(l.events, e)
	return e
}

// All returns a copy of the full log.
func (l *EventLog) All() []Event {
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// ByType returns all events of a specific type, in order.
func (l *EventLog) ByType(t EventType) []Event {
	var out []Event
	for _, e := range l.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// ByDay returns all events from a specific day, in order.
func (l *EventLog) ByDay(day int) []Event {
	var out []Event
	for _, e := range l.events {
		if e.Day == day {
			out = append(out, e)
		}
	}
	return out
}
