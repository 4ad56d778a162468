package events

import "time"

// DomainEvent is the interface implemented by all events emitted by the core
type DomainEvent interface {
	// GetEventType returns the event type constant
	GetEventType() string
	// GetAggregateID returns the id of the command, workflow, or entity the event concerns
	GetAggregateID() string
	// GetTimestamp returns when the event occurred
	GetTimestamp() time.Time
}

// BaseEvent provides the common fields shared by all events
type BaseEvent struct {
	EventType   string    `json:"eventType"`
	AggregateID string    `json:"aggregateId"`
	Timestamp   time.Time `json:"timestamp"`
}

// GetEventType returns the event type
func (e BaseEvent) GetEventType() string {
	return e.EventType
}

// GetAggregateID returns the aggregate ID
func (e BaseEvent) GetAggregateID() string {
	return e.AggregateID
}

// GetTimestamp returns the event timestamp
func (e BaseEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

func newBase(eventType, aggregateID string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		AggregateID: aggregateID,
		Timestamp:   time.Now(),
	}
}
