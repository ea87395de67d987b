package attendance

import (
	"context"
	"time"
)

const (
	EventCheckedIn  = "attendance.checked_in"
	EventCheckedOut = "attendance.checked_out"
)

// Event describes a committed transition.
type Event struct {
	Type      string    `json:"type"`
	SubjectID string    `json:"subject_id"`
	Date      string    `json:"date"`
	State     State     `json:"state"`
	At        time.Time `json:"at"`
	Location  string    `json:"location"`
	Course    string    `json:"subject,omitempty"`
}

// EventPublisher fans committed transitions out to live viewers. Publish must
// not block the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher discards events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
