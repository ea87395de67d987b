package sse

import (
	"context"

	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance"
	"github.com/campusgeo/attendance-backend-go/internal/domain/subject"
)

// AttendancePublisher forwards committed attendance transitions to the hub.
type AttendancePublisher struct {
	hub *Hub
}

func NewAttendancePublisher(hub *Hub) *AttendancePublisher {
	return &AttendancePublisher{hub: hub}
}

// Publish sends event to TopicAll and, when the record has a course, to that
// course's topic.
func (p *AttendancePublisher) Publish(_ context.Context, event attendance.Event) {
	topics := []string{TopicAll}
	if course := subject.NormalizeCourse(event.Course); course != "" {
		topics = append(topics, CourseTopic(course))
	}
	p.hub.PublishToMany(topics, Event{Event: event.Type, Data: event})
}

// CourseTopic is the topic for one course's live roster.
func CourseTopic(course string) string {
	return "course:" + subject.NormalizeCourse(course)
}
