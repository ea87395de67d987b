package sse

import (
	"context"
	"testing"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicOnly(t *testing.T) {
	hub := NewHub()
	all, cleanupAll := hub.Subscribe(TopicAll)
	defer cleanupAll()
	other, cleanupOther := hub.Subscribe("course:os")
	defer cleanupOther()

	hub.Publish(TopicAll, Event{Event: "ping", Data: 1})

	select {
	case ev := <-all:
		assert.Equal(t, "ping", ev.Event)
		assert.Equal(t, TopicAll, ev.Topic)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
	assert.Empty(t, other)
}

func TestHub_FullSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	_, cleanup := hub.Subscribe(TopicAll)
	defer cleanup()

	done := make(chan struct{})
	go func() {
		for i := 0; i < hub.bufferSize*3; i++ {
			hub.Publish(TopicAll, Event{Event: "tick"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestHub_CleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe(TopicAll)
	require.Equal(t, 1, hub.TotalSubscribers())

	cleanup()
	cleanup()

	assert.Equal(t, 0, hub.SubscriberCount(TopicAll))
	_, open := <-ch
	assert.False(t, open)
}

func TestAttendancePublisher_RoutesByCourse(t *testing.T) {
	hub := NewHub()
	all, cleanupAll := hub.Subscribe(TopicAll)
	defer cleanupAll()
	dbms, cleanupDBMS := hub.Subscribe(CourseTopic("DBMS"))
	defer cleanupDBMS()

	pub := NewAttendancePublisher(hub)
	pub.Publish(context.Background(), attendance.Event{Type: attendance.EventCheckedIn, SubjectID: "S1", Course: " dbms"})

	for _, ch := range []<-chan Event{all, dbms} {
		select {
		case ev := <-ch:
			assert.Equal(t, attendance.EventCheckedIn, ev.Event)
			data, ok := ev.Data.(attendance.Event)
			require.True(t, ok)
			assert.Equal(t, "S1", data.SubjectID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}
