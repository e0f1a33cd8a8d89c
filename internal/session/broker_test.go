package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroker_FanOut(t *testing.T) {
	b := NewBroker()
	a := b.Subscribe(1)
	c := b.Subscribe(1)
	assert.Equal(t, 2, b.SubscriberCount())

	b.Publish(Event{Type: EventSignedOut, Session: &Session{Id: "s-1"}})

	assert.Equal(t, "s-1", (<-a.C).Session.Id)
	assert.Equal(t, "s-1", (<-c.C).Session.Id)
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(1)

	b.Publish(Event{Type: EventSignedIn})
	b.Publish(Event{Type: EventSignedOut})

	evt := <-sub.C
	assert.Equal(t, EventSignedIn, evt.Type)
	assert.False(t, evt.OccurredAt.IsZero())
	assert.Len(t, sub.C, 0)
}

func TestBroker_UnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe(1)

	sub.Unsubscribe()
	sub.Unsubscribe()

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, b.SubscriberCount())

	assert.NotPanics(t, func() { b.Publish(Event{Type: EventSignedIn}) })
}
