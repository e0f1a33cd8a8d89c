package session

import (
	"sync"
	"time"
)

type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

type Event struct {
	Type       EventType
	Session    *Session
	OccurredAt time.Time
}

// Broker fans session events out to subscribers. Slow subscribers lose
// events instead of blocking the publisher.
type Broker struct {
	mu     sync.RWMutex
	nextId uint64
	subs   map[uint64]chan Event
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[uint64]chan Event),
	}
}

// Subscription is live until Unsubscribe is called; C is closed afterwards.
type Subscription struct {
	C <-chan Event

	id     uint64
	broker *Broker
	once   sync.Once
}

func (b *Broker) Subscribe(buffer int) *Subscription {
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.nextId++
	id := b.nextId
	b.subs[id] = ch
	b.mu.Unlock()

	return &Subscription{C: ch, id: id, broker: b}
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.broker.mu.Lock()
		defer s.broker.mu.Unlock()
		if ch, ok := s.broker.subs[s.id]; ok {
			delete(s.broker.subs, s.id)
			close(ch)
		}
	})
}

func (b *Broker) Publish(evt Event) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}

func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
