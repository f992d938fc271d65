package store

import (
	"sync"
	"time"
)

// EventKind categorizes a store change.
type EventKind string

const (
	EventMessage  EventKind = "message"
	EventRoom     EventKind = "room"
	EventMember   EventKind = "member"
	EventExternal EventKind = "external"
)

// Event describes a store change delivered to subscribers.
type Event struct {
	Kind     EventKind
	RoomGUID string
	RootGUID string // thread root when a reply was written
}

const subscriptionBuffer = 16

// Subscription is a handle on the store's change feed. The holder drains C
// and must call Close when done; Close is idempotent and guarantees no
// further delivery.
type Subscription struct {
	C chan Event

	store *Store
	id    int
	once  sync.Once
}

// Close unregisters the subscription and closes C.
func (sub *Subscription) Close() {
	sub.once.Do(func() {
		sub.store.mu.Lock()
		delete(sub.store.subs, sub.id)
		sub.store.mu.Unlock()
		close(sub.C)
	})
}

// Subscribe registers a new change feed subscription.
func (s *Store) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	sub := &Subscription{
		C:     make(chan Event, subscriptionBuffer),
		store: s,
		id:    s.nextSub,
	}
	s.subs[sub.id] = sub
	return sub
}

// notify fans an event out to all subscribers. A subscriber with a full
// buffer misses the event; its next reload covers the gap.
func (s *Store) notify(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub.C <- event:
		default:
		}
	}
}

func (s *Store) markLocalWrite() {
	s.lastLocalWrite.Store(time.Now().UnixMilli())
}
