// Package sessionwatch broadcasts session-change notifications (sign-in and
// sign-out) to subscribers. Consumers subscribe on attach and must close the
// subscriber on teardown; a closed subscriber never receives a late delivery.
package sessionwatch

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType represents the kind of session change being broadcast
type EventType string

const (
	// EventSignedIn indicates a session was established
	EventSignedIn EventType = "signed_in"
	// EventSignedOut indicates a session ended
	EventSignedOut EventType = "signed_out"
)

// Event describes a single session change.
type Event struct {
	Type      EventType `json:"type"`
	ProfileID string    `json:"profile_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Subscriber receives session events on its Events channel until Close is
// called. Close is safe to call more than once.
type Subscriber struct {
	ID     string
	Events chan Event

	done     chan struct{}
	isClosed bool
	mu       sync.Mutex
}

// Close closes the subscriber's event channel and marks it dead. Events
// published after Close are dropped, never delivered late.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isClosed {
		s.isClosed = true
		close(s.done)
		close(s.Events)
	}
}

// Done returns a channel that's closed when the subscriber is closed
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// send delivers an event unless the subscriber is closed or its buffer is
// full. A slow consumer loses events rather than blocking the publisher.
func (s *Subscriber) send(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed {
		return
	}
	select {
	case s.Events <- e:
	default:
	}
}

// Broker manages session-change subscriptions.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
}

// NewBroker creates a new session-change broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]*Subscriber)}
}

// Subscribe registers a new subscriber. The caller must call Unsubscribe (or
// Close the subscriber) on teardown to release the registration.
func (b *Broker) Subscribe() *Subscriber {
	sub := &Subscriber{
		ID:     uuid.New().String(),
		Events: make(chan Event, 16),
		done:   make(chan struct{}),
	}
	b.mu.Lock()
	b.subs[sub.ID] = sub
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription and closes it.
func (b *Broker) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	delete(b.subs, sub.ID)
	b.mu.Unlock()
	sub.Close()
}

// Publish broadcasts an event to all current subscribers.
func (b *Broker) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		sub.send(e)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
