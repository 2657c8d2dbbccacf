package sessionwatch

import (
	"testing"
	"time"
)

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	b.Publish(Event{Type: EventSignedIn, ProfileID: "p1", Email: "a@example.com"})

	select {
	case e := <-sub.Events:
		if e.Type != EventSignedIn || e.ProfileID != "p1" {
			t.Errorf("unexpected event: %+v", e)
		}
		if e.Timestamp.IsZero() {
			t.Error("expected timestamp to be filled in")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()
	b.Unsubscribe(sub)

	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers, got %d", b.SubscriberCount())
	}

	// Publishing after unsubscribe must not panic or deliver
	b.Publish(Event{Type: EventSignedOut})

	select {
	case e, ok := <-sub.Events:
		if ok {
			t.Errorf("received event after unsubscribe: %+v", e)
		}
	default:
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()
	sub.Close()
	sub.Close()

	select {
	case <-sub.Done():
	default:
		t.Fatal("expected Done channel to be closed")
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()
	defer b.Unsubscribe(sub)

	// Overfill the buffer; Publish must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			b.Publish(Event{Type: EventSignedIn})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}
}

func TestMultipleSubscribersEachReceive(t *testing.T) {
	b := NewBroker()
	a := b.Subscribe()
	c := b.Subscribe()
	defer b.Unsubscribe(a)
	defer b.Unsubscribe(c)

	b.Publish(Event{Type: EventSignedOut, Email: "x@example.com"})

	for _, sub := range []*Subscriber{a, c} {
		select {
		case e := <-sub.Events:
			if e.Type != EventSignedOut {
				t.Errorf("unexpected event type %q", e.Type)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}
