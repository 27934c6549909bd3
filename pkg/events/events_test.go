package events

import "testing"

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	bus.Publish(Event{Topic: TopicDownloadCompleted, Level: 9, Message: "done"})

	ev := <-ch
	if ev.Topic != TopicDownloadCompleted {
		t.Fatalf("expected %q, got %q", TopicDownloadCompleted, ev.Topic)
	}
	if ev.Message != "done" {
		t.Fatalf("unexpected message: %q", ev.Message)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after Unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	bus.Publish(Event{Topic: TopicInfo})
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	// Overfill the buffer; the publisher must never stall.
	for i := 0; i < subscriberBuffer*2; i++ {
		bus.Info("tick")
	}

	if len(ch) != subscriberBuffer {
		t.Fatalf("expected %d buffered events, got %d", subscriberBuffer, len(ch))
	}
}

func TestNilBusDiscards(t *testing.T) {
	var bus *Bus
	bus.Publish(Event{Topic: TopicError})
	bus.Info("ignored")
}
