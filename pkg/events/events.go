// Package events is a small typed publish/subscribe bus used to decouple the
// data store, the analyzer and whatever front-end consumes them (CLI, HTTP
// server). Topics are part of the contract observed by subscribers.
package events

import "sync"

// Topic identifies a message channel.
type Topic string

const (
	TopicDownloadCompleted Topic = "datastore:download-completed"
	TopicDownloadFailed    Topic = "datastore:download-failed"
	TopicTooManyAttempts   Topic = "datastore:too-many-attempts"
	TopicCodeAnalyzed      Topic = "codeAnalyzed"
	TopicInfo              Topic = "notification:info"
	TopicError             Topic = "notification:error"
	TopicClear             Topic = "notification:clear"
)

// Event is a single bus message. Err is only set for failure topics.
type Event struct {
	Topic   Topic
	Level   int
	Message string
	Err     error
}

const subscriberBuffer = 100

// Bus fans events out to channel subscribers. Delivery is non-blocking: a
// subscriber whose buffer is full misses the event rather than stalling the
// publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[chan Event]struct{})}
}

// Subscribe returns a buffered channel that receives every published event.
// Callers must Unsubscribe when done.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// with an unknown channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subscribers {
		if sub == ch {
			delete(b.subscribers, sub)
			close(sub)
			return
		}
	}
}

// Publish delivers ev to all current subscribers. A nil bus discards events,
// so components can treat the bus as optional.
func (b *Bus) Publish(ev Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subscribers {
		select {
		case sub <- ev:
		default:
		}
	}
}

// Info publishes a low-priority progress message.
func (b *Bus) Info(message string) {
	b.Publish(Event{Topic: TopicInfo, Level: 9, Message: message})
}

// Error publishes a user-visible error message.
func (b *Bus) Error(message string) {
	b.Publish(Event{Topic: TopicError, Level: 1, Message: message})
}
