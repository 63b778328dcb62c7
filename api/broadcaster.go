package api

import (
	"sync"
)

// EventType tags an event on the execution feed.
type EventType string

const (
	// EventTypeState is a machine-state snapshot (PC, registers, flags).
	EventTypeState EventType = "state"
	// EventTypeOutput is guest program output (stdout).
	EventTypeOutput EventType = "output"
	// EventTypeExecution is a lifecycle event (halt, runtime error).
	EventTypeExecution EventType = "event"
)

// BroadcastEvent is one item on the execution feed, as delivered to
// every matching WebSocket subscriber.
type BroadcastEvent struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"sessionId"`
	Data      map[string]interface{} `json:"data"`
}

// Subscription is one client's filtered view of the feed. An empty
// SessionID matches every session; an empty EventTypes set matches
// every event type.
type Subscription struct {
	SessionID  string
	EventTypes map[EventType]bool
	Channel    chan BroadcastEvent
}

func (s *Subscription) wants(event BroadcastEvent) bool {
	if s.SessionID != "" && s.SessionID != event.SessionID {
		return false
	}
	if len(s.EventTypes) > 0 && !s.EventTypes[event.Type] {
		return false
	}
	return true
}

// Broadcaster fans session events out to every live subscription.
// Sends never block: a subscriber that stops draining its channel
// loses events rather than stalling the VM stepping that produced
// them.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[*Subscription]bool
	closed bool
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[*Subscription]bool)}
}

// Subscribe registers a new filtered subscription. sessionID narrows
// the feed to one session ("" = all); eventTypes narrows it by type
// (empty = all).
func (b *Broadcaster) Subscribe(sessionID string, eventTypes []EventType) *Subscription {
	typeSet := make(map[EventType]bool, len(eventTypes))
	for _, et := range eventTypes {
		typeSet[et] = true
	}

	sub := &Subscription{
		SessionID:  sessionID,
		EventTypes: typeSet,
		Channel:    make(chan BroadcastEvent, 64),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.Channel)
		return sub
	}
	b.subs[sub] = true
	return sub
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[sub] {
		delete(b.subs, sub)
		close(sub.Channel)
	}
}

// Broadcast delivers an event to every matching subscription.
func (b *Broadcaster) Broadcast(event BroadcastEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for sub := range b.subs {
		if !sub.wants(event) {
			continue
		}
		select {
		case sub.Channel <- event:
		default:
			// subscriber is not draining; drop rather than block
		}
	}
}

// BroadcastState sends a machine-state snapshot.
func (b *Broadcaster) BroadcastState(sessionID string, data map[string]interface{}) {
	b.Broadcast(BroadcastEvent{Type: EventTypeState, SessionID: sessionID, Data: data})
}

// BroadcastOutput sends guest program output.
func (b *Broadcaster) BroadcastOutput(sessionID string, stream string, content string) {
	b.Broadcast(BroadcastEvent{
		Type:      EventTypeOutput,
		SessionID: sessionID,
		Data: map[string]interface{}{
			"stream":  stream,
			"content": content,
		},
	})
}

// BroadcastExecutionEvent sends a lifecycle event (halt, error) with
// optional details.
func (b *Broadcaster) BroadcastExecutionEvent(sessionID string, eventName string, details map[string]interface{}) {
	data := map[string]interface{}{"event": eventName}
	for k, v := range details {
		data[k] = v
	}
	b.Broadcast(BroadcastEvent{Type: EventTypeExecution, SessionID: sessionID, Data: data})
}

// Close shuts the feed down, closing every subscription channel.
// Further Subscribe calls return an already-closed subscription.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		close(sub.Channel)
	}
	b.subs = make(map[*Subscription]bool)
}

// SubscriptionCount returns the number of live subscriptions.
func (b *Broadcaster) SubscriptionCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
