// Package events provides an in-memory bus for task lifecycle events.
package events

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// EventType represents the type of event.
type EventType string

const (
	EventTaskSubmitted EventType = "task.submitted"
	EventTaskCompleted EventType = "task.completed"
	EventTaskFailed    EventType = "task.failed"
	EventTaskPoison    EventType = "task.poison"
)

// EventSource identifies the component that emitted an event.
type EventSource string

const (
	SourceGateway EventSource = "gateway"
	SourceWorker  EventSource = "worker"
)

// Event represents one task lifecycle event.
type Event struct {
	ID        string         `json:"id"`
	TaskID    string         `json:"task_id,omitempty"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    EventSource    `json:"source"`
	Payload   map[string]any `json:"payload,omitempty"`
}

var eventIDCounter uint64

// NewEvent creates an event with the current timestamp.
func NewEvent(eventType EventType, source EventSource, taskID string, payload map[string]any) Event {
	seq := atomic.AddUint64(&eventIDCounter, 1)
	return Event{
		ID:        fmt.Sprintf("%d-%d", time.Now().UnixNano(), seq),
		TaskID:    taskID,
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    source,
		Payload:   payload,
	}
}

// Subscriber is a function that receives events.
type Subscriber func(Event)

// Bus is an in-memory event bus with a bounded history ring.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]Subscriber
	nextID      int
	eventChan   chan Event
	ring        *ringBuffer
	closed      bool
	done        chan struct{}
}

// NewBus creates a bus whose history holds bufferSize events.
func NewBus(bufferSize int) *Bus {
	b := &Bus{
		subscribers: make(map[int]Subscriber),
		eventChan:   make(chan Event, bufferSize),
		ring:        newRingBuffer(bufferSize),
		done:        make(chan struct{}),
	}
	go b.dispatch()
	return b
}

func (b *Bus) dispatch() {
	for {
		select {
		case event := <-b.eventChan:
			b.ring.add(event)
			b.mu.RLock()
			for _, sub := range b.subscribers {
				go sub(event)
			}
			b.mu.RUnlock()
		case <-b.done:
			return
		}
	}
}

// Publish sends an event to the bus. Events are dropped rather than
// blocking the publisher when the buffer is full.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return
	}

	select {
	case b.eventChan <- event:
	default:
	}
}

// Subscribe registers a handler for all events. Returns an unsubscribe
// function.
func (b *Bus) Subscribe(handler Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subscribers[id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

// History returns up to limit recent events, oldest first.
func (b *Bus) History(limit int) []Event {
	return b.ring.recent(limit)
}

// Close stops the dispatch loop.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
}

// ringBuffer is a circular buffer for recent events.
type ringBuffer struct {
	mu     sync.RWMutex
	events []Event
	size   int
	head   int
	count  int
}

func newRingBuffer(size int) *ringBuffer {
	if size <= 0 {
		size = 1
	}
	return &ringBuffer{events: make([]Event, size), size: size}
}

func (r *ringBuffer) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[r.head] = e
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

func (r *ringBuffer) recent(limit int) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.count
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Event, 0, n)
	start := r.head - n
	if start < 0 {
		start += r.size
	}
	for i := 0; i < n; i++ {
		out = append(out, r.events[(start+i)%r.size])
	}
	return out
}
