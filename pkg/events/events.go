package events

import (
	"sync"
	"time"

	"github.com/cuemby/vmmv/pkg/types"
	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventMigrationStarted  EventType = "migration.started"
	EventMigrationFinished EventType = "migration.finished"
	EventStageStarted      EventType = "stage.started"
	EventStageCompleted    EventType = "stage.completed"
	EventStageFailed       EventType = "stage.failed"
	EventItemRecorded      EventType = "item.recorded"
	EventPreImage          EventType = "preimage"
)

// Metadata keys set by the orchestrator
const (
	MetaOldID       = "old_id"
	MetaNewID       = "new_id"
	MetaDryRun      = "dry_run"
	MetaUnitType    = "unit_type"
	MetaPath        = "path"
	MetaResult      = "result"
	MetaStorageKind = "storage_kind"
	MetaLines       = "lines"
)

// Event represents a migration event
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	RunID     string
	Stage     string
	Item      *types.Item
	Message   string
	Metadata  map[string]string
}

// Handler receives events. Handlers run on the publishing goroutine and
// must not publish.
type Handler func(*Event)

// Broker delivers events to subscribers synchronously and in order
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int]Handler
	order       []int
	next        int
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return &Broker{subscribers: make(map[int]Handler)}
}

// Subscribe registers a handler and returns a function that removes it
func (b *Broker) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	b.subscribers[id] = h
	b.order = append(b.order, id)

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subscribers[id]; !ok {
			return
		}
		delete(b.subscribers, id)
		for i, v := range b.order {
			if v == id {
				b.order = append(b.order[:i], b.order[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers an event to every subscriber in subscription order.
// A missing ID or timestamp is filled in.
func (b *Broker) Publish(event *Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.subscribers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}

// SubscriberCount returns the number of active subscribers
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
