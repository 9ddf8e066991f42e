// Package eventbus fans intake outcomes out to side-channel listeners such as
// metrics. Events are delivered in publish order by a single dispatcher
// goroutine so listeners never observe outcomes out of sequence.
package eventbus

import (
	"log/slog"
	"sync"
	"time"
)

const defaultBufferSize = 100

// EventBus publishes events to subscribed listeners.
type EventBus interface {
	// Publish enqueues an event. It never blocks: if the buffer is full the
	// event is dropped and a warning is logged.
	Publish(eventType string, payload map[string]string)

	// Subscribe registers a listener for every later event.
	Subscribe(listener Listener)

	// Close stops accepting events and waits for queued ones to be delivered.
	// Events published afterwards are dropped with a warning.
	Close()
}

type inMemoryBus struct {
	ch        chan Event
	listeners []Listener
	mu        sync.RWMutex
	closeOnce sync.Once
	closed    bool
	done      chan struct{}
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an in-memory EventBus with room for bufferSize pending events.
// A bufferSize <= 0 selects defaultBufferSize.
func New(bufferSize int, logger *slog.Logger) EventBus {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	b := &inMemoryBus{
		ch:     make(chan Event, bufferSize),
		done:   make(chan struct{}),
		logger: logger,
		now:    time.Now,
	}
	go b.loop()
	return b
}

func (b *inMemoryBus) loop() {
	defer close(b.done)
	for e := range b.ch {
		b.dispatch(e)
	}
}

// dispatch calls every listener, isolating panics so one bad listener does
// not starve the others.
func (b *inMemoryBus) dispatch(e Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					b.logger.Error("eventbus listener panicked", "event_type", e.Type, "panic", r)
				}
			}()
			l(e)
		}()
	}
}

func (b *inMemoryBus) Publish(eventType string, payload map[string]string) {
	e := Event{
		Type:      eventType,
		Timestamp: b.now(),
		Payload:   payload,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		b.logger.Warn("eventbus closed, dropping event", "event_type", eventType)
		return
	}
	select {
	case b.ch <- e:
	default:
		b.logger.Warn("eventbus buffer full, dropping event", "event_type", eventType)
	}
}

func (b *inMemoryBus) Subscribe(listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, listener)
}

func (b *inMemoryBus) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		close(b.ch)
		b.mu.Unlock()
	})
	<-b.done
}
