package eventbus

import "time"

// Event is one intake outcome announced on the bus.
type Event struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
}

// Listener handles an event. Listeners run on the bus goroutine, one at a time.
type Listener func(Event)
