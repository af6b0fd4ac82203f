package notify

import "context"

// Priority maps to ntfy's priority levels.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Message is a titled, tagged push notification.
type Message struct {
	Title    string
	Body     string
	Priority Priority
	Tags     []string
}

// Notifier delivers messages to an external channel.
type Notifier interface {
	// Name returns the notifier identifier.
	Name() string

	// Send delivers a message. Implementations must be safe for concurrent use.
	Send(ctx context.Context, msg Message) error
}
