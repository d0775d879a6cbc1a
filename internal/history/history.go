package history

import (
	"context"
	"time"
)

// Event is one completed dispatcher action, successful or not.
type Event struct {
	Action     string        `json:"action"`
	Host       string        `json:"host"`
	OccurredAt time.Time     `json:"occurred_at"`
	Duration   time.Duration `json:"duration"`
	OK         bool          `json:"ok"`
	Error      string        `json:"error,omitempty"`
}

// Sink is a destination for deployment audit events.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}

// Querier is implemented by sinks that can read events back for the
// history subcommand.
type Querier interface {
	Recent(ctx context.Context, limit int) ([]Event, error)
}
