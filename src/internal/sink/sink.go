// FILE: src/internal/sink/sink.go
package sink

import (
	"time"

	"logfunnel/src/internal/core"
)

// Sink is a delegate consumer of flushed, tagged log events. Anything
// implementing these three operations can be registered with the
// pipeline.
type Sink interface {
	// WillHandle reports whether this sink wants the event, typically
	// a level check
	WillHandle(ev core.BufferedEvent) bool

	// Handle persists or displays one event. Errors are logged by the
	// caller and never propagate past the pipeline.
	Handle(ev core.BufferedEvent) error

	// Close releases any held resources. Called once at pipeline
	// shutdown, after the final flush.
	Close() error
}

// SinkStats contains statistics about a sink
type SinkStats struct {
	Type           string
	TotalProcessed uint64
	StartTime      time.Time
	LastProcessed  time.Time
	Details        map[string]any
}
