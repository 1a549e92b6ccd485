// FILE: src/internal/source/source.go
package source

import (
	"time"
)

// Source feeds events into the pipeline from one origin
type Source interface {
	// Begins reading from the source
	Start() error

	// Gracefully shuts down the source
	Stop()

	// Returns source statistics
	GetStats() SourceStats
}

// SourceStats contains statistics about a source
type SourceStats struct {
	Type          string
	TotalEvents   uint64
	DroppedEvents uint64
	InvalidEvents uint64
	StartTime     time.Time
	LastEventTime time.Time
	Details       map[string]any
}
