// FILE: src/internal/format/format.go
package format

import (
	"logfunnel/src/internal/core"
)

// Formatter transforms a log event into the bytes a sink writes out.
type Formatter interface {
	// Format renders the event as a single line including the
	// trailing newline
	Format(ev core.BufferedEvent) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}
