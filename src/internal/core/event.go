// FILE: src/internal/core/event.go
package core

import "time"

// Origin identifies which execution context produced an event
type Origin int8

const (
	OriginBackend Origin = iota
	OriginFrontend
)

func (o Origin) String() string {
	if o == OriginFrontend {
		return "frontend"
	}
	return "backend"
}

// CallSite is the source location an event was logged from, display only
type CallSite struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// LogEvent is a single log record flowing through the pipeline.
// Time is assigned at the origin and never re-stamped.
type LogEvent struct {
	Level    Level
	Logger   string
	Time     time.Time
	Args     []any
	ArgsFn   func() []any // lazy payload, resolved after level filtering
	CallSite *CallSite
}

// Payload returns the event's payload values, resolving a lazy payload
// function at most once.
func (e *LogEvent) Payload() []any {
	if e.ArgsFn != nil {
		e.Args = e.ArgsFn()
		e.ArgsFn = nil
	}
	return e.Args
}

// BufferedEvent is a LogEvent tagged with its origin while it sits in
// the reorder buffer.
type BufferedEvent struct {
	LogEvent
	Origin Origin
}
