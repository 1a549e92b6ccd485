// FILE: src/internal/source/wire.go
package source

import (
	"encoding/json"
	"fmt"
	"time"

	"logfunnel/src/internal/core"
)

// wireEvent is the JSON shape remote frontend contexts submit. "ts" is
// epoch milliseconds read from the origin's clock; it is carried
// through verbatim, never re-stamped at receipt.
type wireEvent struct {
	TS       int64         `json:"ts"`
	Level    string        `json:"level"`
	Logger   string        `json:"logger"`
	Args     []any         `json:"args"`
	CallSite *wireCallSite `json:"callSite"`
}

type wireCallSite struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// decodeEvent parses one serialized event. An absent or unknown level
// defaults to info; a missing timestamp is an error.
func decodeEvent(data []byte) (core.LogEvent, error) {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return core.LogEvent{}, fmt.Errorf("malformed event: %w", err)
	}
	if w.TS == 0 {
		return core.LogEvent{}, fmt.Errorf("event missing origin timestamp")
	}

	level := core.LevelInfo
	if w.Level != "" {
		if parsed, err := core.ParseLevel(w.Level); err == nil {
			level = parsed
		}
	}

	ev := core.LogEvent{
		Level:  level,
		Logger: w.Logger,
		Time:   time.UnixMilli(w.TS),
		Args:   w.Args,
	}
	if w.CallSite != nil {
		ev.CallSite = &core.CallSite{
			File:   w.CallSite.File,
			Line:   w.CallSite.Line,
			Column: w.CallSite.Column,
		}
	}

	return ev, nil
}
