// FILE: src/internal/format/line.go
package format

import (
	"bytes"
	"fmt"

	"logfunnel/src/internal/core"

	"github.com/lixenwraith/log"
)

// DefaultTimestampFormat is millisecond-resolution wall-clock time
const DefaultTimestampFormat = "2006-01-02 15:04:05.000"

// LineFormatter renders one event per line: metadata prefix, a single
// space, the space-joined payload values, one trailing newline.
type LineFormatter struct {
	timestampFormat string
	logger          *log.Logger
}

// NewLineFormatter creates a line formatter. An empty timestampFormat
// selects the default.
func NewLineFormatter(timestampFormat string, logger *log.Logger) *LineFormatter {
	if timestampFormat == "" {
		timestampFormat = DefaultTimestampFormat
	}
	return &LineFormatter{
		timestampFormat: timestampFormat,
		logger:          logger,
	}
}

// Format renders the event. A lazy payload function is evaluated here,
// after every filter has already accepted the event.
func (f *LineFormatter) Format(ev core.BufferedEvent) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(ev.Time.Format(f.timestampFormat))
	buf.WriteByte(' ')
	buf.WriteString(ev.Level.String())
	if ev.Logger != "" {
		buf.WriteString(" [")
		buf.WriteString(ev.Logger)
		buf.WriteByte(']')
	}
	if ev.CallSite != nil {
		fmt.Fprintf(&buf, " %s:%d:%d", ev.CallSite.File, ev.CallSite.Line, ev.CallSite.Column)
	}

	buf.WriteByte(' ')
	for i, v := range ev.Payload() {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprint(&buf, v)
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

// Name returns the formatter name
func (f *LineFormatter) Name() string {
	return "line"
}
