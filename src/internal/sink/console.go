// FILE: src/internal/sink/console.go
package sink

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"logfunnel/src/internal/core"
	"logfunnel/src/internal/format"

	"github.com/lixenwraith/log"
)

// ConsoleSink writes formatted log lines to stdout or stderr
type ConsoleSink struct {
	target    string
	output    io.Writer
	level     core.Level
	formatter format.Formatter
	logger    *log.Logger
	mu        sync.Mutex
	startTime time.Time

	// Statistics
	totalProcessed atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewConsoleSink creates a console sink for the given target,
// "stdout" or "stderr"
func NewConsoleSink(target string, level core.Level, formatter format.Formatter, logger *log.Logger) (*ConsoleSink, error) {
	var output io.Writer
	switch target {
	case "", "stdout":
		target = "stdout"
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		return nil, fmt.Errorf("invalid console target: %q", target)
	}

	s := &ConsoleSink{
		target:    target,
		output:    output,
		level:     level,
		formatter: formatter,
		logger:    logger,
		startTime: time.Now(),
	}
	s.lastProcessed.Store(time.Time{})

	return s, nil
}

func (s *ConsoleSink) WillHandle(ev core.BufferedEvent) bool {
	return ev.Level >= s.level
}

func (s *ConsoleSink) Handle(ev core.BufferedEvent) error {
	formatted, err := s.formatter.Format(ev)
	if err != nil {
		return fmt.Errorf("failed to format event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.output.Write(formatted); err != nil {
		return fmt.Errorf("console write failed: %w", err)
	}

	s.totalProcessed.Add(1)
	s.lastProcessed.Store(time.Now())
	return nil
}

func (s *ConsoleSink) Close() error {
	return nil
}

func (s *ConsoleSink) GetStats() SinkStats {
	lastProc, _ := s.lastProcessed.Load().(time.Time)

	return SinkStats{
		Type:           "console",
		TotalProcessed: s.totalProcessed.Load(),
		StartTime:      s.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"target": s.target,
		},
	}
}
