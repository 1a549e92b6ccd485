// FILE: src/internal/source/stdin.go
package source

import (
	"bufio"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"logfunnel/src/internal/core"
	"logfunnel/src/internal/pipeline"

	"github.com/lixenwraith/log"
)

// StdinSource turns lines read from standard input into backend
// events, timestamped at read. This is the binary's local origin.
type StdinSource struct {
	pipeline *pipeline.Pipeline
	logger   *log.Logger
	done     chan struct{}

	// Statistics
	totalEvents   atomic.Uint64
	startTime     time.Time
	lastEventTime atomic.Value // time.Time
}

// NewStdinSource creates a stdin source feeding the given pipeline
func NewStdinSource(p *pipeline.Pipeline, logger *log.Logger) (*StdinSource, error) {
	s := &StdinSource{
		pipeline:  p,
		logger:    logger,
		done:      make(chan struct{}),
		startTime: time.Now(),
	}
	s.lastEventTime.Store(time.Time{})
	return s, nil
}

func (s *StdinSource) Start() error {
	go s.readLoop()
	s.logger.Info("msg", "Stdin source started", "component", "stdin_source")
	return nil
}

func (s *StdinSource) Stop() {
	close(s.done)
	s.logger.Info("msg", "Stdin source stopped", "component", "stdin_source")
}

func (s *StdinSource) GetStats() SourceStats {
	lastEvent, _ := s.lastEventTime.Load().(time.Time)

	return SourceStats{
		Type:          "stdin",
		TotalEvents:   s.totalEvents.Load(),
		StartTime:     s.startTime,
		LastEventTime: lastEvent,
		Details:       map[string]any{},
	}
}

func (s *StdinSource) readLoop() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-s.done:
			return
		default:
			line := scanner.Text()
			if line == "" {
				continue
			}

			now := time.Now()
			s.pipeline.SubmitBackend(core.LogEvent{
				Level:  detectLevel(line),
				Logger: "stdin",
				Time:   now,
				Args:   []any{line},
			})

			s.totalEvents.Add(1)
			s.lastEventTime.Store(now)
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Error("msg", "Scanner error reading stdin",
			"component", "stdin_source",
			"error", err)
	}
}

// detectLevel guesses an event level from conventional level tokens in
// the line, defaulting to info
func detectLevel(line string) core.Level {
	upper := strings.ToUpper(line)
	switch {
	case strings.Contains(upper, "ERROR"):
		return core.LevelError
	case strings.Contains(upper, "WARN"):
		return core.LevelWarn
	case strings.Contains(upper, "DEBUG"):
		return core.LevelDebug
	default:
		return core.LevelInfo
	}
}
