// FILE: src/internal/pipeline/pipeline.go
package pipeline

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"logfunnel/src/internal/core"
	"logfunnel/src/internal/sink"
	"logfunnel/src/internal/tag"

	"github.com/lixenwraith/log"
)

// DefaultMaxDelay bounds how long a backend event may sit in the
// buffer waiting for a frontend watermark
const DefaultMaxDelay = 100 * time.Millisecond

// Options configures a pipeline
type Options struct {
	// Minimum level accepted into the buffer
	Level core.Level

	// Maximum time a buffered event waits before the timer flushes it
	MaxDelay time.Duration

	// Base path stripped from backend call-site paths during tagging
	BackendBasePath string
}

// Pipeline merges backend and frontend log events into a single
// timestamp-ordered stream and fans flushed events out to registered
// delegate sinks.
//
// Backend events arrive synchronously and in order; frontend events
// arrive late and out of order over the transport. Every event is
// inserted into a time-sorted buffer. A frontend event's own timestamp
// is a watermark: everything at or below it is safe to flush. A single
// rearmed timer bounds latency when no watermark arrives.
type Pipeline struct {
	opts   Options
	logger *log.Logger

	mu        sync.Mutex
	buffer    []core.BufferedEvent
	delegates []delegate
	timer     *time.Timer
	closed    bool

	// Statistics
	totalBuffered atomic.Uint64
	totalFlushed  atomic.Uint64
	totalRejected atomic.Uint64
}

type delegate struct {
	name string
	sink sink.Sink
}

// New creates a pipeline with no delegates registered
func New(opts Options, logger *log.Logger) *Pipeline {
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultMaxDelay
	}

	return &Pipeline{
		opts:   opts,
		logger: logger,
	}
}

// Register adds a named delegate sink. Names must be unique.
func (p *Pipeline) Register(name string, s sink.Sink) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, d := range p.delegates {
		if d.name == name {
			return fmt.Errorf("delegate '%s' already registered", name)
		}
	}
	p.delegates = append(p.delegates, delegate{name: name, sink: s})

	p.logger.Debug("msg", "Delegate registered",
		"component", "pipeline",
		"delegate", name)
	return nil
}

// SubmitBackend accepts an event from the local execution context.
// Never blocks beyond buffer insertion; delivery happens on a later
// watermark, timer expiry, or close.
func (p *Pipeline) SubmitBackend(ev core.LogEvent) {
	if ev.Level < p.opts.Level {
		p.totalRejected.Add(1)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.totalRejected.Add(1)
		return
	}

	p.insert(core.BufferedEvent{LogEvent: ev, Origin: core.OriginBackend})
	p.armTimer()
}

// SubmitFrontend accepts an event received from a remote context. Its
// timestamp acts as a watermark: every buffered event at or below it
// is flushed immediately, in ascending order.
func (p *Pipeline) SubmitFrontend(ev core.LogEvent) {
	if ev.Level < p.opts.Level {
		p.totalRejected.Add(1)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.totalRejected.Add(1)
		return
	}

	p.insert(core.BufferedEvent{LogEvent: ev, Origin: core.OriginFrontend})

	watermark := ev.Time
	n := sort.Search(len(p.buffer), func(i int) bool {
		return p.buffer[i].Time.After(watermark)
	})
	p.flushLocked(n)

	if len(p.buffer) == 0 && p.timer != nil {
		p.timer.Stop()
	}
}

// Close flushes everything still buffered, in timestamp order, then
// closes every delegate. A second Close is a no-op.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.flushLocked(len(p.buffer))
	alreadyClosed := p.closed
	p.closed = true
	delegates := p.delegates
	p.mu.Unlock()

	if alreadyClosed {
		return
	}

	for _, d := range delegates {
		if err := d.sink.Close(); err != nil {
			p.logger.Error("msg", "Failed to close delegate",
				"component", "pipeline",
				"delegate", d.name,
				"error", err)
		}
	}
}

// GetStats returns pipeline statistics
func (p *Pipeline) GetStats() map[string]any {
	p.mu.Lock()
	buffered := len(p.buffer)
	delegateCount := len(p.delegates)
	p.mu.Unlock()

	return map[string]any{
		"buffered":       buffered,
		"delegates":      delegateCount,
		"total_buffered": p.totalBuffered.Load(),
		"total_flushed":  p.totalFlushed.Load(),
		"total_rejected": p.totalRejected.Load(),
	}
}

// insert places the event at its timestamp position, after any equal
// timestamps so ties stay stable. Must be called with mu held.
func (p *Pipeline) insert(ev core.BufferedEvent) {
	idx := sort.Search(len(p.buffer), func(i int) bool {
		return p.buffer[i].Time.After(ev.Time)
	})

	p.buffer = append(p.buffer, core.BufferedEvent{})
	copy(p.buffer[idx+1:], p.buffer[idx:])
	p.buffer[idx] = ev

	p.totalBuffered.Add(1)
}

// armTimer restarts the single flush timer. Must be called with mu
// held.
func (p *Pipeline) armTimer() {
	if p.timer == nil {
		p.timer = time.AfterFunc(p.opts.MaxDelay, p.onTimer)
		return
	}
	p.timer.Stop()
	p.timer.Reset(p.opts.MaxDelay)
}

// onTimer is the bounded-latency safety net: flush everything buffered
func (p *Pipeline) onTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.flushLocked(len(p.buffer))
}

// flushLocked delivers the first n buffered events, ascending by
// timestamp, to every delegate. Each event's call site is rewritten to
// its origin-tagged display form on a copy; the buffered original is
// never mutated. Must be called with mu held; delivery stays inside
// the lock so event N completes before event N+1 begins.
func (p *Pipeline) flushLocked(n int) {
	if n == 0 {
		return
	}

	batch := make([]core.BufferedEvent, n)
	copy(batch, p.buffer[:n])
	p.buffer = p.buffer[:copy(p.buffer, p.buffer[n:])]

	for i := range batch {
		ev := batch[i]

		// Resolve a lazy payload once, before fanout
		ev.Payload()

		if ev.CallSite != nil {
			cs := *ev.CallSite
			cs.File = tag.Shorten(ev.Origin, cs.File, p.opts.BackendBasePath)
			ev.CallSite = &cs
		}

		for _, d := range p.delegates {
			p.deliver(d, ev)
		}
		p.totalFlushed.Add(1)
	}
}

// deliver hands one event to one delegate. Failures, including panics,
// are logged and absorbed so they never reach the submitter or block
// other delegates.
func (p *Pipeline) deliver(d delegate, ev core.BufferedEvent) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("msg", "Delegate panicked handling event",
				"component", "pipeline",
				"delegate", d.name,
				"panic", r)
		}
	}()

	if !d.sink.WillHandle(ev) {
		return
	}
	if err := d.sink.Handle(ev); err != nil {
		p.logger.Error("msg", "Delegate failed to handle event",
			"component", "pipeline",
			"delegate", d.name,
			"error", err)
	}
}
