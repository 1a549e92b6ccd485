// FILE: src/internal/pipeline/pipeline_test.go
package pipeline

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"logfunnel/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

// recordSink captures every handled event
type recordSink struct {
	mu       sync.Mutex
	events   []core.BufferedEvent
	minLevel core.Level
	fail     bool
	panics   bool
	closes   int
}

func (r *recordSink) WillHandle(ev core.BufferedEvent) bool {
	return ev.Level >= r.minLevel
}

func (r *recordSink) Handle(ev core.BufferedEvent) error {
	if r.panics {
		panic("sink exploded")
	}
	if r.fail {
		return fmt.Errorf("sink failed")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordSink) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closes++
	return nil
}

func (r *recordSink) recorded() []core.BufferedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.BufferedEvent, len(r.events))
	copy(out, r.events)
	return out
}

func backendEvent(ms int64) core.LogEvent {
	return core.LogEvent{
		Level: core.LevelInfo,
		Time:  time.UnixMilli(ms),
		Args:  []any{fmt.Sprintf("backend-%d", ms)},
	}
}

func frontendEvent(ms int64) core.LogEvent {
	return core.LogEvent{
		Level: core.LevelInfo,
		Time:  time.UnixMilli(ms),
		Args:  []any{fmt.Sprintf("frontend-%d", ms)},
	}
}

func newTestPipeline(t *testing.T, opts Options) (*Pipeline, *recordSink) {
	t.Helper()
	if opts.MaxDelay == 0 {
		opts.MaxDelay = time.Hour // keep the timer out of the way unless the test wants it
	}
	p := New(opts, newTestLogger())
	rec := &recordSink{}
	require.NoError(t, p.Register("record", rec))
	return p, rec
}

func TestWatermarkFlush(t *testing.T) {
	p, rec := newTestPipeline(t, Options{})

	p.SubmitBackend(backendEvent(100))
	p.SubmitBackend(backendEvent(200))
	assert.Empty(t, rec.recorded(), "nothing flushes without a watermark")

	p.SubmitFrontend(frontendEvent(150))

	got := rec.recorded()
	require.Len(t, got, 2, "exactly the events at or below the watermark flush")
	assert.Equal(t, int64(100), got[0].Time.UnixMilli())
	assert.Equal(t, int64(150), got[1].Time.UnixMilli())

	p.Close()
	got = rec.recorded()
	require.Len(t, got, 3)
	assert.Equal(t, int64(200), got[2].Time.UnixMilli())
}

func TestWatermarkDoesNotFlushLaterEvents(t *testing.T) {
	p, rec := newTestPipeline(t, Options{})

	p.SubmitBackend(backendEvent(300))
	p.SubmitFrontend(frontendEvent(100))

	got := rec.recorded()
	require.Len(t, got, 1)
	assert.Equal(t, int64(100), got[0].Time.UnixMilli())
}

func TestTimerFlushBoundsLatency(t *testing.T) {
	p, rec := newTestPipeline(t, Options{MaxDelay: 20 * time.Millisecond})

	p.SubmitBackend(backendEvent(100))
	p.SubmitBackend(backendEvent(200))

	require.Eventually(t, func() bool {
		return len(rec.recorded()) == 2
	}, time.Second, 5*time.Millisecond, "timer should flush buffered backend events")

	got := rec.recorded()
	assert.Equal(t, int64(100), got[0].Time.UnixMilli())
	assert.Equal(t, int64(200), got[1].Time.UnixMilli())
}

func TestCloseFlushesRemainderInOrder(t *testing.T) {
	p, rec := newTestPipeline(t, Options{})

	p.SubmitBackend(backendEvent(500))
	p.SubmitBackend(backendEvent(100))
	p.SubmitBackend(backendEvent(300))

	p.Close()

	got := rec.recorded()
	require.Len(t, got, 3)
	assert.Equal(t, int64(100), got[0].Time.UnixMilli())
	assert.Equal(t, int64(300), got[1].Time.UnixMilli())
	assert.Equal(t, int64(500), got[2].Time.UnixMilli())
	assert.Equal(t, 1, rec.closes)
}

func TestDoubleCloseDoesNotPanic(t *testing.T) {
	p, rec := newTestPipeline(t, Options{})

	p.SubmitBackend(backendEvent(100))
	p.Close()
	assert.NotPanics(t, func() { p.Close() })
	assert.Equal(t, 1, rec.closes, "delegates close once")
}

// Models the real transport: origin clocks tick forward, backend
// events land immediately, frontend events arrive late but in origin
// order. The flushed concatenation must still be sorted.
func TestGlobalOrderingAcrossInterleavedSubmissions(t *testing.T) {
	p, rec := newTestPipeline(t, Options{})

	rng := rand.New(rand.NewSource(42))
	var inFlight []core.LogEvent
	total := 0

	for i := 0; i < 500; i++ {
		ms := int64(100 * (i + 1))
		if rng.Intn(2) == 0 {
			p.SubmitBackend(backendEvent(ms))
		} else {
			inFlight = append(inFlight, frontendEvent(ms))
		}
		total++

		// The transport delivers queued frontend events with variable
		// latency, but never reorders them
		for len(inFlight) > 0 && rng.Intn(3) == 0 {
			p.SubmitFrontend(inFlight[0])
			inFlight = inFlight[1:]
		}
	}
	for _, ev := range inFlight {
		p.SubmitFrontend(ev)
	}
	p.Close()

	got := rec.recorded()
	require.Len(t, got, total)
	for i := 1; i < len(got); i++ {
		require.False(t, got[i].Time.Before(got[i-1].Time),
			"flushed sequence must be non-decreasing at index %d", i)
	}
}

func TestStableOrderOnEqualTimestamps(t *testing.T) {
	p, rec := newTestPipeline(t, Options{})

	for i := 0; i < 5; i++ {
		ev := backendEvent(100)
		ev.Args = []any{i}
		p.SubmitBackend(ev)
	}
	p.Close()

	got := rec.recorded()
	require.Len(t, got, 5)
	for i := 0; i < 5; i++ {
		assert.Equal(t, []any{i}, got[i].Args, "ties keep submission order")
	}
}

func TestPipelineLevelFilter(t *testing.T) {
	p, rec := newTestPipeline(t, Options{Level: core.LevelWarn})

	ev := backendEvent(100)
	ev.Level = core.LevelDebug
	p.SubmitBackend(ev)

	warn := frontendEvent(200)
	warn.Level = core.LevelError
	p.SubmitFrontend(warn)
	p.Close()

	got := rec.recorded()
	require.Len(t, got, 1)
	assert.Equal(t, core.LevelError, got[0].Level)
}

func TestDelegateLevelFilter(t *testing.T) {
	p := New(Options{MaxDelay: time.Hour}, newTestLogger())
	noisy := &recordSink{}
	strict := &recordSink{minLevel: core.LevelError}
	require.NoError(t, p.Register("noisy", noisy))
	require.NoError(t, p.Register("strict", strict))

	p.SubmitBackend(backendEvent(100))
	p.Close()

	assert.Len(t, noisy.recorded(), 1)
	assert.Empty(t, strict.recorded())
}

func TestDelegateFailureDoesNotBlockOthers(t *testing.T) {
	p := New(Options{MaxDelay: time.Hour}, newTestLogger())
	failing := &recordSink{fail: true}
	healthy := &recordSink{}
	require.NoError(t, p.Register("failing", failing))
	require.NoError(t, p.Register("healthy", healthy))

	p.SubmitBackend(backendEvent(100))
	p.SubmitFrontend(frontendEvent(200))
	p.Close()

	assert.Len(t, healthy.recorded(), 2)
}

func TestDelegatePanicIsAbsorbed(t *testing.T) {
	p := New(Options{MaxDelay: time.Hour}, newTestLogger())
	panicking := &recordSink{panics: true}
	healthy := &recordSink{}
	require.NoError(t, p.Register("panicking", panicking))
	require.NoError(t, p.Register("healthy", healthy))

	assert.NotPanics(t, func() {
		p.SubmitBackend(backendEvent(100))
		p.SubmitFrontend(frontendEvent(200))
		p.Close()
	})
	assert.Len(t, healthy.recorded(), 2)
}

func TestTaggingDoesNotMutateOriginal(t *testing.T) {
	p, rec := newTestPipeline(t, Options{BackendBasePath: "/opt/app"})

	cs := core.CallSite{File: "/opt/app/src/main/window.js", Line: 10, Column: 2}
	ev := backendEvent(100)
	ev.CallSite = &cs
	p.SubmitBackend(ev)
	p.Close()

	got := rec.recorded()
	require.Len(t, got, 1)
	require.NotNil(t, got[0].CallSite)
	assert.Equal(t, "Backend : main/window.js", got[0].CallSite.File)
	assert.Equal(t, "/opt/app/src/main/window.js", cs.File, "submitted call site must not be mutated")
}

func TestFrontendTagging(t *testing.T) {
	p, rec := newTestPipeline(t, Options{})

	ev := frontendEvent(100)
	ev.CallSite = &core.CallSite{File: "http://localhost:3000/src/ui/button.ts", Line: 42, Column: 7}
	p.SubmitFrontend(ev)

	got := rec.recorded()
	require.Len(t, got, 1)
	assert.Equal(t, "Frontend: ui/button.ts", got[0].CallSite.File)
}

func TestEventWithoutCallSiteFlushedUnmodified(t *testing.T) {
	p, rec := newTestPipeline(t, Options{})

	p.SubmitFrontend(frontendEvent(100))

	got := rec.recorded()
	require.Len(t, got, 1)
	assert.Nil(t, got[0].CallSite)
}

func TestRegisterDuplicateName(t *testing.T) {
	p, _ := newTestPipeline(t, Options{})

	err := p.Register("record", &recordSink{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestLazyPayloadResolvedOncePerEvent(t *testing.T) {
	p := New(Options{MaxDelay: time.Hour}, newTestLogger())
	first := &recordSink{}
	second := &recordSink{}
	require.NoError(t, p.Register("first", first))
	require.NoError(t, p.Register("second", second))

	calls := 0
	ev := core.LogEvent{
		Level: core.LevelInfo,
		Time:  time.UnixMilli(100),
		ArgsFn: func() []any {
			calls++
			return []any{"deferred"}
		},
	}
	p.SubmitFrontend(ev)

	assert.Equal(t, 1, calls, "lazy payload resolves once, before fanout")
	require.Len(t, first.recorded(), 1)
	assert.Equal(t, []any{"deferred"}, first.recorded()[0].Args)
	assert.Equal(t, []any{"deferred"}, second.recorded()[0].Args)
}

func TestRejectedEventDoesNotEvaluateLazyPayload(t *testing.T) {
	p, rec := newTestPipeline(t, Options{Level: core.LevelError})

	calls := 0
	ev := core.LogEvent{
		Level: core.LevelDebug,
		Time:  time.UnixMilli(100),
		ArgsFn: func() []any {
			calls++
			return []any{"never"}
		},
	}
	p.SubmitBackend(ev)
	p.Close()

	assert.Zero(t, calls)
	assert.Empty(t, rec.recorded())
}
