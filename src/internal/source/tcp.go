// FILE: src/internal/source/tcp.go
package source

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"logfunnel/src/internal/limit"
	"logfunnel/src/internal/pipeline"

	"github.com/lixenwraith/log"
	"github.com/panjf2000/gnet/v2"
)

const (
	maxClientBufferSize = 10 * 1024 * 1024 // 10MB max buffered per client
	maxLineLength       = 1 * 1024 * 1024  // 1MB max per event line
)

// TCPSource receives newline-delimited JSON frontend events over TCP
type TCPSource struct {
	gnet.BuiltinEventEngine

	host     string
	port     int
	pipeline *pipeline.Pipeline
	limiter  *limit.Limiter
	logger   *log.Logger
	engine   gnet.Engine
	engineMu sync.Mutex
	booted   bool
	done     chan struct{}
	wg       sync.WaitGroup

	// Statistics
	totalEvents   atomic.Uint64
	droppedEvents atomic.Uint64
	invalidEvents atomic.Uint64
	activeConns   atomic.Int64
	startTime     time.Time
	lastEventTime atomic.Value // time.Time
}

// TCPOptions configures a TCP ingest source. Limiter is optional.
type TCPOptions struct {
	Host    string
	Port    int
	Limiter *limit.Limiter
}

// NewTCPSource creates a TCP ingest source feeding the given pipeline
func NewTCPSource(opts TCPOptions, p *pipeline.Pipeline, logger *log.Logger) (*TCPSource, error) {
	if opts.Port < 1 || opts.Port > 65535 {
		return nil, fmt.Errorf("tcp source requires a valid port, got %d", opts.Port)
	}
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}

	t := &TCPSource{
		host:      opts.Host,
		port:      opts.Port,
		pipeline:  p,
		limiter:   opts.Limiter,
		logger:    logger,
		done:      make(chan struct{}),
		startTime: time.Now(),
	}
	t.lastEventTime.Store(time.Time{})

	return t, nil
}

func (t *TCPSource) Start() error {
	addr := fmt.Sprintf("tcp://%s:%d", t.host, t.port)

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := gnet.Run(t, addr, gnet.WithMulticore(false)); err != nil {
			select {
			case <-t.done:
				// Shutdown in progress
			default:
				t.logger.Error("msg", "TCP ingest server failed",
					"component", "tcp_source",
					"address", addr,
					"error", err)
			}
		}
	}()

	t.logger.Info("msg", "TCP ingest source started",
		"component", "tcp_source",
		"address", addr)
	return nil
}

func (t *TCPSource) Stop() {
	close(t.done)

	t.engineMu.Lock()
	booted := t.booted
	engine := t.engine
	t.engineMu.Unlock()

	if booted {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := engine.Stop(ctx); err != nil {
			t.logger.Error("msg", "Error stopping TCP ingest engine",
				"component", "tcp_source",
				"error", err)
		}
	}

	t.wg.Wait()
	t.logger.Info("msg", "TCP ingest source stopped", "component", "tcp_source")
}

func (t *TCPSource) GetStats() SourceStats {
	lastEvent, _ := t.lastEventTime.Load().(time.Time)

	return SourceStats{
		Type:          "tcp",
		TotalEvents:   t.totalEvents.Load(),
		DroppedEvents: t.droppedEvents.Load(),
		InvalidEvents: t.invalidEvents.Load(),
		StartTime:     t.startTime,
		LastEventTime: lastEvent,
		Details: map[string]any{
			"host":         t.host,
			"port":         t.port,
			"active_conns": t.activeConns.Load(),
		},
	}
}

func (t *TCPSource) OnBoot(eng gnet.Engine) gnet.Action {
	t.engineMu.Lock()
	t.engine = eng
	t.booted = true
	t.engineMu.Unlock()
	return gnet.None
}

func (t *TCPSource) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	c.SetContext(&bytes.Buffer{})
	t.activeConns.Add(1)
	return nil, gnet.None
}

func (t *TCPSource) OnClose(c gnet.Conn, err error) gnet.Action {
	t.activeConns.Add(-1)
	return gnet.None
}

func (t *TCPSource) OnTraffic(c gnet.Conn) gnet.Action {
	buf, ok := c.Context().(*bytes.Buffer)
	if !ok {
		return gnet.Close
	}

	data, err := c.Next(-1)
	if err != nil {
		return gnet.Close
	}
	buf.Write(data)

	if buf.Len() > maxClientBufferSize {
		t.logger.Warn("msg", "Closing TCP ingest connection - buffer limit exceeded",
			"component", "tcp_source",
			"remote", remoteAddr(c))
		return gnet.Close
	}

	for {
		line, err := buf.ReadBytes('\n')
		if err != nil {
			// Partial line; put it back and wait for more data
			buf.Write(line)
			break
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}
		if len(line) > maxLineLength {
			t.invalidEvents.Add(1)
			continue
		}

		t.ingest(line, c)
	}

	return gnet.None
}

func (t *TCPSource) ingest(line []byte, c gnet.Conn) {
	if t.limiter != nil && !t.limiter.Allow(remoteAddr(c)) {
		t.droppedEvents.Add(1)
		return
	}

	ev, err := decodeEvent(line)
	if err != nil {
		t.invalidEvents.Add(1)
		t.logger.Debug("msg", "Dropped malformed ingest event",
			"component", "tcp_source",
			"remote", remoteAddr(c),
			"error", err)
		return
	}

	t.pipeline.SubmitFrontend(ev)

	t.totalEvents.Add(1)
	t.lastEventTime.Store(time.Now())
}

func remoteAddr(c gnet.Conn) string {
	addr := c.RemoteAddr()
	if addr == nil {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(addr.String()); err == nil {
		return host
	}
	return addr.String()
}
