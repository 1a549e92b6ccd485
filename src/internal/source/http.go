// FILE: src/internal/source/http.go
package source

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logfunnel/src/internal/auth"
	"logfunnel/src/internal/limit"
	"logfunnel/src/internal/pipeline"

	"github.com/lixenwraith/log"
	"github.com/valyala/fasthttp"
)

// HTTPSource receives frontend log events via HTTP POST and submits
// them to the pipeline with their origin timestamps intact
type HTTPSource struct {
	host       string
	port       int
	ingestPath string
	server     *fasthttp.Server
	pipeline   *pipeline.Pipeline
	limiter    *limit.Limiter
	verifier   *auth.TokenVerifier
	logger     *log.Logger
	done       chan struct{}
	wg         sync.WaitGroup

	// Statistics
	totalEvents   atomic.Uint64
	droppedEvents atomic.Uint64
	invalidEvents atomic.Uint64
	startTime     time.Time
	lastEventTime atomic.Value // time.Time
}

// HTTPOptions configures an HTTP ingest source. Limiter and Verifier
// are optional.
type HTTPOptions struct {
	Host       string
	Port       int
	IngestPath string
	Limiter    *limit.Limiter
	Verifier   *auth.TokenVerifier
}

// NewHTTPSource creates an HTTP ingest source feeding the given
// pipeline
func NewHTTPSource(opts HTTPOptions, p *pipeline.Pipeline, logger *log.Logger) (*HTTPSource, error) {
	if opts.Port < 1 || opts.Port > 65535 {
		return nil, fmt.Errorf("http source requires a valid port, got %d", opts.Port)
	}
	if opts.Host == "" {
		opts.Host = "127.0.0.1"
	}
	if opts.IngestPath == "" {
		opts.IngestPath = "/ingest"
	}

	h := &HTTPSource{
		host:       opts.Host,
		port:       opts.Port,
		ingestPath: opts.IngestPath,
		pipeline:   p,
		limiter:    opts.Limiter,
		verifier:   opts.Verifier,
		logger:     logger,
		done:       make(chan struct{}),
		startTime:  time.Now(),
	}
	h.lastEventTime.Store(time.Time{})

	return h, nil
}

func (h *HTTPSource) Start() error {
	h.server = &fasthttp.Server{
		Handler:         h.requestHandler,
		CloseOnShutdown: true,
	}

	addr := fmt.Sprintf("%s:%d", h.host, h.port)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := h.server.ListenAndServe(addr); err != nil {
			select {
			case <-h.done:
				// Shutdown in progress
			default:
				h.logger.Error("msg", "HTTP ingest server failed",
					"component", "http_source",
					"address", addr,
					"error", err)
			}
		}
	}()

	h.logger.Info("msg", "HTTP ingest source started",
		"component", "http_source",
		"address", addr,
		"path", h.ingestPath)
	return nil
}

func (h *HTTPSource) Stop() {
	close(h.done)
	if h.server != nil {
		if err := h.server.Shutdown(); err != nil {
			h.logger.Error("msg", "Error shutting down HTTP ingest server",
				"component", "http_source",
				"error", err)
		}
	}
	h.wg.Wait()
	h.logger.Info("msg", "HTTP ingest source stopped", "component", "http_source")
}

func (h *HTTPSource) GetStats() SourceStats {
	lastEvent, _ := h.lastEventTime.Load().(time.Time)

	return SourceStats{
		Type:          "http",
		TotalEvents:   h.totalEvents.Load(),
		DroppedEvents: h.droppedEvents.Load(),
		InvalidEvents: h.invalidEvents.Load(),
		StartTime:     h.startTime,
		LastEventTime: lastEvent,
		Details: map[string]any{
			"host": h.host,
			"port": h.port,
			"path": h.ingestPath,
		},
	}
}

func (h *HTTPSource) requestHandler(ctx *fasthttp.RequestCtx) {
	if string(ctx.Path()) != h.ingestPath {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		return
	}
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		return
	}

	if h.verifier != nil {
		header := string(ctx.Request.Header.Peek("Authorization"))
		if !h.verifier.VerifyHeader(header) {
			ctx.SetStatusCode(fasthttp.StatusUnauthorized)
			return
		}
	}

	if h.limiter != nil && !h.limiter.Allow(ctx.RemoteIP().String()) {
		h.droppedEvents.Add(1)
		ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
		return
	}

	ev, err := decodeEvent(ctx.PostBody())
	if err != nil {
		h.invalidEvents.Add(1)
		h.logger.Debug("msg", "Rejected malformed ingest event",
			"component", "http_source",
			"remote", ctx.RemoteIP().String(),
			"error", err)
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		return
	}

	h.pipeline.SubmitFrontend(ev)

	h.totalEvents.Add(1)
	h.lastEventTime.Store(time.Now())
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}
