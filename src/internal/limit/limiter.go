// FILE: src/internal/limit/limiter.go
package limit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultCleanupInterval = 1 * time.Minute

// Limiter provides per-client request rate limiting for the ingest
// sources
type Limiter struct {
	clients         sync.Map // map[string]*clientLimiter
	requestsPerSec  rate.Limit
	burstSize       int
	cleanupInterval time.Duration
	maxIdle         time.Duration
	done            chan struct{}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	mu       sync.Mutex
}

// New creates a rate limiter and starts its idle-client cleanup
// routine
func New(requestsPerSec float64, burstSize int) *Limiter {
	l := &Limiter{
		requestsPerSec:  rate.Limit(requestsPerSec),
		burstSize:       burstSize,
		cleanupInterval: defaultCleanupInterval,
		maxIdle:         3 * defaultCleanupInterval,
		done:            make(chan struct{}),
	}

	go l.cleanupLoop()

	return l
}

// Allow reports whether the given client may submit another event
func (l *Limiter) Allow(client string) bool {
	return l.getLimiter(client).Allow()
}

// Stop terminates the cleanup routine
func (l *Limiter) Stop() {
	close(l.done)
}

func (l *Limiter) getLimiter(client string) *rate.Limiter {
	if val, ok := l.clients.Load(client); ok {
		cl := val.(*clientLimiter)
		cl.mu.Lock()
		cl.lastSeen = time.Now()
		cl.mu.Unlock()
		return cl.limiter
	}

	cl := &clientLimiter{
		limiter:  rate.NewLimiter(l.requestsPerSec, l.burstSize),
		lastSeen: time.Now(),
	}
	if existing, loaded := l.clients.LoadOrStore(client, cl); loaded {
		return existing.(*clientLimiter).limiter
	}
	return cl.limiter
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.removeIdleClients()
		}
	}
}

func (l *Limiter) removeIdleClients() {
	cutoff := time.Now().Add(-l.maxIdle)
	l.clients.Range(func(key, val any) bool {
		cl := val.(*clientLimiter)
		cl.mu.Lock()
		idle := cl.lastSeen.Before(cutoff)
		cl.mu.Unlock()
		if idle {
			l.clients.Delete(key)
		}
		return true
	})
}
