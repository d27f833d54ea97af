package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/visionedge/person-detection-service/detections"
)

const (
	AcquireTimeout    = 5 * time.Second
	HealthCheckPeriod = 60 * time.Second
)

// SessionFactory builds one engine session. The pool uses it at startup and
// when replenishing after a failed session was dropped.
type SessionFactory func() (detections.Session, error)

// SessionPool owns a fixed set of engine sessions and hands them out one
// request at a time. The loaded model is shared and read-only; serializing
// access per session is the only guard the engine needs.
type SessionPool struct {
	sessions   chan detections.Session
	size       int
	factory    SessionFactory
	mu         sync.Mutex
	closed     bool
	metrics    *PoolMetrics
	lastErrors []error
}

type PoolMetrics struct {
	mu              sync.RWMutex
	inUse           int
	totalAcquired   int64
	totalReleased   int64
	acquireFailures int64
	waitTime        time.Duration
}

func NewSessionPool(size int, factory SessionFactory) (*SessionPool, error) {
	if size <= 0 {
		size = 1
	}

	pool := &SessionPool{
		sessions: make(chan detections.Session, size),
		size:     size,
		factory:  factory,
		metrics:  &PoolMetrics{},
	}

	for i := 0; i < size; i++ {
		session, err := factory()
		if err != nil {
			pool.Destroy()
			return nil, fmt.Errorf("failed to initialize session %d: %w", i, err)
		}
		pool.sessions <- session
	}

	go pool.healthCheck()

	return pool, nil
}

func (p *SessionPool) Acquire(ctx context.Context) (detections.Session, error) {
	if p.closed {
		return nil, fmt.Errorf("pool is closed")
	}

	start := time.Now()
	defer func() {
		p.metrics.mu.Lock()
		p.metrics.waitTime += time.Since(start)
		p.metrics.mu.Unlock()
	}()

	select {
	case session := <-p.sessions:
		p.metrics.mu.Lock()
		p.metrics.inUse++
		p.metrics.totalAcquired++
		p.metrics.mu.Unlock()
		return session, nil
	case <-time.After(AcquireTimeout):
		p.metrics.mu.Lock()
		p.metrics.acquireFailures++
		p.metrics.mu.Unlock()
		return nil, fmt.Errorf("timeout waiting for available session")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *SessionPool) Release(session detections.Session) {
	if p.closed {
		session.Destroy()
		return
	}

	p.metrics.mu.Lock()
	p.metrics.inUse--
	p.metrics.totalReleased++
	p.metrics.mu.Unlock()

	p.sessions <- session
}

func (p *SessionPool) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true
	close(p.sessions)

	for session := range p.sessions {
		session.Destroy()
	}
}

// InUse reports the number of sessions currently handed out.
func (p *SessionPool) InUse() int {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()
	return p.metrics.inUse
}

func (p *SessionPool) healthCheck() {
	ticker := time.NewTicker(HealthCheckPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if p.closed {
			return
		}

		p.metrics.mu.RLock()
		missing := p.size - p.metrics.inUse - len(p.sessions)
		p.metrics.mu.RUnlock()

		if missing > 0 {
			p.replenishSessions(missing)
		}
	}
}

func (p *SessionPool) replenishSessions(count int) {
	for i := 0; i < count; i++ {
		session, err := p.factory()
		if err != nil {
			p.recordError(err)
			continue
		}
		p.sessions <- session
	}
}

func (p *SessionPool) recordError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErrors = append(p.lastErrors, err)
	if len(p.lastErrors) > 10 {
		p.lastErrors = p.lastErrors[1:]
	}
}

func (p *SessionPool) GetMetrics() PoolMetrics {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()
	return PoolMetrics{
		inUse:           p.metrics.inUse,
		totalAcquired:   p.metrics.totalAcquired,
		totalReleased:   p.metrics.totalReleased,
		acquireFailures: p.metrics.acquireFailures,
		waitTime:        p.metrics.waitTime,
	}
}
