package signal

import (
	"context"
	"sync"
	"time"

	"beamcast/internal/core/domain"

	"go.uber.org/zap"
)

// Conn is a transport connection tracked by the liveness monitor.
type Conn interface {
	Alive() bool
	ResetAlive()
	MarkAlive()
	Terminate()
	Send(env interface{}) error
}

// NativePinger is implemented by transports with a protocol-level
// keepalive frame. Connections without one are probed with an
// application "ping" envelope that the client must echo back.
type NativePinger interface {
	Ping() error
}

// Registry tracks every live connection and runs the periodic liveness
// sweep. A connection that fails to acknowledge a probe before the next
// sweep is forcibly terminated, which funnels it through the regular
// disconnect cleanup.
type Registry struct {
	conns  map[Conn]struct{}
	mu     sync.Mutex
	logger *zap.SugaredLogger
}

func NewRegistry(logger *zap.SugaredLogger) *Registry {
	return &Registry{
		conns:  make(map[Conn]struct{}),
		logger: logger,
	}
}

func (r *Registry) Add(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c] = struct{}{}
}

func (r *Registry) Remove(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.conns, c)
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.conns)
}

func (r *Registry) snapshot() []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns := make([]Conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	return conns
}

// Sweep probes every tracked connection and terminates the ones that
// missed the previous probe. Detection takes between one and two sweep
// intervals.
func (r *Registry) Sweep() {
	for _, c := range r.snapshot() {
		if !c.Alive() {
			r.logger.Infow("terminating unresponsive connection")
			c.Terminate()
			continue
		}

		c.ResetAlive()
		if p, ok := c.(NativePinger); ok {
			if err := p.Ping(); err != nil {
				r.logger.Debugw("ping failed", "error", err)
			}
			continue
		}
		if err := c.Send(domain.NewPing(time.Now().UnixMilli())); err != nil {
			r.logger.Debugw("ping envelope send failed", "error", err)
		}
	}
}

// Run executes the sweep at the configured heartbeat interval until the
// context is canceled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
