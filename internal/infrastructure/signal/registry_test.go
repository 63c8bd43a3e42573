package signal

import (
	"sync"
	"testing"

	"beamcast/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeConn has no native ping; the sweep must fall back to the
// application-level ping envelope.
type fakeConn struct {
	mu         sync.Mutex
	alive      bool
	terminated bool
	sent       []interface{}
}

func (f *fakeConn) Alive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive
}

func (f *fakeConn) ResetAlive() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive = false
}

func (f *fakeConn) MarkAlive() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alive = true
}

func (f *fakeConn) Terminate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminated = true
}

func (f *fakeConn) Send(env interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, env)
	return nil
}

func (f *fakeConn) sentEnvelopes() []interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]interface{}, len(f.sent))
	copy(out, f.sent)
	return out
}

// nativeConn additionally supports protocol-level pings.
type nativeConn struct {
	fakeConn
	pings int
}

func (n *nativeConn) Ping() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pings++
	return nil
}

func TestSweepSendsFallbackPingEnvelope(t *testing.T) {
	registry := NewRegistry(zap.NewNop().Sugar())
	conn := &fakeConn{alive: true}
	registry.Add(conn)

	registry.Sweep()

	assert.False(t, conn.Alive(), "sweep must clear the liveness flag")
	envs := conn.sentEnvelopes()
	require.Len(t, envs, 1)
	ping, ok := envs[0].(domain.PingEnvelope)
	require.True(t, ok)
	assert.Equal(t, domain.EnvPing, ping.Type)
	assert.NotZero(t, ping.Timestamp)
}

func TestSweepPrefersNativePing(t *testing.T) {
	registry := NewRegistry(zap.NewNop().Sugar())
	conn := &nativeConn{fakeConn: fakeConn{alive: true}}
	registry.Add(conn)

	registry.Sweep()

	assert.Equal(t, 1, conn.pings)
	assert.Empty(t, conn.sentEnvelopes(), "native transports get no ping envelope")
}

func TestSweepTerminatesAfterTwoMissedProbes(t *testing.T) {
	registry := NewRegistry(zap.NewNop().Sugar())
	conn := &fakeConn{alive: true}
	registry.Add(conn)

	registry.Sweep()
	assert.False(t, conn.terminated)

	// No acknowledgment before the next sweep: terminated.
	registry.Sweep()
	assert.True(t, conn.terminated)
}

func TestSweepSparesAcknowledgedConnections(t *testing.T) {
	registry := NewRegistry(zap.NewNop().Sugar())
	conn := &fakeConn{alive: true}
	registry.Add(conn)

	registry.Sweep()
	conn.MarkAlive() // pong arrived
	registry.Sweep()

	assert.False(t, conn.terminated)
	assert.Len(t, conn.sentEnvelopes(), 2)
}

func TestRegistryCount(t *testing.T) {
	registry := NewRegistry(zap.NewNop().Sugar())
	a := &fakeConn{alive: true}
	b := &fakeConn{alive: true}

	registry.Add(a)
	registry.Add(b)
	assert.Equal(t, 2, registry.Count())

	registry.Remove(a)
	assert.Equal(t, 1, registry.Count())
}
