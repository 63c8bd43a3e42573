package ports

import (
	"context"

	"beamcast/internal/core/domain"
)

// RelayService routes envelopes between the broadcaster and viewers of
// a room. One session belongs to one transport connection; the
// connection handler calls these methods sequentially for its own
// session, while sessions of different connections are handled
// concurrently.
type RelayService interface {
	// Join registers the connection in a room as broadcaster or viewer
	// and emits the join reply plus presence notifications. A malformed
	// join is answered with an error envelope; a repeated join is
	// ignored.
	Join(ctx context.Context, sess *domain.Session, ep domain.Endpoint, env domain.Envelope)

	// Signal relays an opaque negotiation payload to the counterpart
	// peer. Envelopes from unjoined sessions or towards absent peers
	// are dropped silently.
	Signal(ctx context.Context, sess *domain.Session, env domain.Envelope)

	// Disconnect removes the session from its room, notifies the
	// counterpart and deletes the room once empty. A no-op for sessions
	// that never joined.
	Disconnect(ctx context.Context, sess *domain.Session)
}

// Metrics records relay activity. The Prometheus collector implements
// it; tests inject a no-op.
type Metrics interface {
	ConnectionOpened()
	ConnectionClosed()
	JoinRecorded(role domain.Role)
	EnvelopeRelayed(direction string, payloadBytes int)
	EnvelopeDropped(reason string)
	SetRooms(n int)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ConnectionOpened()           {}
func (NopMetrics) ConnectionClosed()           {}
func (NopMetrics) JoinRecorded(domain.Role)    {}
func (NopMetrics) EnvelopeRelayed(string, int) {}
func (NopMetrics) EnvelopeDropped(string)      {}
func (NopMetrics) SetRooms(int)                {}
