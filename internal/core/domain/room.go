package domain

import "sync"

type RoomID string

type ClientID string

type Role string

const (
	RoleBroadcaster Role = "broadcaster"
	RoleViewer      Role = "viewer"
)

// BroadcasterID is the fixed identifier assigned to the broadcaster of a
// room. Viewer identifiers are generated per connection.
const BroadcasterID ClientID = "broadcaster"

// Endpoint is the outbound side of a connected client. Send must not
// block: implementations enqueue the envelope on a per-connection
// outbound queue and report failure only when the queue is unavailable.
type Endpoint interface {
	Send(env interface{}) error
}

// Room groups at most one broadcaster with any number of viewers.
// All mutations go through its methods and are serialized by the
// room's own mutex. Once Close marks the room as torn down, further
// registrations are refused so a caller holding a stale reference can
// detect the teardown and resolve the room again.
type Room struct {
	ID RoomID

	mu          sync.RWMutex
	closed      bool
	broadcaster Endpoint
	viewers     map[ClientID]Endpoint
}

func NewRoom(id RoomID) *Room {
	return &Room{
		ID:      id,
		viewers: make(map[ClientID]Endpoint),
	}
}

// SetBroadcaster records ep as the room's broadcaster, silently
// replacing any previous one. It reports false if the room is closed.
func (r *Room) SetBroadcaster(ep Endpoint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	r.broadcaster = ep
	return true
}

func (r *Room) ClearBroadcaster() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.broadcaster = nil
}

func (r *Room) Broadcaster() (Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.broadcaster, r.broadcaster != nil
}

// AddViewer registers ep under id. It reports false if the room is closed.
func (r *Room) AddViewer(id ClientID, ep Endpoint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	r.viewers[id] = ep
	return true
}

// RemoveViewer deletes the viewer registered under id and reports
// whether it was present.
func (r *Room) RemoveViewer(id ClientID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.viewers[id]; !ok {
		return false
	}
	delete(r.viewers, id)
	return true
}

func (r *Room) Viewer(id ClientID) (Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ep, ok := r.viewers[id]
	return ep, ok
}

// Viewers returns a snapshot of the current viewer mapping. The copy is
// safe to iterate while other goroutines mutate the room.
func (r *Room) Viewers() map[ClientID]Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[ClientID]Endpoint, len(r.viewers))
	for id, ep := range r.viewers {
		snapshot[id] = ep
	}
	return snapshot
}

func (r *Room) ViewerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.viewers)
}

// Empty reports whether the room has neither a broadcaster nor viewers.
func (r *Room) Empty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.broadcaster == nil && len(r.viewers) == 0
}

// CloseIfEmpty atomically checks emptiness and marks the room closed.
// It reports whether the room was closed by this call.
func (r *Room) CloseIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return true
	}
	if r.broadcaster != nil || len(r.viewers) > 0 {
		return false
	}
	r.closed = true
	return true
}
