package memory

import (
	"context"
	"testing"

	"beamcast/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEndpoint struct{}

func (*stubEndpoint) Send(interface{}) error { return nil }

func TestGetOrCreateReturnsSameRoom(t *testing.T) {
	store := NewMemoryRoomStore()
	ctx := context.Background()

	a := store.GetOrCreate(ctx, "r1")
	b := store.GetOrCreate(ctx, "r1")
	assert.Same(t, a, b)
	assert.Equal(t, 1, store.Count(ctx))
}

func TestGetWithoutCreation(t *testing.T) {
	store := NewMemoryRoomStore()
	ctx := context.Background()

	_, ok := store.Get(ctx, "missing")
	assert.False(t, ok)
	assert.Equal(t, 0, store.Count(ctx))
}

func TestRemoveIfEmpty(t *testing.T) {
	store := NewMemoryRoomStore()
	ctx := context.Background()

	room := store.GetOrCreate(ctx, "r1")
	room.AddViewer("v-1", &stubEndpoint{})

	// Non-empty rooms survive.
	store.RemoveIfEmpty(ctx, "r1")
	assert.Equal(t, 1, store.Count(ctx))

	room.RemoveViewer("v-1")
	store.RemoveIfEmpty(ctx, "r1")
	assert.Equal(t, 0, store.Count(ctx))

	// Idempotent on absent rooms.
	store.RemoveIfEmpty(ctx, "r1")
	assert.Equal(t, 0, store.Count(ctx))
}

// The health check round-trips a probe room through the store. The probe
// must leave an occupied room of the same name untouched.
func TestProbeRoundTrip(t *testing.T) {
	store := NewMemoryRoomStore()
	ctx := context.Background()

	probe := domain.RoomID("healthcheck-probe")
	store.GetOrCreate(ctx, probe)
	_, ok := store.Get(ctx, probe)
	require.True(t, ok)
	store.RemoveIfEmpty(ctx, probe)
	assert.Equal(t, 0, store.Count(ctx))

	occupied := store.GetOrCreate(ctx, probe)
	occupied.AddViewer("v-1", &stubEndpoint{})
	store.GetOrCreate(ctx, probe)
	_, ok = store.Get(ctx, probe)
	require.True(t, ok)
	store.RemoveIfEmpty(ctx, probe)

	got, ok := store.Get(ctx, probe)
	require.True(t, ok)
	assert.Same(t, occupied, got)
}

func TestRemovedRoomRefusesRegistrations(t *testing.T) {
	store := NewMemoryRoomStore()
	ctx := context.Background()

	stale := store.GetOrCreate(ctx, "r1")
	store.RemoveIfEmpty(ctx, "r1")

	// A handler holding the stale reference must observe the teardown
	// and resolve a fresh room.
	require.False(t, stale.AddViewer("v-1", &stubEndpoint{}))

	fresh := store.GetOrCreate(ctx, "r1")
	assert.NotSame(t, stale, fresh)
	assert.True(t, fresh.AddViewer("v-1", &stubEndpoint{}))
	assert.Equal(t, 1, store.Count(ctx))
}

func TestNoOrphanedEmptyRooms(t *testing.T) {
	store := NewMemoryRoomStore()
	ctx := context.Background()

	room := store.GetOrCreate(ctx, "r1")
	room.SetBroadcaster(&stubEndpoint{})
	room.AddViewer("v-1", &stubEndpoint{})

	room.ClearBroadcaster()
	store.RemoveIfEmpty(ctx, "r1")
	assert.Equal(t, 1, store.Count(ctx), "room with a viewer must survive")

	room.RemoveViewer("v-1")
	store.RemoveIfEmpty(ctx, "r1")
	assert.Equal(t, 0, store.Count(ctx), "vacated room must be deleted immediately")

	_, ok := store.Get(ctx, domain.RoomID("r1"))
	assert.False(t, ok)
}
