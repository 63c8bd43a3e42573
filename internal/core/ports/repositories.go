package ports

import (
	"context"

	"beamcast/internal/core/domain"
)

// RoomStore is the mapping from room identifier to live room state.
// A room exists in the store if and only if it has a broadcaster or at
// least one viewer; RemoveIfEmpty enforces the invariant after every
// mutation that could vacate a room.
type RoomStore interface {
	// GetOrCreate returns the existing room or creates an empty one.
	GetOrCreate(ctx context.Context, id domain.RoomID) *domain.Room

	// Get looks a room up without creating it.
	Get(ctx context.Context, id domain.RoomID) (*domain.Room, bool)

	// RemoveIfEmpty deletes the room entry if it has no broadcaster and
	// no viewers. Idempotent.
	RemoveIfEmpty(ctx context.Context, id domain.RoomID)

	// Count returns the number of live rooms.
	Count(ctx context.Context) int
}
