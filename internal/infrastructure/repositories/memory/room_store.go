package memory

import (
	"context"
	"sync"

	"beamcast/internal/core/domain"
	"beamcast/internal/core/ports"
)

// MemoryRoomStore keeps all room state process-resident. The store
// mutex guards the room table; each room carries its own lock for
// membership mutations. Lock order is always store then room.
type MemoryRoomStore struct {
	rooms map[domain.RoomID]*domain.Room
	mu    sync.RWMutex
}

func NewMemoryRoomStore() ports.RoomStore {
	return &MemoryRoomStore{
		rooms: make(map[domain.RoomID]*domain.Room),
	}
}

func (s *MemoryRoomStore) GetOrCreate(ctx context.Context, id domain.RoomID) *domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, exists := s.rooms[id]
	if !exists {
		room = domain.NewRoom(id)
		s.rooms[id] = room
	}
	return room
}

func (s *MemoryRoomStore) Get(ctx context.Context, id domain.RoomID) (*domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, exists := s.rooms[id]
	return room, exists
}

func (s *MemoryRoomStore) RemoveIfEmpty(ctx context.Context, id domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, exists := s.rooms[id]
	if !exists {
		return
	}
	if room.CloseIfEmpty() {
		delete(s.rooms, id)
	}
}

func (s *MemoryRoomStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rooms)
}
