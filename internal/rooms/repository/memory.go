package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	roomserrors "hotelbook/internal/rooms/errors"
	"hotelbook/pkg/model"
	"hotelbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRoomRepository keeps rooms in process memory. Used for local runs and tests.
type MemoryRoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]model.Room
}

func NewMemoryRoomRepository(rooms ...*model.Room) *MemoryRoomRepository {
	repo := &MemoryRoomRepository{rooms: make(map[string]model.Room)}
	for _, room := range rooms {
		repo.Put(room)
	}
	return repo
}

// LoadMemoryRoomRepository seeds the store from a JSON array of rooms.
func LoadMemoryRoomRepository(path string) (*MemoryRoomRepository, error) {
	rooms, err := LoadRoomsFile(path)
	if err != nil {
		return nil, err
	}
	return NewMemoryRoomRepository(rooms...), nil
}

func LoadRoomsFile(path string) ([]*model.Room, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rooms seed file: %w", err)
	}

	var rooms []*model.Room
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms seed file: %w", err)
	}
	for _, room := range rooms {
		sanitizer.SanitizeRoom(room)
	}
	return rooms, nil
}

// Put stores a copy of room, assigning an id when it has none.
func (r *MemoryRoomRepository) Put(room *model.Room) {
	if room.ID == "" {
		room.ID = primitive.NewObjectID().Hex()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = *room
}

func (r *MemoryRoomRepository) FindByID(_ context.Context, id string) (*model.Room, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, id)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, roomserrors.ErrNotFound
	}
	return &room, nil
}
