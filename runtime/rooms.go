package runtime

import (
	"chat-relay/domain"
	"chat-relay/errors"
	"sync"
)

// Departure describes a room a user just left and who is still in it.
type Departure struct {
	Room      domain.RoomName
	Remaining []string
}

// RoomRegistry holds every room created since the process started.
// Rooms are never deleted, even when their last member leaves.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomName]*domain.Room
	order []domain.RoomName // creation order, used by LeaveAll
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{rooms: make(map[domain.RoomName]*domain.Room)}
}

func (r *RoomRegistry) Create(room domain.RoomName, creator string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rooms[room]; ok {
		return errors.ErrRoomExists
	}
	r.rooms[room] = domain.NewRoom(room, creator)
	r.order = append(r.order, room)
	return nil
}

func (r *RoomRegistry) Join(room domain.RoomName, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rooms[room]
	if !ok {
		return errors.ErrNoSuchRoom
	}
	if !existing.Add(username) {
		return errors.ErrAlreadyMember
	}
	return nil
}

// MembersOf returns a copy of the member list in join order.
func (r *RoomRegistry) MembersOf(room domain.RoomName) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing, ok := r.rooms[room]
	if !ok {
		return nil, errors.ErrNoSuchRoom
	}
	return existing.Members(), nil
}

func (r *RoomRegistry) IsMember(room domain.RoomName, username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	existing, ok := r.rooms[room]
	return ok && existing.Has(username)
}

// LeaveAll removes username from every room it belongs to, in room creation order.
func (r *RoomRegistry) LeaveAll(username string) []Departure {
	r.mu.Lock()
	defer r.mu.Unlock()

	var departures []Departure
	for _, name := range r.order {
		room := r.rooms[name]
		if room.Remove(username) {
			departures = append(departures, Departure{Room: name, Remaining: room.Members()})
		}
	}
	return departures
}

func (r *RoomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
