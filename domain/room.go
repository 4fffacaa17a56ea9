package domain

import "slices"

type RoomName string

// Room is a named group of usernames. Members are kept in join order and
// a username appears at most once.
type Room struct {
	Name    RoomName
	members []string
}

// NewRoom creates a room whose first member is its creator.
func NewRoom(name RoomName, creator string) *Room {
	return &Room{Name: name, members: []string{creator}}
}

func (r *Room) Has(username string) bool {
	return slices.Contains(r.members, username)
}

// Add appends username and reports whether it was added.
func (r *Room) Add(username string) bool {
	if r.Has(username) {
		return false
	}
	r.members = append(r.members, username)
	return true
}

// Remove drops username and reports whether it was a member.
func (r *Room) Remove(username string) bool {
	i := slices.Index(r.members, username)
	if i < 0 {
		return false
	}
	r.members = slices.Delete(r.members, i, i+1)
	return true
}

// Members returns a copy of the member list.
func (r *Room) Members() []string {
	return slices.Clone(r.members)
}

func (r *Room) Len() int {
	return len(r.members)
}
