package runtime

import (
	"chat-relay/errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomRegistry_CreateAndJoin(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()

	// Given a room created by alice
	req.NoError(rooms.Create("study", "alice"))

	// When bob and carol join
	req.NoError(rooms.Join("study", "bob"))
	req.NoError(rooms.Join("study", "carol"))

	// Then members are listed in join order, creator first
	members, err := rooms.MembersOf("study")
	req.NoError(err)
	req.Equal([]string{"alice", "bob", "carol"}, members)
	req.True(rooms.IsMember("study", "bob"))
	req.False(rooms.IsMember("study", "dave"))
	req.Equal(1, rooms.Len())
}

func TestRoomRegistry_Errors(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()
	req.NoError(rooms.Create("study", "alice"))

	req.ErrorIs(rooms.Create("study", "bob"), errors.ErrRoomExists)
	req.ErrorIs(rooms.Join("study", "alice"), errors.ErrAlreadyMember)
	req.ErrorIs(rooms.Join("nowhere", "alice"), errors.ErrNoSuchRoom)
	_, err := rooms.MembersOf("nowhere")
	req.ErrorIs(err, errors.ErrNoSuchRoom)
	req.False(rooms.IsMember("nowhere", "alice"))

	// A failed join leaves membership untouched
	members, _ := rooms.MembersOf("study")
	req.Equal([]string{"alice"}, members)
}

func TestRoomRegistry_MembersOfIsACopy(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()
	req.NoError(rooms.Create("study", "alice"))

	members, _ := rooms.MembersOf("study")
	members[0] = "mallory"

	again, _ := rooms.MembersOf("study")
	req.Equal([]string{"alice"}, again)
}

func TestRoomRegistry_LeaveAll(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()
	req.NoError(rooms.Create("b-room", "alice"))
	req.NoError(rooms.Create("a-room", "carol"))
	req.NoError(rooms.Create("other", "carol"))
	req.NoError(rooms.Join("b-room", "bob"))
	req.NoError(rooms.Join("a-room", "alice"))

	// When alice leaves everything
	departures := rooms.LeaveAll("alice")

	// Then departures follow room creation order with the remaining members
	req.Equal([]Departure{
		{Room: "b-room", Remaining: []string{"bob"}},
		{Room: "a-room", Remaining: []string{"carol"}},
	}, departures)
	req.False(rooms.IsMember("b-room", "alice"))

	// Rooms survive, even once empty
	req.Empty(rooms.LeaveAll("alice"))
	req.Len(rooms.LeaveAll("bob"), 1)
	members, err := rooms.MembersOf("b-room")
	req.NoError(err)
	req.Empty(members)
	req.ErrorIs(rooms.Create("b-room", "dave"), errors.ErrRoomExists)
}

func TestRoomRegistry_ConcurrentCreateHasOneWinner(t *testing.T) {
	req := require.New(t)
	rooms := NewRoomRegistry()

	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- rooms.Create("study", "alice")
		}()
	}
	wg.Wait()
	close(results)

	created := 0
	for err := range results {
		if err == nil {
			created++
		} else {
			req.ErrorIs(err, errors.ErrRoomExists)
		}
	}
	req.Equal(1, created)
}
