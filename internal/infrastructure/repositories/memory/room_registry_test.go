package memory

import (
	"context"
	"testing"

	"roomrelay/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

type fakeEndpoint struct {
	id domain.EndpointID
}

func (f *fakeEndpoint) ID() domain.EndpointID     { return f.id }
func (f *fakeEndpoint) Send(_ domain.Event) error { return nil }
func (f *fakeEndpoint) Close() error              { return nil }

func ep(id string) *fakeEndpoint {
	return &fakeEndpoint{id: domain.EndpointID(id)}
}

func TestJoin_ReturnsExistingUsersInJoinOrder(t *testing.T) {
	r := NewRoomRegistry()
	ctx := context.Background()

	existing, err := r.Join(ctx, "lobby", "alice", ep("e1"))
	assert.NoError(t, err)
	assert.Empty(t, existing)

	existing, err = r.Join(ctx, "lobby", "bob", ep("e2"))
	assert.NoError(t, err)
	assert.Equal(t, []domain.UserID{"alice"}, existing)

	existing, err = r.Join(ctx, "lobby", "carol", ep("e3"))
	assert.NoError(t, err)
	assert.Equal(t, []domain.UserID{"alice", "bob"}, existing)
}

func TestJoin_DuplicateUserIDIsAppended(t *testing.T) {
	r := NewRoomRegistry()
	ctx := context.Background()

	_, _ = r.Join(ctx, "lobby", "alice", ep("e1"))
	existing, err := r.Join(ctx, "lobby", "alice", ep("e2"))
	assert.NoError(t, err)
	assert.Equal(t, []domain.UserID{"alice"}, existing)

	members, err := r.Members(ctx, "lobby")
	assert.NoError(t, err)
	assert.Len(t, members, 2)

	// first match wins on lookup
	_, endpoint, ok := r.FindByUserID(ctx, "alice")
	assert.True(t, ok)
	assert.Equal(t, domain.EndpointID("e1"), endpoint.ID())
}

func TestJoin_SameEndpointTwiceRejected(t *testing.T) {
	r := NewRoomRegistry()
	ctx := context.Background()

	_, err := r.Join(ctx, "lobby", "alice", ep("e1"))
	assert.NoError(t, err)

	_, err = r.Join(ctx, "other", "alice", ep("e1"))
	assert.ErrorIs(t, err, domain.ErrAlreadyJoined)
}

func TestLeave_RemovesParticipantAndEmptyRoom(t *testing.T) {
	r := NewRoomRegistry()
	ctx := context.Background()

	_, _ = r.Join(ctx, "lobby", "alice", ep("e1"))
	_, _ = r.Join(ctx, "lobby", "bob", ep("e2"))

	roomID, userID, ok := r.Leave(ctx, "e1")
	assert.True(t, ok)
	assert.Equal(t, domain.RoomID("lobby"), roomID)
	assert.Equal(t, domain.UserID("alice"), userID)

	members, err := r.Members(ctx, "lobby")
	assert.NoError(t, err)
	assert.Len(t, members, 1)

	_, _, ok = r.Leave(ctx, "e2")
	assert.True(t, ok)

	// last leave deletes the room
	_, err = r.Members(ctx, "lobby")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	rooms, participants := r.Stats(ctx)
	assert.Zero(t, rooms)
	assert.Zero(t, participants)
}

func TestLeave_UnknownEndpointIsNoop(t *testing.T) {
	r := NewRoomRegistry()
	_, _, ok := r.Leave(context.Background(), "nope")
	assert.False(t, ok)
}

func TestRoomRecreatedAfterDeletionStartsEmpty(t *testing.T) {
	r := NewRoomRegistry()
	ctx := context.Background()

	_, _ = r.Join(ctx, "lobby", "alice", ep("e1"))
	_, _, _ = r.Leave(ctx, "e1")

	existing, err := r.Join(ctx, "lobby", "bob", ep("e2"))
	assert.NoError(t, err)
	assert.Empty(t, existing)
}

func TestFindByUserID_ScansRoomsInCreationOrder(t *testing.T) {
	r := NewRoomRegistry()
	ctx := context.Background()

	_, _ = r.Join(ctx, "first", "shared", ep("e1"))
	_, _ = r.Join(ctx, "second", "shared", ep("e2"))

	roomID, endpoint, ok := r.FindByUserID(ctx, "shared")
	assert.True(t, ok)
	assert.Equal(t, domain.RoomID("first"), roomID)
	assert.Equal(t, domain.EndpointID("e1"), endpoint.ID())

	_, _, ok = r.FindByUserID(ctx, "ghost")
	assert.False(t, ok)
}

func TestSetMuted(t *testing.T) {
	r := NewRoomRegistry()
	ctx := context.Background()

	_, _ = r.Join(ctx, "lobby", "alice", ep("e1"))

	roomID, endpointID, ok := r.SetMuted(ctx, "alice", true)
	assert.True(t, ok)
	assert.Equal(t, domain.RoomID("lobby"), roomID)
	assert.Equal(t, domain.EndpointID("e1"), endpointID)

	members, _ := r.Members(ctx, "lobby")
	assert.True(t, members[0].IsMuted)

	_, _, ok = r.SetMuted(ctx, "ghost", true)
	assert.False(t, ok)
}

func TestMemberEndpoints_ExcludesRequestedEndpoint(t *testing.T) {
	r := NewRoomRegistry()
	ctx := context.Background()

	_, _ = r.Join(ctx, "lobby", "alice", ep("e1"))
	_, _ = r.Join(ctx, "lobby", "bob", ep("e2"))
	_, _ = r.Join(ctx, "other", "dan", ep("e3"))

	endpoints := r.MemberEndpoints(ctx, "lobby", "e1")
	assert.Len(t, endpoints, 1)
	assert.Equal(t, domain.EndpointID("e2"), endpoints[0].ID())

	all := r.MemberEndpoints(ctx, "lobby", "")
	assert.Len(t, all, 2)

	assert.Nil(t, r.MemberEndpoints(ctx, "missing", ""))
}

func TestRooms_ListsInCreationOrder(t *testing.T) {
	r := NewRoomRegistry()
	ctx := context.Background()

	_, _ = r.Join(ctx, "a", "u1", ep("e1"))
	_, _ = r.Join(ctx, "b", "u2", ep("e2"))
	_, _ = r.Join(ctx, "b", "u3", ep("e3"))

	infos := r.Rooms(ctx)
	assert.Len(t, infos, 2)
	assert.Equal(t, domain.RoomID("a"), infos[0].RoomID)
	assert.Equal(t, 1, infos[0].Participants)
	assert.Equal(t, domain.RoomID("b"), infos[1].RoomID)
	assert.Equal(t, 2, infos[1].Participants)
}
