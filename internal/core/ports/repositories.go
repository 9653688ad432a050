package ports

import (
	"context"

	"roomrelay/internal/core/domain"
)

// RoomRegistry owns the mapping roomId -> ordered participants plus a reverse
// endpoint index. Implementations serialize all access; returned endpoints
// are handles copied out of the critical section, safe to send on afterwards.
type RoomRegistry interface {
	// Join adds a participant and returns the userIds present in the room
	// before this join, in join order. The room is created if absent.
	// A duplicate userId is appended, not rejected.
	Join(ctx context.Context, roomID domain.RoomID, userID domain.UserID, endpoint Endpoint) ([]domain.UserID, error)

	// Leave removes the participant bound to the endpoint, deleting the room
	// if it becomes empty. ok is false if the endpoint is not registered.
	Leave(ctx context.Context, endpointID domain.EndpointID) (domain.RoomID, domain.UserID, bool)

	// FindByUserID resolves a userId to its room and endpoint. Rooms are
	// scanned in creation order, first match wins.
	FindByUserID(ctx context.Context, userID domain.UserID) (domain.RoomID, Endpoint, bool)

	// SetMuted updates the first participant matching userId and returns its
	// room and endpoint id for broadcast fan-out.
	SetMuted(ctx context.Context, userID domain.UserID, muted bool) (domain.RoomID, domain.EndpointID, bool)

	// MemberEndpoints returns the endpoints of a room's participants in join
	// order, skipping exclude when non-empty.
	MemberEndpoints(ctx context.Context, roomID domain.RoomID, exclude domain.EndpointID) []Endpoint

	// Members returns participant snapshots for one room in join order.
	Members(ctx context.Context, roomID domain.RoomID) ([]domain.Participant, error)

	// Rooms lists active rooms in creation order.
	Rooms(ctx context.Context) []domain.RoomInfo

	// Stats reports the number of active rooms and connected participants.
	Stats(ctx context.Context) (rooms int, participants int)
}
