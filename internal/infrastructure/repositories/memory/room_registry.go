package memory

import (
	"context"
	"sync"
	"time"

	"roomrelay/internal/core/domain"
	"roomrelay/internal/core/ports"
)

type participantEntry struct {
	userID   domain.UserID
	endpoint ports.Endpoint
	muted    bool
	joinedAt time.Time
}

type roomEntry struct {
	id        domain.RoomID
	createdAt time.Time
	// join order, preserved for deterministic existing-users listings
	participants []*participantEntry
}

// RoomRegistry is the in-memory authoritative room/participant table. A single
// mutex guards the whole registry; every method copies what it returns so
// sends happen outside the critical section.
type RoomRegistry struct {
	mu         sync.RWMutex
	rooms      map[domain.RoomID]*roomEntry
	roomOrder  []domain.RoomID // creation order, drives deterministic scans
	byEndpoint map[domain.EndpointID]domain.RoomID
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:      make(map[domain.RoomID]*roomEntry),
		byEndpoint: make(map[domain.EndpointID]domain.RoomID),
	}
}

func (r *RoomRegistry) Join(ctx context.Context, roomID domain.RoomID, userID domain.UserID, endpoint ports.Endpoint) ([]domain.UserID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// one endpoint maps to at most one (room, user) pair
	if _, ok := r.byEndpoint[endpoint.ID()]; ok {
		return nil, domain.ErrAlreadyJoined
	}

	room, exists := r.rooms[roomID]
	if !exists {
		room = &roomEntry{id: roomID, createdAt: time.Now()}
		r.rooms[roomID] = room
		r.roomOrder = append(r.roomOrder, roomID)
	}

	existing := make([]domain.UserID, 0, len(room.participants))
	for _, p := range room.participants {
		existing = append(existing, p.userID)
	}

	room.participants = append(room.participants, &participantEntry{
		userID:   userID,
		endpoint: endpoint,
		joinedAt: time.Now(),
	})
	r.byEndpoint[endpoint.ID()] = roomID

	return existing, nil
}

func (r *RoomRegistry) Leave(ctx context.Context, endpointID domain.EndpointID) (domain.RoomID, domain.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.byEndpoint[endpointID]
	if !ok {
		return "", "", false
	}
	delete(r.byEndpoint, endpointID)

	room := r.rooms[roomID]
	var userID domain.UserID
	for i, p := range room.participants {
		if p.endpoint.ID() == endpointID {
			userID = p.userID
			room.participants = append(room.participants[:i], room.participants[i+1:]...)
			break
		}
	}

	if len(room.participants) == 0 {
		r.deleteRoom(roomID)
	}

	return roomID, userID, true
}

func (r *RoomRegistry) FindByUserID(ctx context.Context, userID domain.UserID) (domain.RoomID, ports.Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, roomID := r.findParticipant(userID); p != nil {
		return roomID, p.endpoint, true
	}
	return "", nil, false
}

func (r *RoomRegistry) SetMuted(ctx context.Context, userID domain.UserID, muted bool) (domain.RoomID, domain.EndpointID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, roomID := r.findParticipant(userID); p != nil {
		p.muted = muted
		return roomID, p.endpoint.ID(), true
	}
	return "", "", false
}

func (r *RoomRegistry) MemberEndpoints(ctx context.Context, roomID domain.RoomID, exclude domain.EndpointID) []ports.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}

	endpoints := make([]ports.Endpoint, 0, len(room.participants))
	for _, p := range room.participants {
		if exclude != "" && p.endpoint.ID() == exclude {
			continue
		}
		endpoints = append(endpoints, p.endpoint)
	}
	return endpoints
}

func (r *RoomRegistry) Members(ctx context.Context, roomID domain.RoomID) ([]domain.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	members := make([]domain.Participant, 0, len(room.participants))
	for _, p := range room.participants {
		members = append(members, domain.Participant{
			UserID:   p.userID,
			IsMuted:  p.muted,
			JoinedAt: p.joinedAt,
		})
	}
	return members, nil
}

func (r *RoomRegistry) Rooms(ctx context.Context) []domain.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]domain.RoomInfo, 0, len(r.roomOrder))
	for _, roomID := range r.roomOrder {
		room := r.rooms[roomID]
		infos = append(infos, domain.RoomInfo{
			RoomID:       room.id,
			Participants: len(room.participants),
			CreatedAt:    room.createdAt,
		})
	}
	return infos
}

func (r *RoomRegistry) Stats(ctx context.Context) (int, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms), len(r.byEndpoint)
}

// findParticipant scans rooms in creation order, participants in join order.
// userId uniqueness is a per-room convention, not enforced on join; with a
// duplicate present the first match wins, deterministically.
func (r *RoomRegistry) findParticipant(userID domain.UserID) (*participantEntry, domain.RoomID) {
	for _, roomID := range r.roomOrder {
		for _, p := range r.rooms[roomID].participants {
			if p.userID == userID {
				return p, roomID
			}
		}
	}
	return nil, ""
}

func (r *RoomRegistry) deleteRoom(roomID domain.RoomID) {
	delete(r.rooms, roomID)
	for i, id := range r.roomOrder {
		if id == roomID {
			r.roomOrder = append(r.roomOrder[:i], r.roomOrder[i+1:]...)
			break
		}
	}
}
