package domain

import "time"

type RoomID string

type UserID string

// EndpointID identifies one live signaling connection. A user that reconnects
// gets a fresh endpoint and counts as a new participant.
type EndpointID string

// Participant is a point-in-time snapshot of one room member.
type Participant struct {
	UserID   UserID    `json:"userId"`
	IsMuted  bool      `json:"isMuted"`
	JoinedAt time.Time `json:"joinedAt"`
}

// RoomInfo summarizes one active room for introspection endpoints.
type RoomInfo struct {
	RoomID       RoomID    `json:"roomId"`
	Participants int       `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
}
