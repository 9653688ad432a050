package domain

import "encoding/json"

type EventType string

// Inbound event types (client -> relay).
const (
	EventJoinRoom     EventType = "join-room"
	EventOffer        EventType = "offer"
	EventAnswer       EventType = "answer"
	EventICECandidate EventType = "ice-candidate"
	EventAudioStatus  EventType = "audio-status"
)

// Outbound event types (relay -> client). Offer, answer and ice-candidate
// keep their inbound names when forwarded.
const (
	EventExistingUsers    EventType = "existing-users"
	EventUserConnected    EventType = "user-connected"
	EventUserAudioStatus  EventType = "user-audio-status"
	EventUserDisconnected EventType = "user-disconnected"
	EventError            EventType = "error"
)

// Event is the wire envelope for both directions of the signaling channel.
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type JoinRoomPayload struct {
	RoomID RoomID `json:"roomId"`
	UserID UserID `json:"userId"`
}

type ExistingUsersPayload struct {
	UserIDs []UserID `json:"userIds"`
}

type UserConnectedPayload struct {
	UserID UserID `json:"userId"`
}

// OfferPayload carries an opaque session description. Target is set on the
// inbound leg and dropped when the relay forwards to the target endpoint.
type OfferPayload struct {
	Caller UserID          `json:"caller"`
	Target UserID          `json:"target,omitempty"`
	Offer  json.RawMessage `json:"offer"`
}

type AnswerPayload struct {
	Caller UserID          `json:"caller"`
	Target UserID          `json:"target,omitempty"`
	Answer json.RawMessage `json:"answer"`
}

type ICECandidatePayload struct {
	Caller    UserID          `json:"caller"`
	Target    UserID          `json:"target,omitempty"`
	Candidate json.RawMessage `json:"candidate"`
}

type AudioStatusPayload struct {
	UserID  UserID `json:"userId"`
	IsMuted bool   `json:"isMuted"`
}

type UserAudioStatusPayload struct {
	UserID  UserID `json:"userId"`
	IsMuted bool   `json:"isMuted"`
}

type UserDisconnectedPayload struct {
	UserID UserID `json:"userId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
