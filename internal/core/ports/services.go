package ports

import (
	"context"
	"encoding/json"

	"roomrelay/internal/core/domain"
)

// SignalingRouter translates inbound signaling events into registry calls and
// outbound events. Handlers are fire-and-forget: a target that cannot be
// resolved is a silent drop, never an error to the sender.
type SignalingRouter interface {
	HandleJoin(ctx context.Context, endpoint Endpoint, roomID domain.RoomID, userID domain.UserID) error
	HandleOffer(ctx context.Context, caller, target domain.UserID, offer json.RawMessage) error
	HandleAnswer(ctx context.Context, caller, target domain.UserID, answer json.RawMessage) error
	HandleICECandidate(ctx context.Context, caller, target domain.UserID, candidate json.RawMessage) error
	HandleAudioStatus(ctx context.Context, userID domain.UserID, isMuted bool) error
	HandleDisconnect(ctx context.Context, endpointID domain.EndpointID) error
}

// SignalMetrics records routing activity for monitoring.
type SignalMetrics interface {
	RecordEventRouted(eventType domain.EventType)
	RecordRoutingMiss(eventType domain.EventType)
	RecordBroadcastFanout(n int)
	SetRegistrySize(rooms, participants int)
	RecordConnectionOpened()
	RecordConnectionClosed(durationSeconds float64)
}
