package services

import (
	"context"
	"encoding/json"
	"fmt"

	"roomrelay/internal/core/domain"
	"roomrelay/internal/core/ports"

	"go.uber.org/zap"
)

// SignalingService routes signaling events between participants by logical
// userId. It holds no state of its own; the registry is the single source of
// truth and endpoint sends always happen after the registry call returned.
type SignalingService struct {
	registry ports.RoomRegistry
	metrics  ports.SignalMetrics
	logger   *zap.SugaredLogger
}

func NewSignalingService(registry ports.RoomRegistry, metrics ports.SignalMetrics, logger *zap.SugaredLogger) *SignalingService {
	return &SignalingService{
		registry: registry,
		metrics:  metrics,
		logger:   logger,
	}
}

func (s *SignalingService) HandleJoin(ctx context.Context, endpoint ports.Endpoint, roomID domain.RoomID, userID domain.UserID) error {
	existing, err := s.registry.Join(ctx, roomID, userID, endpoint)
	if err != nil {
		return fmt.Errorf("failed to join room %s: %w", roomID, err)
	}

	s.send(endpoint, domain.Event{
		Type:    domain.EventExistingUsers,
		Payload: domain.ExistingUsersPayload{UserIDs: existing},
	})

	s.broadcast(ctx, roomID, endpoint.ID(), domain.Event{
		Type:    domain.EventUserConnected,
		Payload: domain.UserConnectedPayload{UserID: userID},
	})

	s.metrics.RecordEventRouted(domain.EventJoinRoom)
	s.updateRegistrySize(ctx)

	s.logger.Infow("participant joined",
		"room_id", roomID,
		"user_id", userID,
		"endpoint_id", endpoint.ID(),
		"room_size", len(existing)+1,
	)
	return nil
}

func (s *SignalingService) HandleOffer(ctx context.Context, caller, target domain.UserID, offer json.RawMessage) error {
	return s.route(ctx, domain.EventOffer, caller, target, domain.OfferPayload{
		Caller: caller,
		Offer:  offer,
	})
}

func (s *SignalingService) HandleAnswer(ctx context.Context, caller, target domain.UserID, answer json.RawMessage) error {
	return s.route(ctx, domain.EventAnswer, caller, target, domain.AnswerPayload{
		Caller: caller,
		Answer: answer,
	})
}

func (s *SignalingService) HandleICECandidate(ctx context.Context, caller, target domain.UserID, candidate json.RawMessage) error {
	return s.route(ctx, domain.EventICECandidate, caller, target, domain.ICECandidatePayload{
		Caller:    caller,
		Candidate: candidate,
	})
}

func (s *SignalingService) HandleAudioStatus(ctx context.Context, userID domain.UserID, isMuted bool) error {
	roomID, endpointID, ok := s.registry.SetMuted(ctx, userID, isMuted)
	if !ok {
		s.logger.Debugw("audio status for unknown user dropped", "user_id", userID)
		return nil
	}

	s.broadcast(ctx, roomID, endpointID, domain.Event{
		Type:    domain.EventUserAudioStatus,
		Payload: domain.UserAudioStatusPayload{UserID: userID, IsMuted: isMuted},
	})

	s.metrics.RecordEventRouted(domain.EventAudioStatus)
	s.logger.Infow("audio status changed", "room_id", roomID, "user_id", userID, "is_muted", isMuted)
	return nil
}

func (s *SignalingService) HandleDisconnect(ctx context.Context, endpointID domain.EndpointID) error {
	roomID, userID, ok := s.registry.Leave(ctx, endpointID)
	if !ok {
		// endpoint never joined a room, nothing to announce
		return nil
	}

	s.broadcast(ctx, roomID, "", domain.Event{
		Type:    domain.EventUserDisconnected,
		Payload: domain.UserDisconnectedPayload{UserID: userID},
	})

	s.updateRegistrySize(ctx)
	s.logger.Infow("participant left", "room_id", roomID, "user_id", userID, "endpoint_id", endpointID)
	return nil
}

// route delivers a point-to-point signaling event to the target's endpoint.
// An unresolved target models "the person already left" and is dropped.
func (s *SignalingService) route(ctx context.Context, eventType domain.EventType, caller, target domain.UserID, payload interface{}) error {
	roomID, endpoint, ok := s.registry.FindByUserID(ctx, target)
	if !ok {
		s.metrics.RecordRoutingMiss(eventType)
		s.logger.Debugw("routing miss, event dropped",
			"event_type", eventType,
			"caller", caller,
			"target", target,
		)
		return nil
	}

	s.send(endpoint, domain.Event{Type: eventType, Payload: payload})
	s.metrics.RecordEventRouted(eventType)

	s.logger.Debugw("event routed",
		"event_type", eventType,
		"caller", caller,
		"target", target,
		"room_id", roomID,
	)
	return nil
}

// broadcast fans out to every room member except exclude. Endpoints were
// copied out of the registry; failures affect only that one delivery.
func (s *SignalingService) broadcast(ctx context.Context, roomID domain.RoomID, exclude domain.EndpointID, event domain.Event) {
	endpoints := s.registry.MemberEndpoints(ctx, roomID, exclude)
	for _, endpoint := range endpoints {
		s.send(endpoint, event)
	}
	s.metrics.RecordBroadcastFanout(len(endpoints))
}

func (s *SignalingService) send(endpoint ports.Endpoint, event domain.Event) {
	if err := endpoint.Send(event); err != nil {
		s.logger.Warnw("event delivery failed",
			"event_type", event.Type,
			"endpoint_id", endpoint.ID(),
			"error", err,
		)
	}
}

func (s *SignalingService) updateRegistrySize(ctx context.Context) {
	rooms, participants := s.registry.Stats(ctx)
	s.metrics.SetRegistrySize(rooms, participants)
}
