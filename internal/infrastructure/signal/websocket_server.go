package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"roomrelay/internal/core/domain"
	"roomrelay/internal/core/ports"
	"roomrelay/pkg/tracing"
	"roomrelay/pkg/utils"
	"roomrelay/pkg/validation"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Should be configured properly for production
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Config tunes connection lifetime and throttling for the WebSocket server.
type Config struct {
	PingInterval time.Duration
	PongTimeout  time.Duration
	WriteTimeout time.Duration

	RateLimitEnabled  bool
	MessagesPerSecond float64
	Burst             int
	MaxMessageSize    int64
}

// DefaultConfig returns conservative transport defaults.
func DefaultConfig() Config {
	return Config{
		PingInterval:      30 * time.Second,
		PongTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		RateLimitEnabled:  false,
		MessagesPerSecond: 100,
		Burst:             200,
		MaxMessageSize:    64 * 1024,
	}
}

// wireMessage is the inbound JSON envelope.
type wireMessage struct {
	Type    domain.EventType `json:"type"`
	Payload json.RawMessage  `json:"payload,omitempty"`
}

// WebSocketServer accepts signaling connections, assigns each one an
// endpoint id, and feeds parsed events into the router. The connection's
// closure, however it happens, is surfaced to the router as a disconnect.
type WebSocketServer struct {
	router  ports.SignalingRouter
	metrics ports.SignalMetrics
	cfg     Config

	endpoints map[domain.EndpointID]*wsEndpoint
	mu        sync.RWMutex

	logger *zap.SugaredLogger
}

func NewWebSocketServer(router ports.SignalingRouter, metrics ports.SignalMetrics, cfg Config, logger *zap.SugaredLogger) *WebSocketServer {
	return &WebSocketServer{
		router:    router,
		metrics:   metrics,
		cfg:       cfg,
		endpoints: make(map[domain.EndpointID]*wsEndpoint),
		logger:    logger,
	}
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}

	endpointID := domain.EndpointID(utils.GenerateEndpointID())
	endpoint := newWSEndpoint(endpointID, conn, s.cfg.WriteTimeout)
	defer endpoint.Close()

	s.mu.Lock()
	s.endpoints[endpointID] = endpoint
	s.mu.Unlock()

	s.metrics.RecordConnectionOpened()
	connectedAt := time.Now()

	// Deferred so the registry and metrics are released on every exit path,
	// including a panic unwinding through the handler.
	defer func() {
		s.mu.Lock()
		delete(s.endpoints, endpointID)
		s.mu.Unlock()

		if err := s.router.HandleDisconnect(context.Background(), endpointID); err != nil {
			s.logger.Warnw("disconnect handling failed", "endpoint_id", endpointID, "error", err)
		}

		s.metrics.RecordConnectionClosed(time.Since(connectedAt).Seconds())
		s.logger.Infow("client disconnected", "endpoint_id", endpointID)
	}()

	s.logger.Infow("client connected", "endpoint_id", endpointID, "remote_addr", r.RemoteAddr)

	if s.cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(s.cfg.MaxMessageSize)
	}
	conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		return nil
	})

	var limiter *rate.Limiter
	if s.cfg.RateLimitEnabled {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.MessagesPerSecond), s.cfg.Burst)
	}

	pingTicker := time.NewTicker(s.cfg.PingInterval)
	defer pingTicker.Stop()

	messageChan := make(chan wireMessage, 10)
	errorChan := make(chan error, 1)

	go func() {
		for {
			var msg wireMessage
			if err := conn.ReadJSON(&msg); err != nil {
				errorChan <- err
				return
			}
			conn.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
			messageChan <- msg
		}
	}()

	for {
		select {
		case msg := <-messageChan:
			if limiter != nil && !limiter.Allow() {
				s.logger.Warnw("message rate limit exceeded, closing connection", "endpoint_id", endpointID)
				return
			}
			if err := s.handleMessage(r.Context(), endpoint, msg); err != nil {
				s.logger.Infow("rejected event", "endpoint_id", endpointID, "event_type", msg.Type, "error", err)
				s.sendError(endpoint, err.Error())
			}

		case <-pingTicker.C:
			// The endpoint serializes pings with in-flight Sends.
			if err := endpoint.Ping(); err != nil {
				s.logger.Infow("ping failed", "endpoint_id", endpointID, "error", err)
				return
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Infow("read failed", "endpoint_id", endpointID, "error", err)
			}
			return
		}
	}
}

func (s *WebSocketServer) handleMessage(ctx context.Context, endpoint ports.Endpoint, msg wireMessage) error {
	if msg.Type == "" {
		return fmt.Errorf("event type is required")
	}

	ctx, span := tracing.TraceSignalEvent(ctx, string(msg.Type), string(endpoint.ID()))
	defer span.End()

	var err error
	switch msg.Type {
	case domain.EventJoinRoom:
		err = s.handleJoin(ctx, endpoint, msg)
	case domain.EventOffer:
		err = s.handleOffer(ctx, msg)
	case domain.EventAnswer:
		err = s.handleAnswer(ctx, msg)
	case domain.EventICECandidate:
		err = s.handleICECandidate(ctx, msg)
	case domain.EventAudioStatus:
		err = s.handleAudioStatus(ctx, msg)
	default:
		err = fmt.Errorf("unknown event type: %s", msg.Type)
	}

	if err != nil {
		tracing.RecordError(ctx, err)
	}
	return err
}

func (s *WebSocketServer) handleJoin(ctx context.Context, endpoint ports.Endpoint, msg wireMessage) error {
	var payload domain.JoinRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid join-room payload: %w", err)
	}

	if err := validation.ValidateRoomID(string(payload.RoomID)); err != nil {
		return fmt.Errorf("invalid join-room payload: %w", err)
	}
	if err := validation.ValidateUserID(string(payload.UserID)); err != nil {
		return fmt.Errorf("invalid join-room payload: %w", err)
	}

	tracing.AddSpanAttributes(ctx,
		tracing.RoomIDKey.String(string(payload.RoomID)),
		tracing.UserIDKey.String(string(payload.UserID)),
	)
	return s.router.HandleJoin(ctx, endpoint, payload.RoomID, payload.UserID)
}

func (s *WebSocketServer) handleOffer(ctx context.Context, msg wireMessage) error {
	var payload domain.OfferPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid offer payload: %w", err)
	}
	if payload.Caller == "" || payload.Target == "" {
		return fmt.Errorf("offer requires caller and target")
	}
	tracing.AddSpanAttributes(ctx,
		tracing.UserIDKey.String(string(payload.Caller)),
		tracing.TargetKey.String(string(payload.Target)),
	)
	return s.router.HandleOffer(ctx, payload.Caller, payload.Target, payload.Offer)
}

func (s *WebSocketServer) handleAnswer(ctx context.Context, msg wireMessage) error {
	var payload domain.AnswerPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid answer payload: %w", err)
	}
	if payload.Caller == "" || payload.Target == "" {
		return fmt.Errorf("answer requires caller and target")
	}
	tracing.AddSpanAttributes(ctx,
		tracing.UserIDKey.String(string(payload.Caller)),
		tracing.TargetKey.String(string(payload.Target)),
	)
	return s.router.HandleAnswer(ctx, payload.Caller, payload.Target, payload.Answer)
}

func (s *WebSocketServer) handleICECandidate(ctx context.Context, msg wireMessage) error {
	var payload domain.ICECandidatePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid ice-candidate payload: %w", err)
	}
	if payload.Caller == "" || payload.Target == "" {
		return fmt.Errorf("ice-candidate requires caller and target")
	}
	tracing.AddSpanAttributes(ctx,
		tracing.UserIDKey.String(string(payload.Caller)),
		tracing.TargetKey.String(string(payload.Target)),
	)
	return s.router.HandleICECandidate(ctx, payload.Caller, payload.Target, payload.Candidate)
}

func (s *WebSocketServer) handleAudioStatus(ctx context.Context, msg wireMessage) error {
	var payload domain.AudioStatusPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("invalid audio-status payload: %w", err)
	}
	if payload.UserID == "" {
		return fmt.Errorf("audio-status requires userId")
	}
	return s.router.HandleAudioStatus(ctx, payload.UserID, payload.IsMuted)
}

func (s *WebSocketServer) sendError(endpoint ports.Endpoint, message string) {
	endpoint.Send(domain.Event{
		Type:    domain.EventError,
		Payload: domain.ErrorPayload{Message: message},
	})
}

// ConnectionCount reports the number of live signaling connections.
func (s *WebSocketServer) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.endpoints)
}

// CloseAll terminates every live connection; used during shutdown.
func (s *WebSocketServer) CloseAll() {
	s.mu.Lock()
	endpoints := make([]*wsEndpoint, 0, len(s.endpoints))
	for _, e := range s.endpoints {
		endpoints = append(endpoints, e)
	}
	s.endpoints = make(map[domain.EndpointID]*wsEndpoint)
	s.mu.Unlock()

	for _, e := range endpoints {
		e.Close()
	}
}
