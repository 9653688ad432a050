package signal

import (
	"sync"
	"time"

	"roomrelay/internal/core/domain"

	"github.com/gorilla/websocket"
)

// wsEndpoint wraps one WebSocket connection as a ports.Endpoint. Writes are
// serialized; gorilla connections allow only one concurrent writer.
type wsEndpoint struct {
	id           domain.EndpointID
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

func newWSEndpoint(id domain.EndpointID, conn *websocket.Conn, writeTimeout time.Duration) *wsEndpoint {
	return &wsEndpoint{
		id:           id,
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (e *wsEndpoint) ID() domain.EndpointID {
	return e.id
}

func (e *wsEndpoint) Send(event domain.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return domain.ErrEndpointClosed
	}

	e.conn.SetWriteDeadline(time.Now().Add(e.writeTimeout))
	return e.conn.WriteJSON(event)
}

// Ping sends a control ping under the same mutex as Send so the connection
// never sees two concurrent writers.
func (e *wsEndpoint) Ping() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return domain.ErrEndpointClosed
	}

	return e.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(e.writeTimeout))
}

func (e *wsEndpoint) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	return e.conn.Close()
}
