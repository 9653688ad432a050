package ports

import "roomrelay/internal/core/domain"

// Endpoint is the addressable channel to one connected client, supplied by
// the transport layer. Send is best-effort and must be safe for concurrent
// use; delivery failures never propagate past the caller.
type Endpoint interface {
	ID() domain.EndpointID
	Send(event domain.Event) error
	Close() error
}
