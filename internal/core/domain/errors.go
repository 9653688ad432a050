package domain

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrEndpointClosed = errors.New("endpoint closed")
	ErrAlreadyJoined  = errors.New("endpoint already joined a room")
)
