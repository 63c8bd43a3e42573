package domain

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrViewerNotFound = errors.New("viewer not found")
	ErrAlreadyJoined  = errors.New("session already joined")
	ErrSessionClosed  = errors.New("session closed")
	ErrSendQueueFull  = errors.New("send queue full")
)
