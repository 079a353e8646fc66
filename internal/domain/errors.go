package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNotConnected = errors.New("transport not connected")
	ErrUnknownOp    = errors.New("unknown protocol op")
	ErrShortPayload = errors.New("contract payload too short")
	ErrInvalidPrice = errors.New("invalid price string")
	ErrWSDisconnect = errors.New("websocket disconnected")
)
