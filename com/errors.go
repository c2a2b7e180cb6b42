package com

import "errors"

var (
	// ErrConnectionClosed reports an orderly peer shutdown observed at a
	// frame boundary.
	ErrConnectionClosed = errors.New("com: connection closed")
	// ErrClosedMidFrame reports a stream that ended inside a frame,
	// after the length prefix or partway through the payload.
	ErrClosedMidFrame = errors.New("com: connection closed mid-frame")
	// ErrMessageTooLarge reports a payload above the configured maximum
	// frame size, on either the write or the read path.
	ErrMessageTooLarge = errors.New("com: message too large")

	ErrServerClosed = errors.New("com: server closed")
	ErrClientClosed = errors.New("com: client closed")
)
