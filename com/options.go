package com

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const defaultRecvBuffer = 256

type options struct {
	maxMessageSize uint32
	recvBuffer     int
	readTimeout    time.Duration
	writeTimeout   time.Duration
	logger         zerolog.Logger
}

func defaultOptions() options {
	return options{
		maxMessageSize: DefaultMaxMessageSize,
		recvBuffer:     defaultRecvBuffer,
		logger:         log.Logger,
	}
}

// Option configures a Server or Client.
type Option func(*options)

// WithMaxMessageSize bounds a single frame payload in bytes. Frames
// declaring more than this are rejected before allocation.
func WithMaxMessageSize(n uint32) Option {
	return func(o *options) {
		if n > 0 {
			o.maxMessageSize = n
		}
	}
}

// WithRecvBuffer sets how many received messages may be queued before
// per-peer readers block.
func WithRecvBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.recvBuffer = n
		}
	}
}

// WithReadTimeout bounds how long a receive may wait for a frame. Zero
// means no timeout; the protocol itself imposes none.
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) {
		o.readTimeout = d
	}
}

// WithWriteTimeout bounds how long a single peer write may stall.
// Recommended on servers so a half-open subscriber cannot wedge a
// broadcast.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) {
		o.writeTimeout = d
	}
}

// WithLogger sets the structured logger. Defaults to the process-wide
// zerolog logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
