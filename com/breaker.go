package com

import (
	"context"

	"github.com/sony/gobreaker"
)

// BreakerClient wraps a Client's operations in a circuit breaker so a
// dead or flapping server fails fast instead of paying a connection
// timeout on every attempt.
type BreakerClient[T any, P Message[T]] struct {
	*Client[T, P]
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerClient wraps client with a breaker built from settings.
func NewBreakerClient[T any, P Message[T]](client *Client[T, P], settings gobreaker.Settings) *BreakerClient[T, P] {
	return &BreakerClient[T, P]{
		Client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (c *BreakerClient[T, P]) Send(ctx context.Context, v *T) (err error) {
	_, err = c.breaker.Execute(func() (interface{}, error) { return nil, c.Client.Send(ctx, v) })
	return
}

func (c *BreakerClient[T, P]) Recv(ctx context.Context) (*T, error) {
	reply, err := c.breaker.Execute(func() (interface{}, error) { return c.Client.Recv(ctx) })
	if err != nil {
		return nil, err
	}
	return reply.(*T), nil
}
