package service

import "context"

// EventPublisher delivers a JSON payload under a routing key
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
