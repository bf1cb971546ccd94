package ports

import (
	"context"

	"brainbrowser/domain/events"
)

// EventPublisher delivers state-change notifications to renderers
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent)
}

// NopPublisher discards events
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...events.DomainEvent) {}
