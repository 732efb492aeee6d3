package port

import "context"

// EventPublisher is an interface to publish upload lifecycle events to a
// broker (nats, kafka, ...)
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close() error
}

// EventConsumer is an interface to define an event consumer
type EventConsumer interface {
	Subscribe(ctx context.Context, handler MessageService) error
	Close() error
}

// MessageService is an interface to define message handling
type MessageService interface {
	HandleMessage(ctx context.Context, data []byte) error
}
