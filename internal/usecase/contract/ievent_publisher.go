package usecasecontract

import "context"

// IEventPublisher publishes a message to the queue under a routing key.
// The message is JSON-encoded by the implementation.
type IEventPublisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}
