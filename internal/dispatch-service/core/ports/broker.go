package ports

import (
	"context"

	messagebrokerdto "instantfix/internal/dispatch-service/core/domain/message_broker_dto"

	amqp "github.com/rabbitmq/amqp091-go"
)

// IEventBroker carries status events from the coordinator to the fanout.
// Publishing is best-effort from the coordinator's point of view: a
// failed push is logged, never rolled back into the transition.
type IEventBroker interface {
	Close() error
	PushStatusUpdate(ctx context.Context, msg messagebrokerdto.RequestStatusUpdate) error
	ConsumeStatusUpdates(ctx context.Context) (<-chan amqp.Delivery, error)
}
