package fanout

import (
	"context"
	"encoding/json"
	"sync"

	"instantfix/internal/dispatch-service/core/ports"
	"instantfix/internal/mylogger"

	messagebrokerdto "instantfix/internal/dispatch-service/core/domain/message_broker_dto"
	websocketdto "instantfix/internal/dispatch-service/core/domain/websocket_dto"

	"github.com/rabbitmq/amqp091-go"
)

// Fanout consumes status updates off the broker and pushes each one to
// every live connection of the target user. It is purely a delivery
// worker: the durable notification (when one applies) was already
// written by the coordinator before the message got here.
type Fanout struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	log        mylogger.Logger
	dispatcher ports.INotifyWebsocket
	consumer   ports.IEventBroker
}

func New(
	ctx context.Context,
	wg *sync.WaitGroup,
	log mylogger.Logger,
	dispatcher ports.INotifyWebsocket,
	consumer ports.IEventBroker,
) *Fanout {
	return &Fanout{
		ctx:        ctx,
		wg:         wg,
		log:        log,
		dispatcher: dispatcher,
		consumer:   consumer,
	}
}

func (f *Fanout) Run() error {
	ch, err := f.consumer.ConsumeStatusUpdates(f.ctx)
	if err != nil {
		return err
	}

	f.wg.Add(1)
	go f.work(f.ctx, ch)
	return nil
}

func (f *Fanout) work(ctx context.Context, ch <-chan amqp091.Delivery) {
	log := f.log.Action("work")
	defer func() {
		log.Info("fanout worker is done")
		f.wg.Done()
	}()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := f.deliver(msg); err != nil {
				continue
			}
		case <-ctx.Done():
			return
		}
	}
}

func (f *Fanout) deliver(msg amqp091.Delivery) error {
	log := f.log.Action("deliver")

	m := messagebrokerdto.RequestStatusUpdate{}
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		log.Error("cannot unmarshal status update", err)
		msg.Nack(false, false) // poison message, do not requeue
		return err
	}

	payload, err := json.Marshal(websocketdto.RequestStatusUpdateDto{
		RequestID:     m.RequestID,
		Status:        m.Status,
		WorkerID:      m.WorkerID,
		CorrelationID: m.CorrelationID,
	})
	if err != nil {
		log.Error("cannot marshal websocket payload", err)
		msg.Nack(false, false)
		return err
	}

	f.dispatcher.WriteToUser(m.TargetUserID, websocketdto.Event{
		Type: websocketdto.TypeRequestStatusUpdated,
		Data: payload,
	})

	log.Debug("status update delivered", "request_id", m.RequestID, "status", m.Status, "user_id", m.TargetUserID)
	return msg.Ack(false)
}
