package eventBus

import (
	"github.com/NethermindEth/staking-sidecar/pkg/eventBus/eventBusTypes"
	"go.uber.org/zap"
)

type EventBus struct {
	consumers *eventBusTypes.ConsumerList
	logger    *zap.Logger
}

func NewEventBus(l *zap.Logger) *EventBus {
	return &EventBus{
		consumers: eventBusTypes.NewConsumerList(),
		logger:    l,
	}
}

func (eb *EventBus) Subscribe(consumer *eventBusTypes.Consumer) {
	eb.consumers.Add(consumer)
	eb.logger.Sugar().Debugw("Subscribed consumer", zap.String("consumerId", string(consumer.Id)))
}

func (eb *EventBus) Unsubscribe(consumer *eventBusTypes.Consumer) {
	eb.consumers.Remove(consumer)
	eb.logger.Sugar().Infow("Unsubscribed consumer", zap.String("consumerId", string(consumer.Id)))
}

// Publish never blocks. Consumers whose context is done are unsubscribed instead.
func (eb *EventBus) Publish(event *eventBusTypes.Event) {
	delivered := 0
	for _, consumer := range eb.consumers.GetAll() {
		if consumer.Context != nil && consumer.Context.Err() != nil {
			eb.Unsubscribe(consumer)
			continue
		}
		if eb.deliver(consumer, event) {
			delivered++
		}
	}
	eb.logger.Sugar().Debugw("Published event",
		zap.String("eventName", event.Name),
		zap.Int("delivered", delivered),
	)
}

func (eb *EventBus) deliver(consumer *eventBusTypes.Consumer, event *eventBusTypes.Event) bool {
	if consumer.Channel == nil {
		eb.logger.Sugar().Debugw("Consumer channel is nil", zap.String("consumerId", string(consumer.Id)))
		return false
	}
	select {
	case consumer.Channel <- event:
		return true
	default:
		eb.logger.Sugar().Warnw("Dropped event for consumer with a full channel",
			zap.String("consumerId", string(consumer.Id)),
			zap.String("eventName", event.Name),
		)
		return false
	}
}
