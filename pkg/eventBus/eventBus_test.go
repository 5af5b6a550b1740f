package eventBus

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/NethermindEth/staking-sidecar/internal/config"
	"github.com/NethermindEth/staking-sidecar/internal/logger"
	"github.com/NethermindEth/staking-sidecar/pkg/eventBus/eventBusTypes"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func Test_EventBus(t *testing.T) {
	debug := os.Getenv(config.Debug) == "true"
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: debug})

	eb := NewEventBus(l)

	consumer := &eventBusTypes.Consumer{
		Id:      "testConsumer",
		Channel: make(chan *eventBusTypes.Event, 1000),
		Context: context.Background(),
	}

	receivedCount := atomic.Uint64{}
	receivedCount.Store(0)
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		for {
			select {
			case event := <-consumer.Channel:
				t.Logf("Received event: %v", event)
				receivedCount.Add(1)

				if receivedCount.Load() == uint64(3) {
					eb.Unsubscribe(consumer)
					wg.Done()
					return
				}
			case <-consumer.Context.Done():
				return
			}
		}
	}()
	eb.Subscribe(consumer)

	for i := 0; i < 10; i++ {
		eb.Publish(&eventBusTypes.Event{
			Name: eventBusTypes.Event_BlockProcessed,
			Data: &eventBusTypes.BlockProcessedData{BlockHeight: uint32(i)},
		})
	}
	wg.Wait()

	assert.Equal(t, uint64(3), receivedCount.Load())
	assert.Len(t, eb.consumers.GetAll(), 0)
}

func Test_EventBusFullChannel(t *testing.T) {
	eb := NewEventBus(zap.NewNop())

	consumer := &eventBusTypes.Consumer{
		Id:      "slowConsumer",
		Channel: make(chan *eventBusTypes.Event, 2),
		Context: context.Background(),
	}
	eb.Subscribe(consumer)

	for i := 0; i < 5; i++ {
		eb.Publish(&eventBusTypes.Event{
			Name: eventBusTypes.Event_BlockProcessed,
			Data: &eventBusTypes.BlockProcessedData{BlockHeight: uint32(i)},
		})
	}

	assert.Len(t, consumer.Channel, 2)
	first := <-consumer.Channel
	assert.Equal(t, uint32(0), first.Data.(*eventBusTypes.BlockProcessedData).BlockHeight)
}

func Test_EventBusCancelledConsumer(t *testing.T) {
	eb := NewEventBus(zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	stale := &eventBusTypes.Consumer{Id: "stale", Channel: make(chan *eventBusTypes.Event, 1), Context: ctx}
	live := &eventBusTypes.Consumer{Id: "live", Channel: make(chan *eventBusTypes.Event, 1), Context: context.Background()}
	eb.Subscribe(stale)
	eb.Subscribe(live)

	cancel()
	eb.Publish(&eventBusTypes.Event{Name: eventBusTypes.Event_BlockProcessed})

	assert.Len(t, stale.Channel, 0)
	assert.Len(t, live.Channel, 1)
	consumers := eb.consumers.GetAll()
	if assert.Len(t, consumers, 1) {
		assert.Equal(t, eventBusTypes.ConsumerId("live"), consumers[0].Id)
	}
}
