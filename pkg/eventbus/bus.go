// Package eventbus is the in-process event transport. Lifecycle events are
// published to a single watermill topic and fanned out to local handlers.
package eventbus

import (
	"context"

	"carematch-be/internal/pkg/logger"
	"carematch-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const Topic = "lifecycle-events"

type Handler func(ctx context.Context, event events.Event) error

type Bus struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func New(logger logger.ILogger) *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			watermill.NewStdLogger(false, false),
		),
		logger: logger,
	}
}

func (b *Bus) Publish(ctx context.Context, event events.Event) error {
	payload, err := events.Marshal(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("type", event.EventType())
	return b.pubSub.Publish(Topic, msg)
}

// Subscribe starts a goroutine delivering every event to handler until ctx
// is cancelled or the bus is closed. Handler errors are logged and the
// message is acked; the bus does not redeliver.
func (b *Bus) Subscribe(ctx context.Context, name string, handler Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			b.process(ctx, name, msg, handler)
		}
	}()
	return nil
}

func (b *Bus) process(ctx context.Context, name string, msg *message.Message, handler Handler) {
	defer msg.Ack()

	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		b.logger.Error("EVENTBUS", "Dropping undecodable event", map[string]interface{}{
			"subscriber": name,
			"error":      err,
		})
		return
	}

	if err := handler(ctx, event); err != nil {
		b.logger.Error("EVENTBUS", "Handler failed", map[string]interface{}{
			"subscriber": name,
			"type":       event.Type,
			"error":      err,
		})
	}
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
