package invalidation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const DefaultTopic = "NOTES_INVALIDATED"

type Publisher interface {
	Publish(ctx context.Context, sig Signal) error
}

// Bus carries invalidation signals in-process on a single watermill topic.
type Bus struct {
	pubSub *gochannel.GoChannel
	topic  string
	logger watermill.LoggerAdapter
}

var _ Publisher = (*Bus)(nil)

func NewBus(topic string, logger watermill.LoggerAdapter) *Bus {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		// Blocking until ack keeps signals in publish order for each subscriber.
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            64,
			BlockPublishUntilSubscriberAck: true,
		}, logger),
		topic:  topic,
		logger: logger,
	}
}

func (b *Bus) Topic() string {
	return b.topic
}

func (b *Bus) Publish(ctx context.Context, sig Signal) error {
	payload, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal invalidation signal: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	if err := b.pubSub.Publish(b.topic, msg); err != nil {
		return fmt.Errorf("publish invalidation signal: %w", err)
	}
	return nil
}

// Subscribe streams signals until ctx is cancelled, then closes the channel.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Signal, error) {
	messages, err := b.pubSub.Subscribe(ctx, b.topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", b.topic, err)
	}

	out := make(chan Signal, 64)
	go func() {
		defer close(out)
		for msg := range messages {
			var sig Signal
			if err := json.Unmarshal(msg.Payload, &sig); err != nil {
				b.logger.Error("Dropping malformed invalidation signal", err, watermill.LogFields{"message_uuid": msg.UUID})
				msg.Ack()
				continue
			}
			msg.Ack()

			select {
			case out <- sig:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
