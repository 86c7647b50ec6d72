package eventbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/fan-identity/internal/platform/logging"
)

// Handler processes one decoded delivery. Returning an error is logged; the
// message is acked either way because in-process delivery is not retried.
type Handler func(ctx context.Context, msg *message.Message) error

// Publisher is the write side used by use cases.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// Bus is an in-process pub/sub on top of watermill's Go channel transport.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *logging.Logger
	wg     sync.WaitGroup
}

func New(logger *logging.Logger, buffer int64) *Bus {
	if logger == nil {
		logger = logging.Default()
	}
	if buffer <= 0 {
		buffer = 64
	}

	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: buffer,
		}, NewLoggerAdapter(logger)),
		logger: logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event any) error {
	payload, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(context.WithoutCancel(ctx))

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}
	return nil
}

// Subscribe starts a consumer goroutine for topic that runs until ctx is
// done or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler Handler) error {
	if handler == nil {
		return fmt.Errorf("handler is required for topic %s", topic)
	}

	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	b.logger.Info("subscribed to topic", "topic", topic)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.consume(ctx, topic, messages, handler)
	}()
	return nil
}

func (b *Bus) consume(ctx context.Context, topic string, messages <-chan *message.Message, handler Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}

			msgCtx := msg.Context()
			if err := handler(msgCtx, msg); err != nil {
				b.logger.WarnContext(msgCtx, "event handler failed",
					"topic", topic,
					"message_id", msg.UUID,
					"error", err,
				)
			}
			msg.Ack()
		}
	}
}

// Close stops delivery and waits for consumers to drain.
func (b *Bus) Close() error {
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}

// Decode unmarshals a message payload into T.
func Decode[T any](msg *message.Message) (T, error) {
	var out T
	if err := sonic.Unmarshal(msg.Payload, &out); err != nil {
		return out, fmt.Errorf("decode message %s: %w", msg.UUID, err)
	}
	return out, nil
}
