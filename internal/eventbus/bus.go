package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"
)

const (
	TopicLedger   = "ledger.changed"
	TopicRoster   = "roster.changed"
	TopicSettings = "settings.changed"
)

// Topics lists every topic a cache-style subscriber needs.
var Topics = []string{TopicLedger, TopicRoster, TopicSettings}

// Change is the payload of every signal. It only says that something moved;
// subscribers reread what they need.
type Change struct {
	Topic   string    `json:"topic"`
	Action  string    `json:"action"`
	EventID uint      `json:"eventId,omitempty"`
	TeamID  uint      `json:"teamId,omitempty"`
	At      time.Time `json:"at"`
}

type Handler func(ctx context.Context, change Change) error

// Bus is an in-process pub/sub. Publish returns once every subscriber has
// handled the message, so a write that publishes is visible to readers served
// after it returns. Subscribers of one topic run concurrently, so work that
// must follow another subscriber belongs in that subscriber's handler.
type Bus struct {
	pubsub *gochannel.GoChannel
	wg     sync.WaitGroup
}

func New() *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            64,
			BlockPublishUntilSubscriberAck: true,
		}, NewZapLogger(zap.L())),
	}
}

func (b *Bus) Publish(ctx context.Context, change Change) error {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err = b.pubsub.Publish(change.Topic, msg); err != nil {
		return fmt.Errorf("b.pubsub.Publish -> %w", err)
	}
	return nil
}

// Subscribe runs handler for every message on topics until ctx is done.
// Handler errors are logged; the message is acked regardless so a failing
// subscriber cannot stall publishers.
func (b *Bus) Subscribe(ctx context.Context, name string, handler Handler, topics ...string) error {
	for _, topic := range topics {
		messages, err := b.pubsub.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("b.pubsub.Subscribe -> %w", err)
		}

		b.wg.Add(1)
		go func(topic string) {
			defer b.wg.Done()
			for msg := range messages {
				b.handle(name, topic, msg, handler)
			}
		}(topic)
	}

	return nil
}

func (b *Bus) handle(name, topic string, msg *message.Message, handler Handler) {
	defer msg.Ack()

	var change Change
	if err := json.Unmarshal(msg.Payload, &change); err != nil {
		zap.L().Error("eventbus: bad payload", zap.String("subscriber", name), zap.String("topic", topic), zap.Error(err))
		return
	}

	if err := handler(msg.Context(), change); err != nil {
		zap.L().Error("eventbus: handler failed",
			zap.String("subscriber", name),
			zap.String("topic", topic),
			zap.String("message_uuid", msg.UUID),
			zap.Error(err),
		)
	}
}

// Close stops delivery and waits for running handlers.
func (b *Bus) Close() error {
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}
