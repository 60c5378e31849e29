package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

const fetchBatch = 10

// ConsumerSpec describes a durable pull consumer on the events stream.
type ConsumerSpec struct {
	Durable    string
	Subject    string
	MaxDeliver int
	AckWait    time.Duration
}

// Handler processes one message and is responsible for acking it.
type Handler func(ctx context.Context, msg jetstream.Msg)

// ConsumerManager creates durable consumers and drives their fetch loops.
type ConsumerManager struct {
	js jetstream.JetStream
}

func NewConsumerManager(js jetstream.JetStream) *ConsumerManager {
	return &ConsumerManager{js: js}
}

// EnsureConsumer creates or updates the durable consumer described by spec.
// Unset MaxDeliver and AckWait default to 5 attempts and 30s.
func (cm *ConsumerManager) EnsureConsumer(ctx context.Context, spec ConsumerSpec) (jetstream.Consumer, error) {
	cfg := jetstream.ConsumerConfig{
		Durable:       spec.Durable,
		FilterSubject: spec.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		MaxDeliver:    spec.MaxDeliver,
		AckWait:       spec.AckWait,
	}
	if cfg.MaxDeliver == 0 {
		cfg.MaxDeliver = 5
	}
	if cfg.AckWait == 0 {
		cfg.AckWait = 30 * time.Second
	}

	consumer, err := cm.js.CreateOrUpdateConsumer(ctx, StreamEvents, cfg)
	if err != nil {
		return nil, fmt.Errorf("ensuring consumer %s on %s: %w", spec.Durable, StreamEvents, err)
	}
	return consumer, nil
}

// Consume ensures the consumer and feeds fetched messages to h one at a time
// until ctx is cancelled.
func (cm *ConsumerManager) Consume(ctx context.Context, spec ConsumerSpec, h Handler) error {
	consumer, err := cm.EnsureConsumer(ctx, spec)
	if err != nil {
		return err
	}

	slog.Info("consumer started", "consumer", spec.Durable, "subject", spec.Subject)

	for {
		msgs, err := consumer.Fetch(fetchBatch, jetstream.FetchMaxWait(FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("fetching events", "consumer", spec.Durable, "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			h(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}
