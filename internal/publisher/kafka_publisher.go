package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/pkg/kafka"
	"github.com/Dequr01/fair-ticket/pkg/retry"
)

// KafkaFactPublisher publishes facts as JSON records to a single topic.
// Records are keyed by ticket ID (event ID for event-scoped facts) so
// per-ticket ordering survives partitioning.
type KafkaFactPublisher struct {
	producer *kafka.Producer
	topic    string
	retryCfg *retry.Config
}

// KafkaFactPublisherConfig holds publisher configuration
type KafkaFactPublisherConfig struct {
	Brokers       []string
	ClientID      string
	Topic         string
	MaxRetries    int
	RetryInterval time.Duration
}

func NewKafkaFactPublisher(ctx context.Context, cfg *KafkaFactPublisherConfig) (*KafkaFactPublisher, error) {
	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      cfg.ClientID,
		MaxRetries:    cfg.MaxRetries,
		RetryInterval: cfg.RetryInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fact producer: %w", err)
	}

	return &KafkaFactPublisher{
		producer: producer,
		topic:    cfg.Topic,
		retryCfg: &retry.Config{
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		},
	}, nil
}

func (p *KafkaFactPublisher) Publish(ctx context.Context, fact domain.Fact) error {
	payload, err := json.Marshal(fact)
	if err != nil {
		return fmt.Errorf("failed to marshal fact: %w", err)
	}

	key := strconv.FormatUint(fact.TicketID, 10)
	if fact.TicketID == 0 {
		key = "event-" + strconv.FormatUint(fact.EventID, 10)
	}

	return retry.Do(ctx, p.retryCfg, func(ctx context.Context) error {
		return p.producer.Publish(ctx, p.topic, key, payload)
	})
}

func (p *KafkaFactPublisher) Close() {
	p.producer.Close()
}
