package kafka

import (
	"context"
	"encoding/json"

	"cinescore/pkg/logging"
	"cinescore/pkg/model"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"go.uber.org/zap"
)

// Publisher defines a Kafka rating-event publisher.
type Publisher struct {
	producer *kafka.Producer
	topic    string
	logger   *zap.Logger
}

// NewPublisher creates a new Kafka publisher for rating events.
func NewPublisher(addr string, topic string, logger *zap.Logger) (*Publisher, error) {
	logger = logger.With(
		zap.String(logging.FieldComponent, "kafka-publisher"),
		zap.String("topic", topic),
	)
	producer, err := kafka.NewProducer(&kafka.ConfigMap{"bootstrap.servers": addr})
	if err != nil {
		return nil, err
	}
	p := &Publisher{producer: producer, topic: topic, logger: logger}
	go p.drainDeliveryReports()
	return p, nil
}

// drainDeliveryReports logs failed deliveries. Events are best
// effort, so failures never reach the request path.
func (p *Publisher) drainDeliveryReports() {
	for e := range p.producer.Events() {
		if m, ok := e.(*kafka.Message); ok && m.TopicPartition.Error != nil {
			p.logger.Warn("Rating event delivery failed", zap.Error(m.TopicPartition.Error))
		}
	}
}

// Publish enqueues a rating event to the topic.
func (p *Publisher) Publish(_ context.Context, event *model.RatingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Value:          payload,
	}, nil)
}

// Close flushes outstanding events and releases the producer.
func (p *Publisher) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}
