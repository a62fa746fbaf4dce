package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// Producer publishes order events to a Kafka topic.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{writer: writer}
}

func (p *Producer) Publish(ctx context.Context, message []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{Value: message})
}

func (p *Producer) Close() {
	_ = p.writer.Close()
}
