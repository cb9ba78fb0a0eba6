package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaSink appends appointment events as JSON messages to a Kafka topic,
// keyed by appointment id so all events for one appointment land on the
// same partition.
type KafkaSink struct {
	writer *kafka.Writer
}

// NewKafkaSink creates a sink producing to the given broker and topic.
func NewKafkaSink(broker, topic string) *KafkaSink {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      []string{broker},
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: int(kafka.RequireOne),
	})
	return &KafkaSink{writer: writer}
}

// Publish writes one appointment event. Registered on the dispatcher, so
// a broker outage is logged there and never fails the booking.
func (s *KafkaSink) Publish(ev AppointmentEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal appointment event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.AppointmentID),
		Value: payload,
	}
	if err := s.writer.WriteMessages(context.Background(), msg); err != nil {
		return fmt.Errorf("produce appointment event: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
