package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"virtual-doctor/internal/consultation"
)

const ConsultationTopic = "consultation_events"

// Writer is the part of kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RecordedEvent is published once per stored consultation record.
type RecordedEvent struct {
	Type        string              `json:"type"`
	RecordID    string              `json:"record_id"`
	Identity    string              `json:"patient_identity"`
	Language    string              `json:"language"`
	InputMethod string              `json:"input_method"`
	Followup    bool                `json:"followup"`
	Timestamp   string              `json:"timestamp"`
	Record      consultation.Record `json:"record"`
}

// Publisher sends consultation records to Kafka. It satisfies
// consultation.Sink.
type Publisher struct {
	writer Writer
	topic  string
}

// NewKafkaPublisher checks the broker is reachable and returns a publisher.
func NewKafkaPublisher(broker string) (*Publisher, error) {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	conn.Close()

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  ConsultationTopic,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return NewPublisher(writer, ConsultationTopic), nil
}

func NewPublisher(w Writer, topic string) *Publisher {
	return &Publisher{writer: w, topic: topic}
}

func (p *Publisher) Append(ctx context.Context, identity string, rec consultation.Record) error {
	eventType := "consultation_recorded"
	if rec.IsFollowup() {
		eventType = "followup_recorded"
	}

	value, err := json.Marshal(RecordedEvent{
		Type:        eventType,
		RecordID:    rec.ID,
		Identity:    identity,
		Language:    rec.Language,
		InputMethod: string(rec.InputMethod),
		Followup:    rec.IsFollowup(),
		Timestamp:   rec.Timestamp,
		Record:      rec,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(identity), Value: value}); err != nil {
		return fmt.Errorf("publish %s to %s: %w", eventType, p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
