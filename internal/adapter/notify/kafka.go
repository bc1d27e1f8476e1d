package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"underwriting-backend/internal/domain/audit"
)

// DefaultBatchTimeout bounds how long a synchronous publish waits to fill a
// batch; kafka-go's own default is one second.
const DefaultBatchTimeout = 10 * time.Millisecond

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	MaxAttempts  int
	BatchTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher fans committed audit events out to a topic, keyed by
// application id so one application's events stay ordered on a partition.
type KafkaPublisher struct {
	w      messageWriter
	topic  string
	logger *slog.Logger
}

func NewKafkaPublisher(cfg KafkaConfig, logger *slog.Logger) *KafkaPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            cfg.MaxAttempts,
		BatchTimeout:           cfg.BatchTimeout,
	}
	logger.Info("kafka audit publisher ready", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return &KafkaPublisher{w: w, topic: cfg.Topic, logger: logger}
}

// auditMessage is the wire shape on the audit topic.
type auditMessage struct {
	EventID       string         `json:"event_id"`
	ApplicationID string         `json:"application_id"`
	ActorRole     string         `json:"actor_role"`
	ActorID       string         `json:"actor_id"`
	Action        string         `json:"action"`
	Payload       map[string]any `json:"payload,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

func (p *KafkaPublisher) buildMessage(e audit.Event) (kafka.Message, error) {
	value, err := json.Marshal(auditMessage{
		EventID:       e.EventID,
		ApplicationID: e.ApplicationID,
		ActorRole:     string(e.ActorRole),
		ActorID:       e.ActorID,
		Action:        string(e.Action),
		Payload:       e.Payload,
		CreatedAt:     e.CreatedAt.UTC(),
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal audit event %s: %w", e.EventID, err)
	}
	return kafka.Message{
		Topic: p.topic,
		Key:   []byte(e.ApplicationID),
		Value: value,
		Time:  e.CreatedAt,
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(e.Action)},
		},
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...audit.Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		m, err := p.buildMessage(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, m)
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		p.logger.ErrorContext(ctx, "kafka publish failed", "topic", p.topic, "count", len(msgs), "err", err)
		return fmt.Errorf("publish %d audit events: %w", len(msgs), err)
	}
	p.logger.DebugContext(ctx, "kafka audit events sent", "topic", p.topic, "count", len(msgs))
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
