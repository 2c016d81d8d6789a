// Package events publishes ledger events to Kafka after their changes commit.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kudi/internal/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const EventStatusChanged = "transaction.status_changed"

// StatusChanged announces that a transaction was created or reached a new status.
type StatusChanged struct {
	EventType     string                   `json:"event_type"`
	TransactionID string                   `json:"transaction_id"`
	Reference     string                   `json:"reference"`
	UserID        string                   `json:"user_id"`
	Type          models.TransactionType   `json:"type"`
	Status        models.TransactionStatus `json:"status"`
	Amount        string                   `json:"amount"`
	Currency      models.Currency          `json:"currency"`
	Timestamp     time.Time                `json:"timestamp"`
}

// NewStatusChanged builds the event for txn's current status.
func NewStatusChanged(txn *models.Transaction) StatusChanged {
	return StatusChanged{
		EventType:     EventStatusChanged,
		TransactionID: txn.TransactionID,
		Reference:     txn.Reference,
		UserID:        txn.UserID,
		Type:          txn.Type,
		Status:        txn.Status,
		Amount:        txn.Amount.String(),
		Currency:      txn.Currency,
		Timestamp:     time.Now().UTC(),
	}
}

type Publisher interface {
	PublishStatusChanged(ctx context.Context, event StatusChanged) error
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaWriter builds an async batching writer for the topic.
func NewKafkaWriter(brokers []string, topic string, log *zap.Logger) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		MaxAttempts:  3,
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Debug(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Warn(fmt.Sprintf(msg, args...))
		}),
	}
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// PublishStatusChanged keys messages by transaction id so every event of one
// transaction lands on the same partition in order.
func (p *KafkaPublisher) PublishStatusChanged(ctx context.Context, event StatusChanged) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. Used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) PublishStatusChanged(context.Context, StatusChanged) error { return nil }
