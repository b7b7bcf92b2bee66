package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	KindInitialize        = "token.initialize"
	KindInitializeMint    = "token.initialize_mint"
	KindInitializeAccount = "token.initialize_account"
	KindMint              = "token.mint"
	KindBurn              = "token.burn"
	KindTransfer          = "token.transfer"
	KindApprove           = "token.approve"
	KindRevoke            = "token.revoke"
	KindSetAuthority      = "token.set_authority"
	KindCloseAccount      = "token.close_account"
	KindFreeze            = "token.freeze"
	KindThaw              = "token.thaw"
)

// Event describes a committed token operation.
type Event struct {
	Kind          string            `json:"kind"`
	TransactionID string            `json:"transaction_id"`
	Mint          string            `json:"mint,omitempty"`
	Accounts      map[string]string `json:"accounts,omitempty"`
	Amounts       map[string]uint64 `json:"amounts,omitempty"`
	Authority     string            `json:"authority,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// Publisher delivers committed events to downstream systems.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LoggerPublisher writes events to the structured logger.
type LoggerPublisher struct {
	logger *slog.Logger
}

// NewLoggerPublisher constructs a logging publisher.
func NewLoggerPublisher(logger *slog.Logger) *LoggerPublisher {
	return &LoggerPublisher{logger: logger}
}

// Publish writes the event to the structured logger.
func (p *LoggerPublisher) Publish(_ context.Context, event Event) error {
	if p == nil || p.logger == nil {
		return nil
	}
	p.logger.Info("event",
		"kind", event.Kind,
		"transaction_id", event.TransactionID,
		"mint", event.Mint,
		"accounts", event.Accounts,
		"amounts", event.Amounts,
	)
	return nil
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher writes events as JSON to a Kafka topic, keyed by mint so events of one token
// stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher wraps a configured kafka writer.
func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// Publish encodes and writes the event.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Mint),
		Value: data,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
		},
	})
}
