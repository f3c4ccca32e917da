// Package events publishes import-run notifications to Kafka for the
// downstream content-generation consumer. Publishing is best-effort:
// an unreachable broker degrades to a log line, never a failed import.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"writecorpus/types"

	"github.com/IBM/sarama"
)

// DefaultTopic is where import-completed events land unless overridden.
const DefaultTopic = "writecorpus.imports"

// ImportCompleted is the payload published after each successful run.
type ImportCompleted struct {
	SeedURL         string    `json:"seed_url"`
	RecordsImported int       `json:"records_imported"`
	RecordsFailed   int       `json:"records_failed"`
	Truncated       bool      `json:"truncated"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Producer wraps a sarama SyncProducer for import events.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer connects to the given brokers. Topic falls back to
// DefaultTopic when empty.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	if topic == "" {
		topic = DefaultTopic
	}
	return &Producer{producer: producer, topic: topic}, nil
}

// PublishImportCompleted sends the event keyed by the seed URL's
// normalized form so one site's imports stay on one partition.
func (p *Producer) PublishImportCompleted(seedURL string, summary types.ImportSummary) error {
	event := ImportCompleted{
		SeedURL:         seedURL,
		RecordsImported: summary.RecordsImported,
		RecordsFailed:   summary.RecordsFailed,
		Truncated:       summary.Truncated,
		CompletedAt:     summary.CompletedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal import event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(types.NormalizeURL(seedURL)),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish import event: %w", err)
	}

	log.Printf("Published import event for %s (partition=%d, offset=%d)", seedURL, partition, offset)
	return nil
}

// Close shuts down the underlying producer.
func (p *Producer) Close() error {
	return p.producer.Close()
}
