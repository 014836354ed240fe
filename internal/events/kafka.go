package events

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl/plain"

	applog "bazaar/internal/log"
)

type KafkaConfig struct {
	Brokers  []string
	Topic    string
	Username string
	Password string
}

// KafkaPublisher produces events keyed by order id so every event of one
// order lands on the same partition.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),

		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProducerLinger(10 * time.Millisecond),
		kgo.ProducerBatchMaxBytes(1_000_000),

		kgo.WithLogger(kgo.BasicLogger(os.Stderr, kgo.LogLevelWarn, nil)),
	}
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, kgo.SASL(plain.Auth{
			User: cfg.Username,
			Pass: cfg.Password,
		}.AsMechanism()))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, topic: cfg.Topic}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) {
	data, err := e.MarshalBinary()
	if err != nil {
		applog.Error(nil, "events.marshal", err, map[string]any{"order_id": e.OrderID})
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.OrderID),
		Value: data,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(e.Type)},
			{Key: "version", Value: []byte("1.0")},
		},
		Timestamp: e.OccurredAt,
	}
	// detach from the request context: the record outlives the handler
	produceCtx := context.WithoutCancel(ctx)
	p.client.Produce(produceCtx, record, func(r *kgo.Record, err error) {
		if err != nil {
			applog.Error(nil, "events.produce", err, map[string]any{"order_id": e.OrderID, "type": e.Type})
			return
		}
		applog.Info(nil, "events.produced", map[string]any{
			"order_id": e.OrderID, "type": e.Type, "partition": r.Partition, "offset": r.Offset,
		})
	})
}

// Close flushes buffered records before shutting the client down.
func (p *KafkaPublisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		applog.Error(nil, "events.flush", err, nil)
	}
	p.client.Close()
}
