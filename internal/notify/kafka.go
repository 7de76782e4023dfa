package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// KafkaGateway publishes envelopes to a topic keyed by partner id, so every
// partner's messages stay ordered within one partition.
type KafkaGateway struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

// NewKafkaProducer builds a sync producer suited for KafkaGateway.
func NewKafkaProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Retry.Max = 3
	return sarama.NewSyncProducer(brokers, cfg)
}

// NewKafkaGateway wraps a producer.
func NewKafkaGateway(producer sarama.SyncProducer, topic string) *KafkaGateway {
	return &KafkaGateway{producer: producer, topic: topic, now: time.Now}
}

// AlertPartner implements Gateway.
func (g *KafkaGateway) AlertPartner(_ context.Context, a Alert) error {
	msg, err := g.message(alertEnvelope(a, g.now()))
	if err != nil {
		return err
	}
	if _, _, err := g.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("kafka alert %s/%s: %w", a.OrderID, a.PartnerID, err)
	}
	return nil
}

// NotifyOutcome implements Gateway.
func (g *KafkaGateway) NotifyOutcome(_ context.Context, o Outcome) error {
	envs := takenEnvelopes(o, g.now())
	if len(envs) == 0 {
		return nil
	}
	msgs := make([]*sarama.ProducerMessage, 0, len(envs))
	for _, e := range envs {
		m, err := g.message(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, m)
	}
	if err := g.producer.SendMessages(msgs); err != nil {
		var perr sarama.ProducerErrors
		if errors.As(err, &perr) {
			return fmt.Errorf("kafka outcome %s: %d of %d failed: %w", o.OrderID, len(perr), len(msgs), err)
		}
		return fmt.Errorf("kafka outcome %s: %w", o.OrderID, err)
	}
	return nil
}

// Close closes the underlying producer.
func (g *KafkaGateway) Close() error {
	return g.producer.Close()
}

func (g *KafkaGateway) message(e Envelope) (*sarama.ProducerMessage, error) {
	body, err := encode(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Type, err)
	}
	return &sarama.ProducerMessage{
		Topic: g.topic,
		Key:   sarama.StringEncoder(e.PartnerID),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(e.Type)},
		},
	}, nil
}

var _ Gateway = (*KafkaGateway)(nil)
