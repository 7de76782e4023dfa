package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/require"

	"courier-dispatch/internal/service/orders"
	testlog "courier-dispatch/internal/testutil"
)

type fakeGroup struct{}

func (fakeGroup) Consume(context.Context, []string, sarama.ConsumerGroupHandler) error { return nil }
func (fakeGroup) Errors() <-chan error {
	ch := make(chan error)
	close(ch)
	return ch
}
func (fakeGroup) Close() error { return nil }
func (fakeGroup) Pause(map[string][]int32)  {}
func (fakeGroup) Resume(map[string][]int32) {}
func (fakeGroup) PauseAll()                 {}
func (fakeGroup) ResumeAll()                {}

func TestNewConsumer_SkipsWhenNoKafkaConfig(t *testing.T) {
	t.Parallel()

	rec := testlog.New()

	got, err := NewConsumer(rec.Logger(), nil, "gid", "topic", func(context.Context, orders.Event) error { return nil })
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = NewConsumer(rec.Logger(), []string{"b:9092"}, "", "topic", nil)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = NewConsumer(rec.Logger(), []string{"b:9092"}, "gid", "   ", nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestNewConsumer_ReturnsErrorWhenSaramaFails(t *testing.T) {
	orig := newConsumerGroup
	t.Cleanup(func() { newConsumerGroup = orig })

	sentinel := errors.New("boom")
	newConsumerGroup = func(_ []string, _ string, _ *sarama.Config) (sarama.ConsumerGroup, error) {
		return nil, sentinel
	}

	rec := testlog.New()
	got, err := NewConsumer(rec.Logger(), []string{"b:9092"}, "gid", "topic", nil)
	require.ErrorIs(t, err, sentinel)
	require.Nil(t, got)
}

func TestNewConsumer_UsesConsumerGroup(t *testing.T) {
	orig := newConsumerGroup
	t.Cleanup(func() { newConsumerGroup = orig })

	var gotGroup string
	newConsumerGroup = func(_ []string, group string, cfg *sarama.Config) (sarama.ConsumerGroup, error) {
		gotGroup = group
		require.Equal(t, sarama.OffsetOldest, cfg.Consumer.Offsets.Initial)
		return fakeGroup{}, nil
	}

	got, err := NewConsumer(nil, []string{"b:9092"}, "gid", "orders.paid", nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "gid", gotGroup)
	require.NotNil(t, got.retry)
	require.NoError(t, got.Close())
}

func TestConsumer_RunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &Consumer{logger: testlog.New().Logger(), group: fakeGroup{}, topic: "t"}
	require.ErrorIs(t, c.Run(ctx), context.Canceled)
}

func TestConsumer_NilIsNoop(t *testing.T) {
	t.Parallel()

	var c *Consumer
	require.NoError(t, c.Run(context.Background()))
	require.NoError(t, c.Close())
}
