package app

import (
	"time"

	"go.uber.org/dig"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/jobs"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/service/orders"
	"courier-dispatch/internal/service/partner"
	"courier-dispatch/internal/transport/kafka"
	"courier-dispatch/internal/transport/mqtt"
)

const (
	jobTimeout  = 30 * time.Second
	mqttTimeout = 10 * time.Second
)

func registerBackground(container *dig.Container) error {
	return provideAll(container,
		newOrdersConsumer,
		newLocationSubscriber,
		newJobManager,
	)
}

// newOrdersConsumer returns nil when kafka is not configured.
func newOrdersConsumer(cfg *config.Config, logger logx.Logger, p *orders.Processor) (*kafka.Consumer, error) {
	return kafka.NewConsumer(
		logger.With(logx.String("component", "orders_consumer")),
		cfg.Kafka.Brokers,
		cfg.Kafka.Group,
		cfg.Kafka.OrdersTopic,
		p.Handle,
	)
}

// newLocationSubscriber returns nil when mqtt is not configured.
func newLocationSubscriber(cfg *config.Config, logger logx.Logger, svc *partner.Service) *mqtt.Subscriber {
	return mqtt.NewSubscriber(mqtt.Config{
		Broker:   cfg.MQTT.Broker,
		ClientID: cfg.MQTT.ClientID,
		Topic:    cfg.MQTT.Topic,
		QoS:      1,
		Timeout:  mqttTimeout,
	}, svc, logger.With(logx.String("component", "location_feed")))
}

type jobManagerIn struct {
	dig.In
	Config  *config.Config
	Logger  logx.Logger
	Sweeper jobs.Sweeper `optional:"true"`
}

func newJobManager(in jobManagerIn) (*jobs.Manager, error) {
	m := jobs.NewManager(in.Logger, jobTimeout)
	if in.Sweeper == nil {
		return m, nil
	}
	if err := m.Schedule(in.Config.Jobs.AlertSweepSchedule, jobs.NewAlertSweepJob(in.Sweeper, in.Logger)); err != nil {
		return nil, err
	}
	return m, nil
}
