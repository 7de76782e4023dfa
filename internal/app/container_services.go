package app

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"courier-dispatch/internal/acceptance"
	"courier-dispatch/internal/config"
	"courier-dispatch/internal/gateway/billing"
	"courier-dispatch/internal/ledger"
	"courier-dispatch/internal/logx"
	"courier-dispatch/internal/metrics"
	"courier-dispatch/internal/notify"
	"courier-dispatch/internal/proximity"
	"courier-dispatch/internal/repository"
	"courier-dispatch/internal/service/dispatch"
	"courier-dispatch/internal/service/orders"
	"courier-dispatch/internal/service/partner"
)

const serviceTimeout = 3 * time.Second

func registerDomainServices(container *dig.Container) error {
	return provideAll(container,
		provideMetrics,
		repository.NewAssignmentRepo,
		repository.NewPartnerRepo,
		newBilling,
		newNotifier,
		newOrchestrator,
		newDispatcher,
		newPartnerService,
		newOrdersProcessor,
	)
}

type metricsOut struct {
	dig.Out
	RateLimitExceededTotal prometheus.Counter `name:"rate_limit_exceeded_total"`
	GatewayRetriesTotal    prometheus.Counter `name:"gateway_retries_total"`
	Dispatch               *metrics.Dispatch
}

// provideMetrics registers on the default registry, reusing collectors that
// are already there.
func provideMetrics() (metricsOut, error) {
	reg := prometheus.DefaultRegisterer
	rl, err := registerCounter(reg, metrics.RateLimitExceededTotal, metrics.NewRateLimitExceededTotal())
	if err != nil {
		return metricsOut{}, err
	}
	gr, err := registerCounter(reg, metrics.GatewayRetriesTotal, metrics.NewGatewayRetriesTotal())
	if err != nil {
		return metricsOut{}, err
	}
	d := metrics.NewDispatch()
	if err := d.Register(reg); err != nil {
		return metricsOut{}, fmt.Errorf("register dispatch metrics: %w", err)
	}
	return metricsOut{RateLimitExceededTotal: rl, GatewayRetriesTotal: gr, Dispatch: d}, nil
}

func registerCounter(reg prometheus.Registerer, name string, c prometheus.Counter) (prometheus.Counter, error) {
	c, err := metrics.RegisterCounter(reg, c)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	return c, nil
}

type billingIn struct {
	dig.In
	Config  *config.Config
	Logger  logx.Logger
	Retries prometheus.Counter `name:"gateway_retries_total"`
}

func newBilling(in billingIn) dispatch.Billing {
	b := in.Config.Billing
	client := billing.NewHTTPClient(b.URL, b.Timeout)
	return billing.NewRetryingGateway(client, in.Logger, in.Retries, billing.RetryConfig{
		MaxAttempts: b.MaxAttempts,
		BaseDelay:   b.BaseDelay,
		MaxDelay:    b.MaxDelay,
	})
}

type notifierIn struct {
	dig.In
	Config *config.Config
	Logger logx.Logger
	Redis  redis.UniversalClient `optional:"true"`
}

// newNotifier prefers kafka, then redis pub/sub, then the log.
func newNotifier(in notifierIn) (notify.Gateway, error) {
	cfg := in.Config
	switch {
	case len(cfg.Kafka.Brokers) > 0:
		producer, err := notify.NewKafkaProducer(cfg.Kafka.Brokers)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		in.Logger.Info("notifications via kafka", logx.String("topic", cfg.Kafka.AlertsTopic))
		return notify.NewKafkaGateway(producer, cfg.Kafka.AlertsTopic), nil
	case in.Redis != nil:
		in.Logger.Info("notifications via redis pub/sub", logx.String("prefix", cfg.Redis.Prefix))
		return notify.NewRedisGateway(in.Redis, cfg.Redis.Prefix), nil
	default:
		in.Logger.Warn("no notification transport configured, alerts are only logged")
		return notify.NewLogGateway(in.Logger), nil
	}
}

type orchestratorIn struct {
	dig.In
	Config   *config.Config
	Logger   logx.Logger
	Index    proximity.Index
	Ledger   ledger.Ledger
	Notifier notify.Gateway
	Waiter   acceptance.Waiter
	Store    *repository.AssignmentRepo
	Partners *repository.PartnerRepo
	Billing  dispatch.Billing
	Metrics  *metrics.Dispatch
}

func policyFromConfig(d config.Dispatch) dispatch.Policy {
	return dispatch.Policy{
		RadiusKm:           d.RadiusKm,
		AcceptTimeout:      d.AcceptTimeout,
		RetryDelay:         d.RetryDelay,
		MaxRetries:         d.MaxRetries,
		CandidatesPerRound: d.CandidatesPerRound,
	}
}

func newOrchestrator(in orchestratorIn) *dispatch.Orchestrator {
	return dispatch.NewOrchestrator(policyFromConfig(in.Config.Dispatch), dispatch.Deps{
		Index:        in.Index,
		Ledger:       in.Ledger,
		Notifier:     in.Notifier,
		Waiter:       in.Waiter,
		Store:        in.Store,
		Billing:      in.Billing,
		Availability: in.Partners,
		Metrics:      in.Metrics,
		Logger:       in.Logger.With(logx.String("component", "orchestrator")),
	})
}

type dispatcherIn struct {
	dig.In
	Config       *config.Config
	Logger       logx.Logger
	Orchestrator *dispatch.Orchestrator
	Store        *repository.AssignmentRepo
	Signaler     acceptance.Signaler
	Metrics      *metrics.Dispatch
}

func newDispatcher(in dispatcherIn) *dispatch.Dispatcher {
	return dispatch.NewDispatcher(
		in.Orchestrator,
		in.Store,
		in.Signaler,
		in.Config.Dispatch.MaxConcurrent,
		in.Metrics,
		in.Logger.With(logx.String("component", "dispatcher")),
	)
}

func newPartnerService(index proximity.Index, repo *repository.PartnerRepo) *partner.Service {
	return partner.NewService(index, repo, serviceTimeout)
}

func newOrdersProcessor(d *dispatch.Dispatcher, p *partner.Service) *orders.Processor {
	return orders.NewProcessor(d, p)
}
