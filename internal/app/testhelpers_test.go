package app

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"courier-dispatch/internal/config"
	"courier-dispatch/internal/logx"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:     8080,
		DB:       config.DefaultDB(),
		Dispatch: config.DefaultDispatch(),
		Backend:  config.BackendMemory,
		Redis:    config.Redis{Prefix: "test:"},
		Kafka: config.Kafka{
			Group:       "courier-dispatch",
			OrdersTopic: "orders.paid",
			AlertsTopic: "partner.alerts",
		},
		MQTT:      config.MQTT{Topic: "partners/+/location"},
		Billing:   config.DefaultBilling(),
		RateLimit: config.DefaultRateLimit(),
		Jobs:      config.Jobs{AlertSweepSchedule: "@every 30s"},
	}
}

func newMiniRedis(t *testing.T) (redis.UniversalClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// newDomainContainer wires everything below HTTP over a stub pool.
func newDomainContainer(t *testing.T, cfg *config.Config) *dig.Container {
	t.Helper()

	c := dig.New()
	require.NoError(t, provideAll(c,
		func() context.Context { return context.Background() },
		func() *config.Config { return cfg },
		logx.Nop,
		func() *pgxpool.Pool { return &pgxpool.Pool{} },
	))
	require.NoError(t, registerState(c))
	require.NoError(t, registerDomainServices(c))
	require.NoError(t, registerBackground(c))
	return c
}

// isolateConfig makes config.Load see no flags and no service env.
func isolateConfig(t *testing.T) {
	t.Helper()
	oldArgs := os.Args
	oldFlags := pflag.CommandLine
	fs := pflag.NewFlagSet("app", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pflag.CommandLine = fs
	os.Args = []string{"app"}
	t.Cleanup(func() {
		pflag.CommandLine = oldFlags
		os.Args = oldArgs
	})
	for _, k := range []string{"PORT", "STATE_BACKEND", "KAFKA_BROKERS", "MQTT_BROKER", "BILLING_URL", "PPROF_ENABLED"} {
		t.Setenv(k, "")
	}
}
