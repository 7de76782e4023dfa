package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// State backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config stores service settings.
type Config struct {
	Port      int
	DB        DB
	Dispatch  Dispatch
	Backend   string
	Redis     Redis
	Kafka     Kafka
	MQTT      MQTT
	Billing   Billing
	RateLimit RateLimit
	Pprof     PprofConfig
	Jobs      Jobs
}

// DB stores postgres settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a postgres connection string.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Dispatch stores the assignment policy.
type Dispatch struct {
	RadiusKm           float64
	AcceptTimeout      time.Duration
	RetryDelay         time.Duration
	MaxRetries         int
	CandidatesPerRound int
	AlertTTL           time.Duration
	MaxConcurrent      int
	LocationTTL        time.Duration
}

// Redis stores redis settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Kafka stores broker settings. Empty Brokers disables kafka.
type Kafka struct {
	Brokers     []string
	Group       string
	OrdersTopic string
	AlertsTopic string
}

// MQTT stores the location feed settings. Empty Broker disables it.
type MQTT struct {
	Broker   string
	ClientID string
	Topic    string
}

// Billing stores the billing gateway settings.
type Billing struct {
	URL         string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RateLimit stores per-partner limiter settings.
type RateLimit struct {
	Enabled    bool
	Rate       float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// PprofConfig stores pprof server settings.
type PprofConfig struct {
	Enabled bool
	Addr    string
	User    string
	Pass    string
}

// Jobs stores cron schedules.
type Jobs struct {
	AlertSweepSchedule string
}

// Load reads configuration in order: .env (if present), then environment, then flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:      defaultPort,
		DB:        defaultDB,
		Dispatch:  defaultDispatch,
		Backend:   BackendMemory,
		Redis:     defaultRedis,
		Kafka:     defaultKafka,
		MQTT:      defaultMQTT,
		Billing:   defaultBilling,
		RateLimit: defaultRateLimit,
		Pprof:     defaultPprof,
		Jobs:      Jobs{AlertSweepSchedule: defaultAlertSweepSchedule},
	}

	e := &envReader{}
	e.int("PORT", &cfg.Port)

	e.str("POSTGRES_HOST", &cfg.DB.Host)
	e.str("POSTGRES_PORT", &cfg.DB.Port)
	e.str("POSTGRES_USER", &cfg.DB.User)
	e.str("POSTGRES_PASSWORD", &cfg.DB.Pass)
	e.str("POSTGRES_DB", &cfg.DB.Name)

	e.float("DISPATCH_RADIUS_KM", &cfg.Dispatch.RadiusKm)
	e.duration("DISPATCH_ACCEPT_TIMEOUT", &cfg.Dispatch.AcceptTimeout)
	e.duration("DISPATCH_RETRY_DELAY", &cfg.Dispatch.RetryDelay)
	e.int("DISPATCH_MAX_RETRIES", &cfg.Dispatch.MaxRetries)
	e.int("DISPATCH_CANDIDATES_PER_ROUND", &cfg.Dispatch.CandidatesPerRound)
	e.duration("DISPATCH_ALERT_TTL", &cfg.Dispatch.AlertTTL)
	e.int("DISPATCH_MAX_CONCURRENT", &cfg.Dispatch.MaxConcurrent)
	e.duration("LOCATION_TTL", &cfg.Dispatch.LocationTTL)

	e.str("STATE_BACKEND", &cfg.Backend)
	e.str("REDIS_ADDR", &cfg.Redis.Addr)
	e.str("REDIS_PASSWORD", &cfg.Redis.Password)
	e.int("REDIS_DB", &cfg.Redis.DB)
	e.str("REDIS_PREFIX", &cfg.Redis.Prefix)

	e.list("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	e.str("KAFKA_GROUP", &cfg.Kafka.Group)
	e.str("KAFKA_ORDERS_TOPIC", &cfg.Kafka.OrdersTopic)
	e.str("KAFKA_ALERTS_TOPIC", &cfg.Kafka.AlertsTopic)

	e.str("MQTT_BROKER", &cfg.MQTT.Broker)
	e.str("MQTT_CLIENT_ID", &cfg.MQTT.ClientID)
	e.str("MQTT_LOCATION_TOPIC", &cfg.MQTT.Topic)

	e.str("BILLING_URL", &cfg.Billing.URL)
	e.duration("BILLING_TIMEOUT", &cfg.Billing.Timeout)
	e.int("BILLING_MAX_ATTEMPTS", &cfg.Billing.MaxAttempts)
	e.duration("BILLING_BASE_DELAY", &cfg.Billing.BaseDelay)
	e.duration("BILLING_MAX_DELAY", &cfg.Billing.MaxDelay)

	e.bool("RATE_LIMIT_ENABLED", &cfg.RateLimit.Enabled)
	e.float("RATE_LIMIT_RATE", &cfg.RateLimit.Rate)
	e.int("RATE_LIMIT_BURST", &cfg.RateLimit.Burst)
	e.duration("RATE_LIMIT_TTL", &cfg.RateLimit.TTL)
	e.int("RATE_LIMIT_MAX_BUCKETS", &cfg.RateLimit.MaxBuckets)

	e.bool("PPROF_ENABLED", &cfg.Pprof.Enabled)
	e.str("PPROF_ADDR", &cfg.Pprof.Addr)
	e.str("PPROF_USER", &cfg.Pprof.User)
	e.str("PPROF_PASS", &cfg.Pprof.Pass)

	e.str("ALERT_SWEEP_SCHEDULE", &cfg.Jobs.AlertSweepSchedule)

	if e.err != nil {
		return nil, e.err
	}

	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.StringVar(&cfg.Backend, "state-backend", cfg.Backend, "state backend: memory or redis")
	pflag.Float64Var(&cfg.Dispatch.RadiusKm, "radius-km", cfg.Dispatch.RadiusKm, "partner search radius in km")
	pflag.DurationVar(&cfg.Dispatch.AcceptTimeout, "accept-timeout", cfg.Dispatch.AcceptTimeout, "acceptance wait per partner")
	pflag.IntVar(&cfg.Dispatch.CandidatesPerRound, "candidates-per-round", cfg.Dispatch.CandidatesPerRound, "partners alerted per round")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if p, err := strconv.Atoi(c.DB.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("invalid POSTGRES_PORT: %q", c.DB.Port)
	}
	d := c.Dispatch
	if d.RadiusKm <= 0 {
		return fmt.Errorf("invalid DISPATCH_RADIUS_KM: %v", d.RadiusKm)
	}
	if d.AcceptTimeout <= 0 {
		return fmt.Errorf("invalid DISPATCH_ACCEPT_TIMEOUT: %v", d.AcceptTimeout)
	}
	if d.RetryDelay < 0 {
		return fmt.Errorf("invalid DISPATCH_RETRY_DELAY: %v", d.RetryDelay)
	}
	if d.MaxRetries < 1 {
		return fmt.Errorf("invalid DISPATCH_MAX_RETRIES: %d", d.MaxRetries)
	}
	// a hold that expires mid-wait frees the partner for another order
	if d.AlertTTL < 0 || (d.AlertTTL > 0 && d.AlertTTL <= d.AcceptTimeout) {
		return fmt.Errorf("invalid DISPATCH_ALERT_TTL: %v must exceed DISPATCH_ACCEPT_TIMEOUT %v", d.AlertTTL, d.AcceptTimeout)
	}
	if d.CandidatesPerRound < 1 {
		return fmt.Errorf("invalid DISPATCH_CANDIDATES_PER_ROUND: %d", d.CandidatesPerRound)
	}
	if d.MaxConcurrent < 1 {
		return fmt.Errorf("invalid DISPATCH_MAX_CONCURRENT: %d", d.MaxConcurrent)
	}
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend != BackendMemory && c.Backend != BackendRedis {
		return fmt.Errorf("invalid STATE_BACKEND: %q", c.Backend)
	}
	if c.Billing.MaxAttempts < 1 {
		return fmt.Errorf("invalid BILLING_MAX_ATTEMPTS: %d", c.Billing.MaxAttempts)
	}
	if _, err := url.ParseRequestURI(c.Billing.URL); err != nil {
		return fmt.Errorf("invalid BILLING_URL: %w", err)
	}
	return nil
}

// envReader collects the first parse error so Load can read every key in a row.
type envReader struct{ err error }

func (e *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *envReader) fail(key, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.lookup(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = n
}

func (e *envReader) float(key string, dst *float64) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = f
}

func (e *envReader) bool(key string, dst *bool) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = b
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return
	}
	*dst = d
}

func (e *envReader) list(key string, dst *[]string) {
	v, ok := e.lookup(key)
	if !ok {
		return
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	*dst = out
}
