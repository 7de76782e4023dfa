package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

// defaultDispatch leaves RetryDelay zero so it follows AcceptTimeout.
var defaultDispatch = Dispatch{
	RadiusKm:           5,
	AcceptTimeout:      30 * time.Second,
	MaxRetries:         3,
	CandidatesPerRound: 1,
	AlertTTL:           2 * time.Minute,
	MaxConcurrent:      64,
	LocationTTL:        time.Hour,
}

var defaultRedis = Redis{
	Addr:   "127.0.0.1:6379",
	Prefix: "dispatch:",
}

var defaultKafka = Kafka{
	Group:       "courier-dispatch",
	OrdersTopic: "orders.paid",
	AlertsTopic: "partner.alerts",
}

var defaultMQTT = MQTT{
	Topic: "partners/+/location",
}

var defaultBilling = Billing{
	URL:         "http://localhost:8090",
	Timeout:     2 * time.Second,
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    2 * time.Second,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       5,
	Burst:      10,
	TTL:        10 * time.Minute,
	MaxBuckets: 100_000,
}

var defaultPprof = PprofConfig{
	Addr: "127.0.0.1:6060",
}

const defaultAlertSweepSchedule = "@every 30s"

// DefaultPort returns the default port.
func DefaultPort() int { return defaultPort }

// DefaultDB returns the default database settings.
func DefaultDB() DB { return defaultDB }

// DefaultDispatch returns the default dispatch policy settings.
func DefaultDispatch() Dispatch { return defaultDispatch }

// DefaultBilling returns the default billing gateway settings.
func DefaultBilling() Billing { return defaultBilling }

// DefaultRateLimit returns the default rate limit settings.
func DefaultRateLimit() RateLimit { return defaultRateLimit }
