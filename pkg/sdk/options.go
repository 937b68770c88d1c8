package jarvis

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

const (
	driverRedis  = "redis"
	driverMemory = "memory"
)

type clientConfig struct {
	driver    string
	addrs     []string
	password  string
	keyPrefix string

	engine        Engine
	model         string
	stageTimeout  time.Duration
	ratePerMinute int
	rejectOnLimit bool

	cartURL     string
	cartTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis stores the catalog in a Redis 8+ instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps the catalog in process. Nothing survives Close.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
		c.addrs = nil
	})
}

// WithKeyPrefix namespaces every store key and index. Default: "jarvis:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithEngine sets the reasoning engine. Without one chat answers from the
// fallback policy.
func WithEngine(e Engine, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.engine = e
		c.model = model
	})
}

// WithStageTimeout bounds each engine call. Default: 25s.
func WithStageTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.stageTimeout = d
	})
}

// WithRateLimit caps engine calls per minute across all chats. With reject
// set, calls over the ceiling fail instead of waiting. Default: 10, wait.
func WithRateLimit(perMinute int, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.ratePerMinute = perMinute
		c.rejectOnLimit = reject
	})
}

// WithCartService points the cart operations at an HTTP cart service.
// Default: http://localhost:3001 with a 5s timeout.
func WithCartService(baseURL string, timeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cartURL = baseURL
		c.cartTimeout = timeout
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
