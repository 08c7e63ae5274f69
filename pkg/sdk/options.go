package pinsearch

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

type clientConfig struct {
	driver   string // "elasticsearch" or "redis"
	addrs    []string
	username string
	password string

	insecureSkipVerify bool
	caCert             string
	requestTimeout     time.Duration
	readinessTimeout   time.Duration
	keyPrefix          string

	index        string
	fields       []string
	idField      string
	batchSize    int
	maxLineBytes int
	dataFile     string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithElasticsearch connects the client to an Elasticsearch or OpenSearch
// cluster. username may be empty to disable basic auth.
func WithElasticsearch(url, username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverElasticsearch
		c.addrs = []string{url}
		c.username = username
		c.password = password
	})
}

// WithRedis connects the client to Redis 8+ (JSON and query engine required).
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCACert trusts the PEM bundle at path for HTTPS backends.
func WithCACert(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.caCert = path
	})
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify() Option {
	return optionFunc(func(c *clientConfig) {
		c.insecureSkipVerify = true
	})
}

// WithKeyPrefix namespaces Redis keys. Default: "pinsearch:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithTimeouts sets the per-request backend timeout and how long New waits
// for the backend to come up. Zero keeps the default (10s each).
func WithTimeouts(request, readiness time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.requestTimeout = request
		c.readinessTimeout = readiness
	})
}

// WithIndex sets the index searched and ingested into. Default: "products".
func WithIndex(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.index = name
	})
}

// WithSearchFields sets the fields the term is matched against, each
// optionally boosted as "name^boost". Default: title^3, description.
func WithSearchFields(fields ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.fields = fields
	})
}

// WithIngest tunes NDJSON ingestion. Zero values keep the defaults
// (productId, 500 records per batch, 1 MiB per line).
func WithIngest(idField string, batchSize, maxLineBytes int) Option {
	return optionFunc(func(c *clientConfig) {
		c.idField = idField
		c.batchSize = batchSize
		c.maxLineBytes = maxLineBytes
	})
}

// WithDataFile sets the NDJSON file Ingest reads when given no input.
func WithDataFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.dataFile = path
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
