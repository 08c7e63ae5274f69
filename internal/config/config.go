package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/pinsearch/internal/db"
	"github.com/kailas-cloud/pinsearch/internal/domain"
)

// Database drivers.
const (
	DriverElasticsearch = "elasticsearch"
	DriverRedis         = "redis"
)

// Config holds the pinsearch API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings. api_keys open every route;
// search_keys only open POST /search. Both empty disables auth.
type AuthConfig struct {
	APIKeys    []string `yaml:"api_keys"`
	SearchKeys []string `yaml:"search_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	// MaxBodyBytes caps request bodies (ingest payloads included).
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// DatabaseConfig holds search backend connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // elasticsearch, redis (default: elasticsearch)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	VerifyCerts      *bool    `yaml:"verify_certs"`
	CACert           string   `yaml:"ca_cert"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	RequestTimeout   int      `yaml:"request_timeout_sec"`
	DB               int      `yaml:"db"`         // redis only
	KeyPrefix        string   `yaml:"key_prefix"` // redis only
}

// SearchConfig holds page assembly settings.
type SearchConfig struct {
	Index  string   `yaml:"index"`
	Fields []string `yaml:"fields"` // "name" or "name^boost"
}

// IngestConfig holds NDJSON ingestion settings.
type IngestConfig struct {
	// Index is the target when a request names none. Defaults to search.index.
	Index        string `yaml:"index"`
	DataFile     string `yaml:"data_file"`
	IDField      string `yaml:"id_field"`
	BatchSize    int    `yaml:"batch_size"`
	MaxLineBytes int    `yaml:"max_line_bytes"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	var cfg Config
	data = expandEnvVars(data)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 64 << 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverElasticsearch
	}
	if c.Database.VerifyCerts == nil {
		verify := true
		c.Database.VerifyCerts = &verify
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 30
	}
	if c.Database.RequestTimeout <= 0 {
		c.Database.RequestTimeout = 10
	}
	if c.Search.Index == "" {
		c.Search.Index = domain.DefaultIndex
	}
	if len(c.Search.Fields) == 0 {
		c.Search.Fields = []string{"title^3", "description"}
	}
	if c.Ingest.Index == "" {
		c.Ingest.Index = c.Search.Index
	}
	if c.Ingest.IDField == "" {
		c.Ingest.IDField = "productId"
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 500
	}
	if c.Ingest.MaxLineBytes <= 0 {
		c.Ingest.MaxLineBytes = 1 << 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverElasticsearch, DriverRedis:
		// ok
	default:
		return fmt.Errorf(
			"database.driver must be %q or %q, got %q",
			DriverElasticsearch, DriverRedis, c.Database.Driver,
		)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if err := domain.ValidateIndexName(c.Search.Index); err != nil {
		return fmt.Errorf("search.index: %w", err)
	}
	if err := domain.ValidateIndexName(c.Ingest.Index); err != nil {
		return fmt.Errorf("ingest.index: %w", err)
	}
	if _, err := db.ParseFields(c.Search.Fields); err != nil {
		return fmt.Errorf("search.fields: %w", err)
	}
	return nil
}

// SearchFields returns the parsed search.fields. Validate guarantees they parse.
func (c *Config) SearchFields() []db.Field {
	fields, _ := db.ParseFields(c.Search.Fields)
	return fields
}

// ConfigPathEnv overrides the config file location.
const ConfigPathEnv = "PINSEARCH_CONFIG"

// findConfigPath resolves <env>.yaml: $PINSEARCH_CONFIG first, then ./config,
// then the repository's config directory (for tests run from a package dir).
func findConfigPath(env string) string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}

	name := env + ".yaml"
	local := filepath.Join("config", name)

	_, self, _, _ := runtime.Caller(0)
	repoRoot := filepath.Join(filepath.Dir(self), "..", "..")

	for _, p := range []string{local, filepath.Join(repoRoot, "config", name)} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return local
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars substitutes ${VAR} and ${VAR:-default}. An unset or empty VAR
// without a default becomes "".
func expandEnvVars(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		name, def, hasDef := strings.Cut(string(envRef.FindSubmatch(ref)[1]), ":-")
		if v := os.Getenv(name); v != "" || !hasDef {
			return []byte(v)
		}
		return []byte(def)
	})
}
