package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"http://localhost:9200"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Database.Driver != DriverElasticsearch {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Database.VerifyCerts == nil || !*cfg.Database.VerifyCerts {
		t.Error("verify_certs should default to true")
	}
	if cfg.Search.Index != "products" {
		t.Errorf("search.index = %q", cfg.Search.Index)
	}
	if cfg.Ingest.Index != "products" {
		t.Errorf("ingest.index = %q", cfg.Ingest.Index)
	}
	if cfg.Ingest.IDField != "productId" || cfg.Ingest.BatchSize != 500 {
		t.Errorf("ingest = %+v", cfg.Ingest)
	}
	fields := cfg.SearchFields()
	if len(fields) != 2 || fields[0].Name != "title" || fields[0].Boost != 3 {
		t.Errorf("fields = %+v", fields)
	}
}

func TestApplyDefaults_KeepsExplicitVerifyCertsFalse(t *testing.T) {
	verify := false
	cfg := Config{Database: DatabaseConfig{VerifyCerts: &verify}}
	cfg.ApplyDefaults()
	if *cfg.Database.VerifyCerts {
		t.Error("explicit verify_certs=false must survive defaults")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"bad driver", func(c *Config) { c.Database.Driver = "valkey" }, "database.driver"},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"bad index", func(c *Config) { c.Search.Index = "has space" }, "search.index"},
		{"bad ingest index", func(c *Config) { c.Ingest.Index = "a/b" }, "ingest.index"},
		{"bad field", func(c *Config) { c.Search.Fields = []string{"title^x"} }, "search.fields"},
		{"redis ok", func(c *Config) { c.Database.Driver = DriverRedis }, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("got %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("PINSEARCH_TEST_ES", "http://es:9200")
	path := filepath.Join(t.TempDir(), "test.yaml")
	content := `
http:
  port: ${PINSEARCH_TEST_PORT:-8081}
database:
  driver: elasticsearch
  addrs: ["${PINSEARCH_TEST_ES}"]
  verify_certs: false
search:
  index: catalog
  fields: ["name^2", "brand"]
ingest:
  data_file: data/sample_products.ndjson
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 8081 {
		t.Errorf("port = %d, want 8081", cfg.HTTP.Port)
	}
	if cfg.Database.Addrs[0] != "http://es:9200" {
		t.Errorf("addrs = %v", cfg.Database.Addrs)
	}
	if *cfg.Database.VerifyCerts {
		t.Error("verify_certs should be false")
	}
	if cfg.Search.Index != "catalog" || cfg.SearchFields()[0].Boost != 2 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Ingest.Index != "catalog" {
		t.Errorf("ingest.index = %q, want search.index fallback", cfg.Ingest.Index)
	}
	if cfg.Ingest.DataFile != "data/sample_products.ndjson" {
		t.Errorf("data_file = %q", cfg.Ingest.DataFile)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PINSEARCH_SET", "value")
	got := string(expandEnvVars([]byte("a=${PINSEARCH_SET} b=${PINSEARCH_UNSET:-fallback} c=${PINSEARCH_UNSET}")))
	if got != "a=value b=fallback c=" {
		t.Errorf("got %q", got)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if GetEnv() != "local" {
		t.Errorf("GetEnv() = %q, want local", GetEnv())
	}
	t.Setenv("ENV", "prod")
	if GetEnv() != "prod" {
		t.Errorf("GetEnv() = %q, want prod", GetEnv())
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	for _, v := range []string{"PORT", "DB_DRIVER", "DB_ADDR", "DB_VERIFY_CERTS", "INGEST_DATA_FILE", "LOG_LEVEL"} {
		t.Setenv(v, "")
	}
	t.Setenv(ConfigPathEnv, "")
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local): %v", err)
	}
	if cfg.HTTP.Port != 8080 || cfg.Database.Driver != DriverElasticsearch {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Ingest.DataFile != "data/sample_products.ndjson" {
		t.Errorf("data_file = %q", cfg.Ingest.DataFile)
	}
	if len(cfg.SearchFields()) != 3 {
		t.Errorf("fields = %v", cfg.Search.Fields)
	}
}

func TestLoad_ConfigPathOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := "http:\n  port: 9999\ndatabase:\n  driver: redis\n  addrs: [\"localhost:6379\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnv, path)

	cfg, err := Load("prod")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9999 || cfg.Database.Driver != DriverRedis {
		t.Errorf("cfg = %+v", cfg)
	}
}
