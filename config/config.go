package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/utils/env"
)

const (
	EnvTest       = "test"
	EnvProduction = "production"

	testHost       = "test.api.amadeus.com/v1"
	productionHost = "api.amadeus.com/v1"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Amadeus   AmadeusConfig   `yaml:"amadeus"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	DebugMode bool            `yaml:"debug"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Swagger        bool     `yaml:"swagger"`
}

type AmadeusConfig struct {
	ClientID         string `yaml:"client_id"`
	ClientSecret     string `yaml:"client_secret"`
	Env              string `yaml:"env"`
	BaseURLOverride  string `yaml:"base_url"`
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	TokenSkewSeconds int    `yaml:"token_skew_seconds"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	SearchEventsTopic string   `yaml:"search_events_topic"`
	GroupID           string   `yaml:"group_id"`
}

type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// LoadConfig reads the YAML file at path (a missing file is not an error),
// then applies environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv overrides file values with non-empty environment variables.
func (c *Config) applyEnv() {
	override(&c.Amadeus.ClientID, "AMADEUS_API_KEY")
	override(&c.Amadeus.ClientSecret, "AMADEUS_API_SECRET")
	override(&c.Amadeus.Env, "AMADEUS_ENV")
	override(&c.Amadeus.BaseURLOverride, "AMADEUS_BASE_URL")
	override(&c.HTTP.Address, "HTTP_ADDRESS")
	override(&c.Telemetry.OTLPEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	if debug, err := env.GetBool("DEBUG_MODE", c.DebugMode); err == nil {
		c.DebugMode = debug
	}
	if brokers := env.GetString("KAFKA_BROKERS", ""); brokers != "" {
		c.Kafka.Brokers = splitList(brokers)
	}
}

func override(dst *string, key string) {
	if v := strings.TrimSpace(env.GetString(key, "")); v != "" {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Amadeus.Env == "" {
		c.Amadeus.Env = EnvTest
	}
	if c.Amadeus.TimeoutSeconds <= 0 {
		c.Amadeus.TimeoutSeconds = 15
	}
	if c.Amadeus.TokenSkewSeconds <= 0 {
		c.Amadeus.TokenSkewSeconds = 60
	}
	if c.Kafka.SearchEventsTopic == "" {
		c.Kafka.SearchEventsTopic = "flight-search-events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "farefinder-worker"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "farefinder"
	}
}

// HasCredentials reports whether both halves of the client credentials are set.
func (a AmadeusConfig) HasCredentials() bool {
	return a.ClientID != "" && a.ClientSecret != ""
}

func (a AmadeusConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (a AmadeusConfig) TokenSkew() time.Duration {
	return time.Duration(a.TokenSkewSeconds) * time.Second
}

// BaseURL resolves the upstream host: explicit override first, then the
// production host when Env is "production", else the test host.
func (a AmadeusConfig) BaseURL() string {
	if strings.TrimSpace(a.BaseURLOverride) != "" {
		return NormalizeBaseURL(a.BaseURLOverride)
	}
	if a.Env == EnvProduction {
		return NormalizeBaseURL(productionHost)
	}
	return NormalizeBaseURL(testHost)
}

// NormalizeBaseURL guarantees an explicit scheme and no trailing slash.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimSpace(raw)
	if !strings.HasPrefix(u, "http") {
		u = "https://" + u
	}
	return strings.TrimSuffix(u, "/")
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
