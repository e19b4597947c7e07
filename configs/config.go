package configs

import (
	"fmt"
	"time"
)

// ServiceConfig is the root of the YAML-backed service configuration.
// Secrets (TMDB API key, JWT secret, MySQL password) may be
// overridden from the environment at startup.
type ServiceConfig struct {
	API              apiConfig              `yaml:"api"`
	Metrics          metricsConfig          `yaml:"metrics"`
	ServiceDiscovery serviceDiscoveryConfig `yaml:"serviceDiscovery"`
	DatabaseConfig   DatabaseConfig         `yaml:"database"`
	CacheConfig      CacheConfig            `yaml:"cache"`
	TMDB             TMDBConfig             `yaml:"tmdb"`
	Auth             AuthConfig             `yaml:"auth"`
	MessengerConfig  MessengerConfig        `yaml:"messenger"`
	Limiter          LimiterConfig          `yaml:"limiter"`
	Tracing          TracingConfig          `yaml:"tracing"`
}

type apiConfig struct {
	Port int `yaml:"port"`
}

type metricsConfig struct {
	Port int `yaml:"port"`
}

type serviceDiscoveryConfig struct {
	Consul consulConfig `yaml:"consul"`
}

type consulConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	// Type selects the store implementation: "mysql" or "memory".
	Type  string      `yaml:"type"`
	Mysql MysqlConfig `yaml:"mysql"`
}

type MysqlConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"password"`
	Name string `yaml:"db_name"`
}

// CacheConfig carries the response-cache TTLs in seconds. Search
// results are slow-changing and keep a long TTL.
type CacheConfig struct {
	DefaultTTLSeconds int `yaml:"defaultTtlSeconds"`
	SearchTTLSeconds  int `yaml:"searchTtlSeconds"`
}

// DefaultTTL returns the service-wide default cache TTL.
func (c CacheConfig) DefaultTTL() time.Duration {
	if c.DefaultTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.DefaultTTLSeconds) * time.Second
}

// SearchTTL returns the TTL for cached search responses.
func (c CacheConfig) SearchTTL() time.Duration {
	if c.SearchTTLSeconds <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.SearchTTLSeconds) * time.Second
}

// TMDBConfig configures the connection to the metadata provider.
type TMDBConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	APIKey         string `yaml:"apiKey"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout returns the bounded timeout applied to provider calls.
func (c TMDBConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// AuthConfig configures token issuance.
type AuthConfig struct {
	JWTSecret       string `yaml:"jwtSecret"`
	TokenTTLMinutes int    `yaml:"tokenTtlMinutes"`
}

// TokenTTL returns the lifetime of issued access tokens.
func (c AuthConfig) TokenTTL() time.Duration {
	if c.TokenTTLMinutes <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

type MessengerConfig struct {
	Kafka kafkaConfig `yaml:"kafka"`
}

type kafkaConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
	Topic   string `yaml:"topic"`
}

// Addr returns the kafka bootstrap address, empty when unconfigured.
func (c MessengerConfig) Addr() string {
	if c.Kafka.Address == "" {
		return ""
	}
	if c.Kafka.Port == 0 {
		return c.Kafka.Address
	}
	return fmt.Sprintf("%s:%d", c.Kafka.Address, c.Kafka.Port)
}

// Topic returns the rating-event topic name.
func (c MessengerConfig) Topic() string {
	if c.Kafka.Topic == "" {
		return "ratings"
	}
	return c.Kafka.Topic
}

type LimiterConfig struct {
	Enabled bool `yaml:"enabled"`
	Limit   int  `yaml:"limit"`
	Burst   int  `yaml:"burst"`
}

type TracingConfig struct {
	OTLPEndpoint string `yaml:"otlpEndpoint"`
}
