// internal/common/config/config.go
package config

import (
	"fmt"
	"time"

	"phalanx-matcher/internal/matching"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Server        ServerConfig            `mapstructure:"server"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Matching      MatchingConfig          `mapstructure:"matching"`
	Embeddings    EmbeddingsConfig        `mapstructure:"embeddings"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Observability ObservabilityConfig     `mapstructure:"observability"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig is the HTTP listener for the match API, health and metrics.
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Addresses   []string `mapstructure:"addresses"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	FunderIndex string   `mapstructure:"funder_index"`
	MaxRetries  int      `mapstructure:"max_retries"`
}

type RedisConfig struct {
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// WorkerConfig holds the settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"` // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"`
}

// --- Matching ---

const (
	CandidateSourcePgvector      = "pgvector"
	CandidateSourceElasticsearch = "elasticsearch"
)

// MatchingConfig holds scoring weights and request defaults.
type MatchingConfig struct {
	Weights        matching.Weights        `mapstructure:"weights"`
	RuleWeights    matching.RuleWeights    `mapstructure:"rule_weights"`
	TierThresholds matching.TierThresholds `mapstructure:"tier_thresholds"`

	DefaultLimit        int     `mapstructure:"default_limit"`
	MaxLimit            int     `mapstructure:"max_limit"`
	DefaultMinScore     float64 `mapstructure:"default_min_score"`
	RuleOnlyMinScore    float64 `mapstructure:"rule_only_min_score"`
	CandidateMultiplier int     `mapstructure:"candidate_multiplier"`
	CandidateSource     string  `mapstructure:"candidate_source"`
	Concurrency         int     `mapstructure:"concurrency"`
	FounderCacheTTL     int     `mapstructure:"founder_cache_ttl"` // seconds
}

// ScoringConfig converts the section into a validated matching.Config.
func (m MatchingConfig) ScoringConfig() (matching.Config, error) {
	cfg := matching.DefaultConfig().WithOverrides(m.Weights, m.RuleWeights, m.TierThresholds)
	if err := cfg.Validate(); err != nil {
		return matching.Config{}, err
	}
	return cfg, nil
}

func (m MatchingConfig) CacheTTL() time.Duration {
	return time.Duration(m.FounderCacheTTL) * time.Second
}

// EmbeddingsConfig points at an OpenAI compatible embeddings endpoint.
type EmbeddingsConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	Dimensions        int    `mapstructure:"dimensions"`
	Timeout           int    `mapstructure:"timeout"` // milliseconds
	MaxRetries        int    `mapstructure:"max_retries"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// NotificationConfig holds settings for the notify-top-matches worker.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	Events struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"events"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

type ObservabilityConfig struct {
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SampleRatio    float64 `mapstructure:"sample_ratio"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
