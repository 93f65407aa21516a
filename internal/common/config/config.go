package config

import "fmt"

type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Services      ServicesConfig          `mapstructure:"services"`
	Resilience    ResilienceConfig        `mapstructure:"resilience"`
	Underwriting  UnderwritingConfig      `mapstructure:"underwriting"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Locking       LockingConfig           `mapstructure:"locking"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	Search        SearchConfig            `mapstructure:"search"`
	Tracing       TracingConfig           `mapstructure:"tracing"`
	Logging       LoggingConfig           `mapstructure:"logging"`
	Server        ServerConfig            `mapstructure:"server"`
	RegistryPath  string                  `mapstructure:"registry_path"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress    string `mapstructure:"broker_address"`
	UsePlaintext     bool   `mapstructure:"use_plaintext"`
	MaxJobsActive    int    `mapstructure:"max_jobs_active"`
	Timeout          int    `mapstructure:"timeout"`           // milliseconds
	RequestTimeout   int    `mapstructure:"request_timeout"`   // milliseconds
	RetryBackoff     int    `mapstructure:"retry_backoff"`     // milliseconds
	ConnectRetries   int    `mapstructure:"connect_retries"`
	ConnectRetryWait int    `mapstructure:"connect_retry_wait"` // milliseconds
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
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address      string `mapstructure:"address"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// ServiceConfig describes one downstream domain service.
type ServiceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds, per attempt
}

type ServicesConfig struct {
	Customer ServiceConfig `mapstructure:"customer"`
	Property ServiceConfig `mapstructure:"property"`
	Loan     ServiceConfig `mapstructure:"loan"`
	Payment  ServiceConfig `mapstructure:"payment"`
}

// ResilienceConfig applies uniformly to every gateway.
type ResilienceConfig struct {
	RetryMaxAttempts      int     `mapstructure:"retry_max_attempts"`
	RetryInitialBackoff   int     `mapstructure:"retry_initial_backoff"` // milliseconds
	RetryMaxBackoff       int     `mapstructure:"retry_max_backoff"`     // milliseconds
	RetryMultiplier       float64 `mapstructure:"retry_multiplier"`
	BreakerEnabled        bool    `mapstructure:"breaker_enabled"`
	BreakerFailures       uint32  `mapstructure:"breaker_consecutive_failures"`
	BreakerOpenTimeout    int     `mapstructure:"breaker_open_timeout"` // milliseconds
	BreakerHalfOpenMaxReq uint32  `mapstructure:"breaker_half_open_max_requests"`
}

type UnderwritingConfig struct {
	ReferenceRate        float64 `mapstructure:"reference_rate"`
	MinCreditScore       int     `mapstructure:"min_credit_score"`
	MaxDTI               float64 `mapstructure:"max_dti"`
	MaxLTV               float64 `mapstructure:"max_ltv"`
	MaxConditionalIssues int     `mapstructure:"max_conditional_issues"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type LockingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	TTL     int    `mapstructure:"ttl"` // milliseconds
	Prefix  string `mapstructure:"prefix"`
}

type NotificationConfig struct {
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

type SearchConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}
