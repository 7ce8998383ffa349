// Package config provides configuration management and dependency injection
// for the payment engine. It handles loading configuration from files and
// environment variables, and sets up the DI container.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	LogLevel string `mapstructure:"log_level"`

	// DefaultChain is the home chain used when a request names no source
	// chain and does not ask for the balance fallback.
	DefaultChain string `mapstructure:"default_chain"`

	// ChainPriority fixes the walk order of the any-chain-with-balance
	// policy. Empty means the order chains are declared in.
	ChainPriority []string `mapstructure:"chain_priority"`

	// DefaultConfirmations applies to chains that set no explicit
	// confirmation depth.
	DefaultConfirmations uint64 `mapstructure:"default_confirmations"`

	Database  DatabaseConfig  `mapstructure:"database"`
	Chains    []ChainConfig   `mapstructure:"chains"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	Wallet    EndpointConfig  `mapstructure:"wallet"`
	Bridge    EndpointConfig  `mapstructure:"bridge"`
	Directory EndpointConfig  `mapstructure:"directory"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	DBName   string `mapstructure:"dbName"`
	SSLMode  string `mapstructure:"sslMode"`

	// Connection pool settings.
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// ChainConfig describes one chain the engine can read and pay on.
type ChainConfig struct {
	Name        string `mapstructure:"name"`
	ChainID     int64  `mapstructure:"chain_id"`
	RPCURL      string `mapstructure:"rpc_url"`
	NativeToken string `mapstructure:"native_token"`

	// Confirmations is the depth at which a payment on this chain counts
	// as final. Zero falls back to default_confirmations.
	Confirmations uint64 `mapstructure:"confirmations"`

	// Tokens maps token symbol to contract address, Decimals maps the
	// same symbols to their on-chain decimal count.
	Tokens   map[string]string `mapstructure:"tokens"`
	Decimals map[string]int32  `mapstructure:"decimals"`
}

// SchedulerConfig controls the due-payment discovery loop.
type SchedulerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Batch    int           `mapstructure:"batch"`
}

// QueueConfig controls the worker pool and its retry policy.
type QueueConfig struct {
	Concurrency   int           `mapstructure:"concurrency"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
	BackoffBase   time.Duration `mapstructure:"backoff_base"`
	BackoffCap    time.Duration `mapstructure:"backoff_cap"`
	LeaseDuration time.Duration `mapstructure:"lease_duration"`
}

// TrackerConfig controls confirmation polling.
type TrackerConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	MaxWait      time.Duration `mapstructure:"max_wait"`

	// BridgeTimeout bounds the wait for bridged funds to arrive on the
	// target chain before the attempt fails with a bridge timeout.
	BridgeTimeout time.Duration `mapstructure:"bridge_timeout"`

	// Milestones are the confirmation depths reported while a payment
	// waits for finality.
	Milestones []uint64 `mapstructure:"milestones"`
}

// EndpointConfig points at one external HTTP capability service.
type EndpointConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// NotifierConfig configures owner-facing event delivery.
type NotifierConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
}

// MetricsConfig configures the Prometheus scrape endpoint.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("log_level", "info")
	v.SetDefault("default_confirmations", 12)
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("scheduler.interval", "10s")
	v.SetDefault("scheduler.batch", 50)
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.poll_interval", "500ms")
	v.SetDefault("queue.max_attempts", 3)
	v.SetDefault("queue.backoff_base", "2s")
	v.SetDefault("queue.backoff_cap", "5m")
	v.SetDefault("queue.lease_duration", "2m")
	v.SetDefault("tracker.poll_interval", "5s")
	v.SetDefault("tracker.max_wait", "10m")
	v.SetDefault("tracker.bridge_timeout", "5m")
	v.SetDefault("tracker.milestones", []uint64{1, 3, 12})
	v.SetDefault("wallet.timeout", "30s")
	v.SetDefault("bridge.timeout", "30s")
	v.SetDefault("directory.timeout", "10s")
	v.SetDefault("metrics.listen_addr", ":9090")

	// Set config file.
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/crosspay")
	}

	// Enable environment variables.
	v.SetEnvPrefix("CROSSPAY")
	v.AutomaticEnv()

	// Read config file.
	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration.
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Chains) == 0 {
		return fmt.Errorf("at least one chain must be configured")
	}

	known := make(map[string]bool, len(c.Chains))
	for i := range c.Chains {
		chain := &c.Chains[i]
		if chain.Name == "" {
			return fmt.Errorf("chains[%d]: name is required", i)
		}
		if known[chain.Name] {
			return fmt.Errorf("chain %q is configured twice", chain.Name)
		}
		known[chain.Name] = true

		if chain.ChainID <= 0 {
			return fmt.Errorf("chain %q: chain_id must be positive", chain.Name)
		}
		if chain.RPCURL == "" {
			return fmt.Errorf("chain %q: rpc_url is required", chain.Name)
		}
		for symbol := range chain.Tokens {
			if _, ok := chain.Decimals[symbol]; !ok {
				return fmt.Errorf("chain %q: token %q has no decimals entry", chain.Name, symbol)
			}
		}
	}

	if c.DefaultChain == "" {
		c.DefaultChain = c.Chains[0].Name
	}
	if !known[c.DefaultChain] {
		return fmt.Errorf("default_chain %q is not a configured chain", c.DefaultChain)
	}
	for _, name := range c.ChainPriority {
		if !known[name] {
			return fmt.Errorf("chain_priority entry %q is not a configured chain", name)
		}
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Queue.MaxAttempts <= 0 {
		return fmt.Errorf("queue.max_attempts must be positive")
	}
	if c.Scheduler.Batch <= 0 {
		return fmt.Errorf("scheduler.batch must be positive")
	}
	if c.Wallet.Endpoint == "" {
		return fmt.Errorf("wallet.endpoint is required")
	}
	if c.Bridge.Endpoint == "" {
		return fmt.Errorf("bridge.endpoint is required")
	}
	if c.Directory.Endpoint == "" {
		return fmt.Errorf("directory.endpoint is required")
	}

	return nil
}

// ChainNames returns the configured chain names in declaration order.
func (c *Config) ChainNames() []string {
	names := make([]string, 0, len(c.Chains))
	for i := range c.Chains {
		names = append(names, c.Chains[i].Name)
	}
	return names
}

// Priority returns the balance fallback order, defaulting to declaration
// order when chain_priority is not set.
func (c *Config) Priority() []string {
	if len(c.ChainPriority) > 0 {
		return c.ChainPriority
	}
	return c.ChainNames()
}

// ConfirmationsByChain returns the explicit per-chain confirmation depths.
func (c *Config) ConfirmationsByChain() map[string]uint64 {
	depths := make(map[string]uint64, len(c.Chains))
	for i := range c.Chains {
		if c.Chains[i].Confirmations > 0 {
			depths[c.Chains[i].Name] = c.Chains[i].Confirmations
		}
	}
	return depths
}

// GetDatabaseDSN returns the database connection string.
func (c *DatabaseConfig) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
