package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Marketplace MarketplaceConfig
	Ledger      LedgerConfig
	Sync        SyncConfig
	Journal     JournalConfig
	HTTP        HTTPConfig
	Log         LogConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// MarketplaceConfig holds marketplace seller API settings
type MarketplaceConfig struct {
	BaseURL        string
	Token          string
	TimeoutSeconds int
	PageLimit      int
}

// LedgerConfig holds accounting ledger API settings
type LedgerConfig struct {
	BaseURL         string
	Token           string
	OrganizationID  string
	AgentID         string
	SalesChannelID  string
	StoreID         string
	SalePriceTypeID string
	ShipmentStateID string
	// States maps each target document state name to its remote state id
	States         map[string]string
	TimeoutSeconds int
	MaxAttempts    int
}

// SyncConfig holds reconciliation loop settings
type SyncConfig struct {
	// WindowDays is the discovery lookback in days
	WindowDays int
	// NotBefore floors the discovery window at an absolute boundary
	NotBefore time.Time
	// PollInterval is the sleep between ticks
	PollInterval time.Duration
	// StatePath is where the idempotency snapshot is written
	StatePath string
}

// JournalConfig holds sync journal settings
type JournalConfig struct {
	Enabled bool
	Path    string
}

// HTTPConfig holds ops HTTP server settings
type HTTPConfig struct {
	Enabled      bool
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ORDERSYNC_ prefix (e.g., ORDERSYNC_LEDGER_TOKEN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/ordersync")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ORDERSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Marketplace: MarketplaceConfig{
			BaseURL:        v.GetString("marketplace.base_url"),
			Token:          v.GetString("marketplace.token"),
			TimeoutSeconds: v.GetInt("marketplace.timeout_seconds"),
			PageLimit:      v.GetInt("marketplace.page_limit"),
		},
		Ledger: LedgerConfig{
			BaseURL:         v.GetString("ledger.base_url"),
			Token:           v.GetString("ledger.token"),
			OrganizationID:  v.GetString("ledger.organization_id"),
			AgentID:         v.GetString("ledger.agent_id"),
			SalesChannelID:  v.GetString("ledger.sales_channel_id"),
			StoreID:         v.GetString("ledger.store_id"),
			SalePriceTypeID: v.GetString("ledger.sale_price_type_id"),
			ShipmentStateID: v.GetString("ledger.shipment_state_id"),
			States:          v.GetStringMapString("ledger.states"),
			TimeoutSeconds:  v.GetInt("ledger.timeout_seconds"),
			MaxAttempts:     v.GetInt("ledger.max_attempts"),
		},
		Sync: SyncConfig{
			WindowDays:   v.GetInt("sync.window_days"),
			PollInterval: v.GetDuration("sync.poll_interval"),
			StatePath:    v.GetString("sync.state_path"),
		},
		Journal: JournalConfig{
			Enabled: v.GetBool("journal.enabled"),
			Path:    v.GetString("journal.path"),
		},
		HTTP: HTTPConfig{
			Enabled:      v.GetBool("http.enabled"),
			Port:         v.GetString("http.port"),
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
	}

	if raw := v.GetString("sync.not_before"); raw != "" {
		notBefore, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("sync.not_before must be RFC 3339: %w", err)
		}
		cfg.Sync.NotBefore = notBefore
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "ordersync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Marketplace.TimeoutSeconds == 0 {
		cfg.Marketplace.TimeoutSeconds = 40
	}
	if cfg.Marketplace.PageLimit == 0 {
		cfg.Marketplace.PageLimit = 1000
	}
	if cfg.Ledger.TimeoutSeconds == 0 {
		cfg.Ledger.TimeoutSeconds = 40
	}
	if cfg.Ledger.MaxAttempts == 0 {
		cfg.Ledger.MaxAttempts = 6
	}
	if cfg.Sync.WindowDays == 0 {
		cfg.Sync.WindowDays = 30
	}
	if cfg.Sync.PollInterval == 0 {
		cfg.Sync.PollInterval = time.Minute
	}
	if cfg.Sync.StatePath == "" {
		cfg.Sync.StatePath = "state.json"
	}
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = "journal.db"
	}
	if cfg.HTTP.Port == "" {
		cfg.HTTP.Port = "8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Sync.WindowDays < 0 {
		return fmt.Errorf("sync.window_days cannot be negative")
	}
	if c.Sync.PollInterval < time.Second {
		return fmt.Errorf("sync.poll_interval must be at least 1s")
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Marketplace.Token == "" {
			return fmt.Errorf("marketplace.token is required in production")
		}
		if c.Ledger.Token == "" {
			return fmt.Errorf("ledger.token is required in production")
		}
	}

	return nil
}

// Lookback returns the discovery window length.
func (s *SyncConfig) Lookback() time.Duration {
	return time.Duration(s.WindowDays) * 24 * time.Hour
}
