package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// HTTP server
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`

	// Dataset source
	DataPath  string `mapstructure:"data_path" yaml:"data_path"`
	DataTable string `mapstructure:"data_table" yaml:"data_table"`

	// Source column names. Defaults follow the upstream price-intelligence
	// export; override when the file uses different headers.
	ColItemName string `mapstructure:"col_item_name" yaml:"col_item_name"`
	ColPrice    string `mapstructure:"col_price" yaml:"col_price"`
	ColLocation string `mapstructure:"col_location" yaml:"col_location"`
	ColUnit     string `mapstructure:"col_unit" yaml:"col_unit"`

	// Reasoning service. APIKey has no default: without it the server runs
	// with the assistant disabled rather than shipping a placeholder secret.
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Model   string `mapstructure:"model" yaml:"model"`

	// HTTP/Retry configuration for the outbound reasoning call
	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`
	RetryMaxDelayMs  int `mapstructure:"retry_max_delay_ms" yaml:"retry_max_delay_ms"`

	// MaxPromptRecords caps how many aggregated records are serialized into
	// each chat prompt. 0 sends the full dataset.
	MaxPromptRecords int `mapstructure:"max_prompt_records" yaml:"max_prompt_records"`
}

// Save writes the given configuration to path as YAML.
func Save(c *Global, path string) error {
	if path == "" {
		path = "pricelens.yaml"
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A local .env file, if present,
// is folded into the environment before viper reads it.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PRICELENS")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("listen_addr", "127.0.0.1:5000")
	v.SetDefault("data_path", "data/avg_price.csv")
	v.SetDefault("data_table", "prices")
	v.SetDefault("col_item_name", "subsubcategory")
	v.SetDefault("col_price", "avg_price")
	v.SetDefault("col_location", "location")
	v.SetDefault("col_unit", "unit_raw")
	// registered with an empty default so AutomaticEnv can fill it; the
	// value itself only ever comes from the environment or a config file
	v.SetDefault("api_key", "")
	v.SetDefault("base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("model", "google/gemini-2.5-flash")
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("retry_max_attempts", 3)
	v.SetDefault("retry_base_delay_ms", 500)
	v.SetDefault("retry_max_delay_ms", 4000)
	v.SetDefault("max_prompt_records", 0)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("pricelens")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
