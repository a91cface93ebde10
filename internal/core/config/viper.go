package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// LoadConfig loads configuration using viper.
// CLI flags > environment > config file > defaults precedence.
// flags may be nil; flag names are the config keys ("server.port").
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout.String())
	v.SetDefault("server.max_definition_size", d.Server.MaxDefinitionSize)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("evaluation.parallel", d.Evaluation.Parallel)
	v.SetDefault("evaluation.max_parallelism", d.Evaluation.MaxParallelism)
	v.SetDefault("evaluation.locale", d.Evaluation.Locale)
	v.SetDefault("database.url", d.Database.URL)

	// Bind environment variables with AUTOMATA_ prefix
	v.SetEnvPrefix("AUTOMATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		for _, key := range v.AllKeys() {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", key, err)
				}
			}
		}
	}

	// Secrets must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:              v.GetString("server.host"),
			Port:              v.GetInt("server.port"),
			RequestTimeout:    v.GetDuration("server.request_timeout"),
			MaxDefinitionSize: v.GetInt("server.max_definition_size"),
		},
		Metrics: MetricsConfig{
			Addr: v.GetString("metrics.addr"),
		},
		Evaluation: EvaluationConfig{
			Parallel:       v.GetBool("evaluation.parallel"),
			MaxParallelism: v.GetInt("evaluation.max_parallelism"),
			Locale:         v.GetString("evaluation.locale"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database.url"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks port range, positive limits and a parseable locale.
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", cfg.Server.RequestTimeout)
	}
	if cfg.Server.MaxDefinitionSize <= 0 {
		return fmt.Errorf("max_definition_size must be positive, got %d", cfg.Server.MaxDefinitionSize)
	}
	if cfg.Evaluation.MaxParallelism < 0 {
		return fmt.Errorf("max_parallelism must not be negative, got %d", cfg.Evaluation.MaxParallelism)
	}
	if _, err := language.Parse(cfg.Evaluation.Locale); err != nil {
		return fmt.Errorf("locale %q is not a valid language tag: %w", cfg.Evaluation.Locale, err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url must be set")
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("hmac_secret") || v.IsSet("server.hmac_secret") {
		return fmt.Errorf("HMAC secrets not allowed in config files (use AUTOMATA_HMAC_SECRET environment variable)")
	}
	return nil
}
