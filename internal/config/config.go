package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vidinfra/taxengine/internal/types"
)

type Configuration struct {
	Server   ServerConfig   `validate:"required"`
	Logging  LoggingConfig  `validate:"required"`
	Rounding RoundingConfig `validate:"required"`
	Currency CurrencyConfig
	Provider ProviderConfig
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level string
}

// RoundingConfig carries the company-level defaults a tax definition
// may override per tax.
type RoundingConfig struct {
	DefaultMethod types.RoundingMethod `mapstructure:"default_method" validate:"required"`
	Mode          types.RoundingMode   `mapstructure:"mode" validate:"required"`
}

// CurrencyConfig allows overriding or extending the built-in
// currency precision table.
type CurrencyConfig struct {
	PrecisionOverrides map[string]int32 `mapstructure:"precision_overrides"`
}

// ProviderConfig configures the external tax provider adapter.
type ProviderConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

func NewConfig() (*Configuration, error) {
	// .env is optional; real deployments configure via environment
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/taxengine")

	v.SetEnvPrefix("TAXENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("rounding.default_method", types.RoundingMethodPerLine.String())
	v.SetDefault("rounding.mode", types.RoundingModeHalfUp.String())
	v.SetDefault("provider.timeout", 30*time.Second)
	v.SetDefault("provider.max_retries", 3)
}

func (c *Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	if err := c.Rounding.DefaultMethod.Validate(); err != nil {
		return err
	}
	if err := c.Rounding.Mode.Validate(); err != nil {
		return err
	}

	if c.Provider.Enabled && c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required when the external provider is enabled")
	}

	return nil
}

// GetDefaultConfig returns a configuration suitable for tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Server:  ServerConfig{Address: ":8080"},
		Logging: LoggingConfig{Level: "debug"},
		Rounding: RoundingConfig{
			DefaultMethod: types.RoundingMethodPerLine,
			Mode:          types.RoundingModeHalfUp,
		},
	}
}
