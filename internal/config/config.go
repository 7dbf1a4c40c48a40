package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flexprice/feeledger/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `mapstructure:"deployment" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging" validate:"required"`
	Postgres   PostgresConfig   `mapstructure:"postgres" validate:"required"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Billing    BillingConfig    `mapstructure:"billing" validate:"required"`
	Pricing    PricingConfig    `mapstructure:"pricing" validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `mapstructure:"mode" validate:"required"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `mapstructure:"level" validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// BillingConfig tunes the renewal batch and the payment allocation path
type BillingConfig struct {
	InvoiceDueDays       int    `mapstructure:"invoice_due_days" validate:"required,min=1"`
	RenewalBatchSize     int    `mapstructure:"renewal_batch_size" validate:"required,min=1"`
	RenewalConcurrency   int    `mapstructure:"renewal_concurrency" validate:"required,min=1"`
	RenewalSchedule      string `mapstructure:"renewal_schedule"`
	AllocationMaxRetries uint64 `mapstructure:"allocation_max_retries" validate:"required,min=1"`
	KIDLength            int    `mapstructure:"kid_length" validate:"required,min=4,max=24"`
}

// PricingConfig holds the platform subscription plans keyed by plan name.
// Amounts are decimal strings so no precision is lost while decoding.
type PricingConfig struct {
	Plans map[string]PlanConfig `mapstructure:"plans" validate:"required,min=1,dive"`
}

type PlanConfig struct {
	AnnualPrice string `mapstructure:"annual_price" validate:"required"`
	FixedFee    string `mapstructure:"fixed_fee" validate:"required"`
	PercentFee  string `mapstructure:"percent_fee" validate:"required"`
}

func NewConfig() (*Configuration, error) {
	// .env is optional and only used for local development
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/feeledger")

	v.SetEnvPrefix("FEELEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
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
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("billing.invoice_due_days", 14)
	v.SetDefault("billing.renewal_batch_size", 500)
	v.SetDefault("billing.renewal_concurrency", 4)
	v.SetDefault("billing.renewal_schedule", "0 2 1 1 *")
	v.SetDefault("billing.allocation_max_retries", 5)
	v.SetDefault("billing.kid_length", 10)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts, tests or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Cache:      CacheConfig{Enabled: true},
		Billing: BillingConfig{
			InvoiceDueDays:       14,
			RenewalBatchSize:     500,
			RenewalConcurrency:   4,
			RenewalSchedule:      "0 2 1 1 *",
			AllocationMaxRetries: 5,
			KIDLength:            10,
		},
		Pricing: PricingConfig{
			Plans: map[string]PlanConfig{
				"standard": {AnnualPrice: "990", FixedFee: "5", PercentFee: "0.025"},
			},
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
