package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Minio     MinioConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Quotation QuotationConfig
	Rent      RentConfig
}

type AppConfig struct {
	Name    string
	Env     string
	Port    int
	Version string
}

type DatabaseConfig struct {
	URL      string
	MaxConns int32
	MinConns int32
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type JWTConfig struct {
	Secret    string
	Issuer    string
	AccessTTL time.Duration
	// JWKSURL switches token verification to an external identity provider.
	JWKSURL string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

type HTTPConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

type SchedulerConfig struct {
	Enabled         bool
	FollowupCron    string
	ExpiryCron      string
	RentInvoiceCron string
}

// QuotationConfig drives numbering, validity and the follow-up cadence.
type QuotationConfig struct {
	NumberFormat    string
	Prefix          string
	ValidityDays    int
	ExpireAfterDays int
	FollowupDays    []int
}

type RentConfig struct {
	AutoGenerate    bool
	GenerationDay   int
	DueOffsetDays   int
	InvoicePrefix   string
	DefaultCurrency string
}

// Load reads configuration from an optional config file, then environment
// variables prefixed with BIZSUITE_ (e.g. BIZSUITE_DATABASE_URL).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/bizsuite")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("BIZSUITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Plain names used by container platforms
	_ = v.BindEnv("database.url", "BIZSUITE_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("app.port", "BIZSUITE_APP_PORT", "PORT")
	_ = v.BindEnv("jwt.secret", "BIZSUITE_JWT_SECRET", "JWT_SECRET")

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetInt("app.port"),
			Version: v.GetString("app.version"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("database.url"),
			MaxConns: v.GetInt32("database.max_conns"),
			MinConns: v.GetInt32("database.min_conns"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Minio: MinioConfig{
			Endpoint:  v.GetString("minio.endpoint"),
			AccessKey: v.GetString("minio.access_key"),
			SecretKey: v.GetString("minio.secret_key"),
			UseSSL:    v.GetBool("minio.use_ssl"),
			Bucket:    v.GetString("minio.bucket"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("jwt.secret"),
			Issuer:    v.GetString("jwt.issuer"),
			AccessTTL: v.GetDuration("jwt.access_ttl"),
			JWKSURL:   v.GetString("jwt.jwks_url"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			RateLimitRPS:   v.GetFloat64("http.rate_limit_rps"),
			RateLimitBurst: v.GetInt("http.rate_limit_burst"),
			CORSOrigins:    v.GetStringSlice("http.cors_origins"),
		},
		Scheduler: SchedulerConfig{
			Enabled:         v.GetBool("scheduler.enabled"),
			FollowupCron:    v.GetString("scheduler.followup_cron"),
			ExpiryCron:      v.GetString("scheduler.expiry_cron"),
			RentInvoiceCron: v.GetString("scheduler.rent_invoice_cron"),
		},
		Quotation: QuotationConfig{
			NumberFormat:    v.GetString("quotation.number_format"),
			Prefix:          v.GetString("quotation.prefix"),
			ValidityDays:    v.GetInt("quotation.validity_days"),
			ExpireAfterDays: v.GetInt("quotation.expire_after_days"),
			FollowupDays:    v.GetIntSlice("quotation.followup_days"),
		},
		Rent: RentConfig{
			AutoGenerate:    v.GetBool("rent.auto_generate"),
			GenerationDay:   v.GetInt("rent.generation_day"),
			DueOffsetDays:   v.GetInt("rent.due_offset_days"),
			InvoicePrefix:   v.GetString("rent.invoice_prefix"),
			DefaultCurrency: v.GetString("rent.default_currency"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "bizsuite")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key", "minioadmin")
	v.SetDefault("minio.secret_key", "minioadmin")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "bizsuite")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "bizsuite")
	v.SetDefault("jwt.access_ttl", 24*time.Hour)
	v.SetDefault("jwt.jwks_url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("http.rate_limit_rps", 20.0)
	v.SetDefault("http.rate_limit_burst", 40)
	v.SetDefault("http.cors_origins", []string{"*"})

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.followup_cron", "0 8 * * *")
	v.SetDefault("scheduler.expiry_cron", "30 0 * * *")
	v.SetDefault("scheduler.rent_invoice_cron", "0 1 * * *")

	v.SetDefault("quotation.number_format", "{prefix}-{year}-{sequence}-{resort_code}")
	v.SetDefault("quotation.prefix", "Q")
	v.SetDefault("quotation.validity_days", 14)
	v.SetDefault("quotation.expire_after_days", 30)
	v.SetDefault("quotation.followup_days", []int{7, 14, 21})

	v.SetDefault("rent.auto_generate", true)
	v.SetDefault("rent.generation_day", 1)
	v.SetDefault("rent.due_offset_days", 7)
	v.SetDefault("rent.invoice_prefix", "RINV")
	v.SetDefault("rent.default_currency", "USD")
}

// Validate checks the invariants the rest of the application relies on.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.App.Env == "production" && c.JWT.Secret == "" && c.JWT.JWKSURL == "" {
		return errors.New("jwt.secret is required in production")
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("app.port %d is out of range", c.App.Port)
	}
	if c.Rent.GenerationDay < 1 || c.Rent.GenerationDay > 28 {
		return fmt.Errorf("rent.generation_day must be between 1 and 28, got %d", c.Rent.GenerationDay)
	}
	for i := 1; i < len(c.Quotation.FollowupDays); i++ {
		if c.Quotation.FollowupDays[i] <= c.Quotation.FollowupDays[i-1] {
			return errors.New("quotation.followup_days must be strictly increasing")
		}
	}
	if c.Quotation.ValidityDays <= 0 {
		return errors.New("quotation.validity_days must be positive")
	}
	return nil
}

// IsProduction reports whether the app runs with production settings.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
