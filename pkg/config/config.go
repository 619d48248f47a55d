package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env     string
	Port    int
	HostURL string

	// CORSAllowedOrigins lists browser origins allowed to call the form endpoints.
	CORSAllowedOrigins []string

	Database DatabaseConfig
	Redis    RedisConfig
	LINE     LINEConfig
	Token    TokenConfig
	Holiday  HolidayConfig
	Profile  ProfileConfig
	Webhook  WebhookConfig
	Log      LogConfig
}

type DatabaseConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// LINEConfig carries the Messaging API channel credentials.
type LINEConfig struct {
	ChannelSecret      string
	ChannelAccessToken string
}

// TokenConfig configures signed single-use auth tokens.
type TokenConfig struct {
	Secret          string
	Issuer          string
	CleanupInterval time.Duration
}

// HolidayConfig configures the holiday registration form.
type HolidayConfig struct {
	TokenTTL time.Duration
	Location *time.Location
}

// ProfileConfig configures display name lookups.
type ProfileConfig struct {
	CacheTTL     time.Duration
	FallbackName string
}

// WebhookConfig sizes the webhook event worker pool.
type WebhookConfig struct {
	Workers   int
	QueueSize int
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.HostURL = strings.TrimRight(v.GetString("HOST_URL"), "/")
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	cfg.Database = DatabaseConfig{
		URL:          v.GetString("DATABASE_URL"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.LINE = LINEConfig{
		ChannelSecret:      v.GetString("LINE_CHANNEL_SECRET"),
		ChannelAccessToken: v.GetString("LINE_CHANNEL_ACCESS_TOKEN"),
	}

	cfg.Token = TokenConfig{
		Secret:          v.GetString("TOKEN_SECRET"),
		Issuer:          v.GetString("TOKEN_ISSUER"),
		CleanupInterval: parseDuration(v.GetString("TOKEN_CLEANUP_INTERVAL"), time.Hour),
	}

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", v.GetString("TIMEZONE"), err)
	}
	cfg.Holiday = HolidayConfig{
		TokenTTL: parseDuration(v.GetString("HOLIDAY_TOKEN_TTL"), 10*time.Minute),
		Location: loc,
	}

	cfg.Profile = ProfileConfig{
		CacheTTL:     parseDuration(v.GetString("PROFILE_CACHE_TTL"), time.Hour),
		FallbackName: v.GetString("PROFILE_FALLBACK_NAME"),
	}

	cfg.Webhook = WebhookConfig{
		Workers:   v.GetInt("WEBHOOK_WORKERS"),
		QueueSize: v.GetInt("WEBHOOK_QUEUE_SIZE"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

// Validate reports missing settings that production cannot run without.
func (c *Config) Validate() error {
	if c.Env != EnvProduction {
		return nil
	}
	var missing []string
	if c.LINE.ChannelSecret == "" {
		missing = append(missing, "LINE_CHANNEL_SECRET")
	}
	if c.LINE.ChannelAccessToken == "" {
		missing = append(missing, "LINE_CHANNEL_ACCESS_TOKEN")
	}
	if c.Token.Secret == "" || c.Token.Secret == defaultTokenSecret {
		missing = append(missing, "TOKEN_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

const defaultTokenSecret = "dev_token_secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("HOST_URL", "http://localhost:8080")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "linebot")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LINE_CHANNEL_SECRET", "")
	v.SetDefault("LINE_CHANNEL_ACCESS_TOKEN", "")

	v.SetDefault("TOKEN_SECRET", defaultTokenSecret)
	v.SetDefault("TOKEN_ISSUER", "sma-linebot")
	v.SetDefault("TOKEN_CLEANUP_INTERVAL", "1h")

	v.SetDefault("HOLIDAY_TOKEN_TTL", "10m")
	v.SetDefault("TIMEZONE", "Asia/Tokyo")

	v.SetDefault("PROFILE_CACHE_TTL", "1h")
	v.SetDefault("PROFILE_FALLBACK_NAME", "ゲスト")

	v.SetDefault("WEBHOOK_WORKERS", 4)
	v.SetDefault("WEBHOOK_QUEUE_SIZE", 64)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
