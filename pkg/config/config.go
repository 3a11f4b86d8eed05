package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	PaymentProviderStripe = "stripe"
	PaymentProviderNoop   = "noop"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Metrics       MetricsConfig
	Cache         CacheConfig
	Tracing       TracingConfig
	Scheduling    SchedulingConfig
	Checkout      CheckoutConfig
	Payment       PaymentConfig
	Geocoder      GeocoderConfig
	Notifications NotificationsConfig
	AdminTables   AdminTablesConfig
}

type DatabaseConfig struct {
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
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the verification settings for bearer tokens minted by the identity provider.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

// CacheConfig governs Redis-backed caching of availability snapshots and geocoding lookups.
type CacheConfig struct {
	Enabled         bool
	AvailabilityTTL time.Duration
	GeocodeTTL      time.Duration
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	Enabled       bool
	ServiceName   string
	OTLPEndpoint  string
	SamplingRatio float64
}

// SchedulingConfig tunes availability resolution and instructor matching.
type SchedulingConfig struct {
	Timezone         string
	MaxScanDays      int
	DefaultRadiusKm  float64
	MaxRadiusKm      float64
	TimeSlotCatalog  []string
	MatchConcurrency int
	MaxCalendarDays  int
}

// Location resolves the configured timezone, falling back to UTC.
func (s SchedulingConfig) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CheckoutConfig bounds how long an unpaid checkout stays confirmable.
type CheckoutConfig struct {
	TTL time.Duration
}

// PaymentConfig selects and configures the payment gateway.
type PaymentConfig struct {
	Provider      string
	StripeKey     string
	SigningSecret string
	Currency      string
}

// GeocoderConfig points at a Nominatim-compatible reverse geocoding endpoint.
type GeocoderConfig struct {
	URL       string
	Timeout   time.Duration
	UserAgent string
}

// NotificationsConfig sizes the notification worker pool.
type NotificationsConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
	JobTimeout time.Duration
}

// AdminTablesConfig gates the raw table browser.
type AdminTablesConfig struct {
	Enabled bool
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
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
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
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	cfg.Cache = CacheConfig{
		Enabled:         v.GetBool("ENABLE_CACHE"),
		AvailabilityTTL: parseDuration(v.GetString("AVAILABILITY_CACHE_TTL"), 5*time.Minute),
		GeocodeTTL:      parseDuration(v.GetString("GEOCODE_CACHE_TTL"), 24*time.Hour),
	}

	cfg.Tracing = TracingConfig{
		Enabled:       v.GetBool("OTEL_ENABLED"),
		ServiceName:   v.GetString("OTEL_SERVICE_NAME"),
		OTLPEndpoint:  v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SamplingRatio: v.GetFloat64("OTEL_SAMPLING_RATIO"),
	}

	catalog := splitAndTrim(v.GetString("SCHEDULING_TIME_SLOT_CATALOG"))
	cfg.Scheduling = SchedulingConfig{
		Timezone:         v.GetString("SCHEDULING_TIMEZONE"),
		MaxScanDays:      positiveInt(v.GetInt("SCHEDULING_MAX_SCAN_DAYS"), 60),
		DefaultRadiusKm:  positiveFloat(v.GetFloat64("SCHEDULING_DEFAULT_RADIUS_KM"), 10),
		MaxRadiusKm:      positiveFloat(v.GetFloat64("SCHEDULING_MAX_RADIUS_KM"), 100),
		TimeSlotCatalog:  catalog,
		MatchConcurrency: positiveInt(v.GetInt("SCHEDULING_MATCH_CONCURRENCY"), 4),
		MaxCalendarDays:  positiveInt(v.GetInt("SCHEDULING_MAX_CALENDAR_DAYS"), 31),
	}

	cfg.Checkout = CheckoutConfig{TTL: parseDuration(v.GetString("CHECKOUT_TTL"), 30*time.Minute)}

	cfg.Payment = PaymentConfig{
		Provider:      strings.ToLower(v.GetString("PAYMENT_PROVIDER")),
		StripeKey:     v.GetString("STRIPE_SECRET_KEY"),
		SigningSecret: v.GetString("PAYMENT_SIGNING_SECRET"),
		Currency:      strings.ToLower(v.GetString("PAYMENT_CURRENCY")),
	}

	cfg.Geocoder = GeocoderConfig{
		URL:       v.GetString("GEOCODER_URL"),
		Timeout:   parseDuration(v.GetString("GEOCODER_TIMEOUT"), 5*time.Second),
		UserAgent: v.GetString("GEOCODER_USER_AGENT"),
	}

	cfg.Notifications = NotificationsConfig{
		Workers:    positiveInt(v.GetInt("NOTIFICATIONS_WORKERS"), 1),
		MaxRetries: positiveInt(v.GetInt("NOTIFICATIONS_RETRIES"), 3),
		RetryDelay: parseDuration(v.GetString("NOTIFICATIONS_RETRY_DELAY"), 2*time.Second),
		JobTimeout: parseDuration(v.GetString("NOTIFICATIONS_JOB_TIMEOUT"), 10*time.Second),
	}

	cfg.AdminTables = AdminTablesConfig{Enabled: v.GetBool("ENABLE_ADMIN_TABLES")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "driving_lessons")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_METRICS", true)
	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("AVAILABILITY_CACHE_TTL", "5m")
	v.SetDefault("GEOCODE_CACHE_TTL", "24h")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "driving-lesson-api")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_SAMPLING_RATIO", 1.0)

	v.SetDefault("SCHEDULING_TIMEZONE", "UTC")
	v.SetDefault("SCHEDULING_MAX_SCAN_DAYS", 60)
	v.SetDefault("SCHEDULING_DEFAULT_RADIUS_KM", 10)
	v.SetDefault("SCHEDULING_MAX_RADIUS_KM", 100)
	v.SetDefault("SCHEDULING_TIME_SLOT_CATALOG", "")
	v.SetDefault("SCHEDULING_MATCH_CONCURRENCY", 4)
	v.SetDefault("SCHEDULING_MAX_CALENDAR_DAYS", 31)

	v.SetDefault("CHECKOUT_TTL", "30m")

	v.SetDefault("PAYMENT_PROVIDER", PaymentProviderNoop)
	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("PAYMENT_SIGNING_SECRET", "dev_payment_secret")
	v.SetDefault("PAYMENT_CURRENCY", "inr")

	v.SetDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODER_TIMEOUT", "5s")
	v.SetDefault("GEOCODER_USER_AGENT", "driving-lesson-api/1.0")

	v.SetDefault("NOTIFICATIONS_WORKERS", 1)
	v.SetDefault("NOTIFICATIONS_RETRIES", 3)
	v.SetDefault("NOTIFICATIONS_RETRY_DELAY", "2s")
	v.SetDefault("NOTIFICATIONS_JOB_TIMEOUT", "10s")

	v.SetDefault("ENABLE_ADMIN_TABLES", false)
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

func positiveInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func positiveFloat(value, fallback float64) float64 {
	if value <= 0 {
		return fallback
	}
	return value
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
