package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Auth    AuthConfig
	Broker  BrokerConfig
	Booking BookingConfig
}

type AppConfig struct {
	Port           string
	Env            string
	LogLevel       string
	RequestTimeout time.Duration
	CORSOrigins    []string
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	TimeZone     string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	Issuer       string
	AccessExpiry time.Duration
}

// AuthConfig selects which identity provider verifies bearer tokens
type AuthConfig struct {
	Provider            string // "jwt" or "firebase"
	FirebaseCredentials string
}

type BrokerConfig struct {
	URL          string
	Exchange     string
	PaymentQueue string
}

type BookingConfig struct {
	SlotLockTTL      time.Duration
	RateCacheTTL     time.Duration
	MaxCreateRetries int
}

const (
	AuthProviderJWT      = "jwt"
	AuthProviderFirebase = "firebase"
)

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()
	setDefaults()

	// A missing .env is fine when everything comes from the environment
	if err := viper.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:           viper.GetString("APP_PORT"),
			Env:            viper.GetString("APP_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			RequestTimeout: viper.GetDuration("APP_REQUEST_TIMEOUT"),
			CORSOrigins:    splitList(viper.GetString("APP_CORS_ORIGINS")),
		},
		DB: DBConfig{
			Host:         viper.GetString("DB_HOST"),
			Port:         viper.GetString("DB_PORT"),
			User:         viper.GetString("DB_USER"),
			Password:     viper.GetString("DB_PASSWORD"),
			Name:         viper.GetString("DB_NAME"),
			SSLMode:      viper.GetString("DB_SSLMODE"),
			TimeZone:     viper.GetString("DB_TIMEZONE"),
			MaxOpenConns: viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: viper.GetInt("DB_MAX_IDLE_CONNS"),
			AutoMigrate:  viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			Issuer:       viper.GetString("JWT_ISSUER"),
			AccessExpiry: viper.GetDuration("JWT_ACCESS_EXPIRY"),
		},
		Auth: AuthConfig{
			Provider:            viper.GetString("AUTH_PROVIDER"),
			FirebaseCredentials: viper.GetString("FIREBASE_CREDENTIALS_FILE"),
		},
		Broker: BrokerConfig{
			URL:          viper.GetString("RABBITMQ_URL"),
			Exchange:     viper.GetString("RABBITMQ_EXCHANGE"),
			PaymentQueue: viper.GetString("RABBITMQ_PAYMENT_QUEUE"),
		},
		Booking: BookingConfig{
			SlotLockTTL:      viper.GetDuration("BOOKING_SLOT_LOCK_TTL"),
			RateCacheTTL:     viper.GetDuration("BOOKING_RATE_CACHE_TTL"),
			MaxCreateRetries: viper.GetInt("BOOKING_MAX_CREATE_RETRIES"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_REQUEST_TIMEOUT", "15s")
	viper.SetDefault("APP_CORS_ORIGINS", "*")

	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 100)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 10)
	viper.SetDefault("DB_AUTO_MIGRATE", true)

	viper.SetDefault("REDIS_PORT", "6379")

	viper.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	viper.SetDefault("AUTH_PROVIDER", AuthProviderJWT)

	viper.SetDefault("RABBITMQ_EXCHANGE", "bookings")
	viper.SetDefault("RABBITMQ_PAYMENT_QUEUE", "booking-service.payments")

	viper.SetDefault("BOOKING_SLOT_LOCK_TTL", "5s")
	viper.SetDefault("BOOKING_RATE_CACHE_TTL", "10m")
	viper.SetDefault("BOOKING_MAX_CREATE_RETRIES", 3)
}

func (c *Config) validate() error {
	if c.DB.Host == "" || c.DB.User == "" || c.DB.Name == "" {
		return errors.New("invalid DB config: DB_HOST, DB_USER and DB_NAME must be set")
	}
	switch c.Auth.Provider {
	case AuthProviderJWT:
		if c.JWT.Secret == "" {
			return errors.New("JWT_SECRET is required when AUTH_PROVIDER=jwt")
		}
	case AuthProviderFirebase:
		if c.Auth.FirebaseCredentials == "" {
			return errors.New("FIREBASE_CREDENTIALS_FILE is required when AUTH_PROVIDER=firebase")
		}
	default:
		return errors.New("AUTH_PROVIDER must be jwt or firebase")
	}
	if c.Booking.MaxCreateRetries < 1 {
		c.Booking.MaxCreateRetries = 1
	}
	return nil
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
