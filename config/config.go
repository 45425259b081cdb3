package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App               AppConfig
	HTTP              ServerConfig
	GRPC              ServerConfig
	MySQL             MySQLConfig
	Redis             RedisConfig
	Kafka             KafkaConfig
	Log               LogConfig
	InternalEndpoints InternalEndpointsConfig
	Session           SessionConfig
	FattureInCloud    FattureInCloudConfig
	Invoices          InvoicesConfig
	Jobs              JobsConfig
}

type AppConfig struct {
	ServiceName string
	APIKey      string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	TablePrefix     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

type LogConfig struct {
	Level string
}

type InternalEndpointsConfig struct {
	AuthGRPCAddr string
}

type SessionConfig struct {
	Secret     string
	CookieName string
	LoginURL   string
}

type FattureInCloudConfig struct {
	APIUID        string
	APIKey        string
	DefaultWallet string
	BaseURL       string
	HTTPTimeout   time.Duration
}

type InvoicesConfig struct {
	CountriesCacheTTL time.Duration
}

type JobsConfig struct {
	CountriesWarmInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	apiUID := os.Getenv("FATTUREINCLOUD_API_UID")
	apiKey := os.Getenv("FATTUREINCLOUD_API_KEY")
	if apiUID == "" || apiKey == "" {
		return nil, errors.New("FATTUREINCLOUD_API_UID and FATTUREINCLOUD_API_KEY environment variables are required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "invoicing-service"),
			APIKey:      getEnv("APP_API_KEY", ""),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			TablePrefix:     getEnv("MYSQL_TABLE_PREFIX", "wp_"),
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: getListEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_PAYMENTS_TOPIC", "payments.status"),
			GroupID: getEnv("KAFKA_GROUP_ID", "invoicing-service"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		InternalEndpoints: InternalEndpointsConfig{
			AuthGRPCAddr: getEnv("AUTH_SERVICE_GRPC_ADDR", "localhost:9090"),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_JWT_SECRET", ""),
			CookieName: getEnv("SESSION_COOKIE_NAME", "member_session"),
			LoginURL:   getEnv("LOGIN_URL", "/login"),
		},
		FattureInCloud: FattureInCloudConfig{
			APIUID:        apiUID,
			APIKey:        apiKey,
			DefaultWallet: getEnv("FATTUREINCLOUD_STRIPE_WALLET", ""),
			BaseURL:       getEnv("FATTUREINCLOUD_BASE_URL", "https://api.fattureincloud.it/v1"),
			HTTPTimeout:   getSecondsEnv("FATTUREINCLOUD_HTTP_TIMEOUT_SECONDS", 30*time.Second),
		},
		Invoices: InvoicesConfig{
			CountriesCacheTTL: getMinutesEnv("INVOICES_COUNTRIES_CACHE_TTL_MINUTES", 48*time.Hour),
		},
		Jobs: JobsConfig{
			CountriesWarmInterval: getMinutesEnv("JOBS_COUNTRIES_WARM_INTERVAL_MINUTES", 12*time.Hour),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	items := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
