package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL    string `env:"DATABASE_URL"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"file://migrations"`
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr        string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass        string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	IncidentCacheTTL time.Duration `env:"INCIDENT_CACHE_TTL" envDefault:"5m"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Kafka Config
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"incident-events"`

	// Similarity oracle
	OracleURL         string        `env:"ORACLE_URL"`
	OracleAPIKey      string        `env:"ORACLE_API_KEY"`
	OracleTimeout     time.Duration `env:"ORACLE_TIMEOUT" envDefault:"4s"`
	OracleMinInterval time.Duration `env:"ORACLE_MIN_INTERVAL" envDefault:"200ms"`

	// Окна сопоставления
	MergeRadiusMeters     float64       `env:"MERGE_RADIUS_METERS" envDefault:"100"`
	MergeWindow           time.Duration `env:"MERGE_WINDOW" envDefault:"30m"`
	DuplicateRadiusMeters float64       `env:"DUPLICATE_RADIUS_METERS" envDefault:"500"`
	DuplicateWindow       time.Duration `env:"DUPLICATE_WINDOW" envDefault:"2h"`
	MergePolicy           string        `env:"MERGE_POLICY" envDefault:"first"`

	// Очередь
	QueueDefaultLimit int `env:"QUEUE_DEFAULT_LIMIT" envDefault:"50"`
	QueueMaxLimit     int `env:"QUEUE_MAX_LIMIT" envDefault:"200"`
	QueueScanLimit    int `env:"QUEUE_SCAN_LIMIT" envDefault:"1000"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", "file://migrations"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		IncidentCacheTTL:  getEnvAsDuration("INCIDENT_CACHE_TTL", 5*time.Minute),
		WebhookURL:        os.Getenv("WEBHOOK_URL"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:    getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries: getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:  getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		KafkaBrokers:      getEnvAsList("KAFKA_BROKERS"),
		KafkaTopic:        getEnv("KAFKA_TOPIC", "incident-events"),
		OracleURL:         os.Getenv("ORACLE_URL"),
		OracleAPIKey:      os.Getenv("ORACLE_API_KEY"),
		OracleTimeout:     getEnvAsDuration("ORACLE_TIMEOUT", 4*time.Second),
		OracleMinInterval: getEnvAsDuration("ORACLE_MIN_INTERVAL", 200*time.Millisecond),

		MergeRadiusMeters:     getEnvAsFloat("MERGE_RADIUS_METERS", 100),
		MergeWindow:           getEnvAsDuration("MERGE_WINDOW", 30*time.Minute),
		DuplicateRadiusMeters: getEnvAsFloat("DUPLICATE_RADIUS_METERS", 500),
		DuplicateWindow:       getEnvAsDuration("DUPLICATE_WINDOW", 2*time.Hour),
		MergePolicy:           getEnv("MERGE_POLICY", "first"),

		QueueDefaultLimit: getEnvAsInt("QUEUE_DEFAULT_LIMIT", 50),
		QueueMaxLimit:     getEnvAsInt("QUEUE_MAX_LIMIT", 200),
		QueueScanLimit:    getEnvAsInt("QUEUE_SCAN_LIMIT", 1000),

		// Загрузка API ключей
		APIKeys: getEnvAsList("API_KEYS"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность окон сопоставления и лимитов очереди
func (c *Config) Validate() error {
	if c.MergeRadiusMeters <= 0 || c.DuplicateRadiusMeters <= 0 {
		return fmt.Errorf("merge and duplicate radii must be positive")
	}
	if c.MergeWindow <= 0 || c.DuplicateWindow <= 0 {
		return fmt.Errorf("merge and duplicate windows must be positive")
	}
	if c.MergeRadiusMeters > c.DuplicateRadiusMeters || c.MergeWindow > c.DuplicateWindow {
		return fmt.Errorf("merge window must lie inside the duplicate window")
	}
	if c.MergePolicy != "first" && c.MergePolicy != "nearest" {
		return fmt.Errorf("MERGE_POLICY must be 'first' or 'nearest', got %q", c.MergePolicy)
	}
	if c.OracleTimeout <= 0 {
		return fmt.Errorf("ORACLE_TIMEOUT must be positive")
	}
	if c.QueueDefaultLimit < 1 || c.QueueMaxLimit < c.QueueDefaultLimit {
		return fmt.Errorf("queue limits must satisfy 1 <= QUEUE_DEFAULT_LIMIT <= QUEUE_MAX_LIMIT")
	}
	return nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsList разбирает список значений через запятую, пустые элементы отбрасываются
func getEnvAsList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var values []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			values = append(values, item)
		}
	}
	return values
}
