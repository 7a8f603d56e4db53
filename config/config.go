package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

var (
	ErrInvalidPort        = errors.New("port must be between 1 and 65535")
	ErrInvalidWorkers     = errors.New("pipeline workers must be at least 1")
	ErrNoKafkaBrokers     = errors.New("kafka is enabled but no brokers are configured")
	ErrInvalidCompression = errors.New("unsupported kafka compression")
	ErrInvalidProtocol    = errors.New("unsupported tracing protocol")
)

type Config struct {
	AppName                       string `env:"APP_NAME" env-default:"lily"`
	Port                          int    `env:"PORT" env-default:"3000"`
	LogLevel                      string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool   `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int    `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int    `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int    `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	StartupMaxAttempts            int    `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Pipeline
	InputFile       string `env:"INPUT_FILE" env-default:"funeral_services_data.csv"`
	OutputDir       string `env:"OUTPUT_DIR" env-default:"."`
	ExportCSV       bool   `env:"EXPORT_CSV" env-default:"true"`
	ExportXLSX      bool   `env:"EXPORT_XLSX" env-default:"true"`
	ExportReport    bool   `env:"EXPORT_REPORT" env-default:"true"`
	SynonymsFile    string `env:"SYNONYMS_FILE" env-default:""`
	PipelineWorkers int    `env:"PIPELINE_WORKERS" env-default:"4"`

	// API
	DataFile string `env:"DATA_FILE" env-default:""`

	// PostgreSQL (cleaned listings)
	DatabaseDriver              string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                string        `env:"DB_HOST" env-default:""`
	DatabasePort                string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName            string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword            string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                string        `env:"DB_NAME" env-default:"lily"`
	DatabaseSSLMode             string        `env:"DB_SSL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns        int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`

	// Kafka Producer (pipeline events)
	KafkaEnabled         bool     `env:"KAFKA_ENABLED" env-default:"false"`
	KafkaBrokers         []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaTopic           string   `env:"KAFKA_TOPIC" env-default:"lily-events"`
	KafkaBatchSize       int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout    int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks    int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression     string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`
	KafkaPublishListings bool     `env:"KAFKA_PUBLISH_LISTINGS" env-default:"false"`

	// Redis (stats cache)
	RedisHost     string        `env:"REDIS_HOST" env-default:""`
	RedisPort     int           `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string        `env:"REDIS_PASSWORD" env-default:""`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	RedisTTL      time.Duration `env:"REDIS_TTL" env-default:"5m"`

	// Tracing
	TracingEnabled  bool   `env:"TRACING_ENABLED" env-default:"false"`
	TracingEndpoint string `env:"TRACING_ENDPOINT" env-default:"localhost:4317"`
	TracingProtocol string `env:"TRACING_PROTOCOL" env-default:"grpc"`
	TracingInsecure bool   `env:"TRACING_INSECURE" env-default:"true"`
}

// Load reads an optional .env file, then the environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if c.PipelineWorkers < 1 {
		return ErrInvalidWorkers
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 || strings.TrimSpace(c.KafkaBrokers[0]) == "" {
			return ErrNoKafkaBrokers
		}
		switch c.KafkaCompression {
		case "snappy", "gzip", "lz4", "zstd", "none":
		default:
			return fmt.Errorf("%w: %q", ErrInvalidCompression, c.KafkaCompression)
		}
	}
	if c.TracingEnabled {
		switch c.TracingProtocol {
		case "grpc", "http":
		default:
			return fmt.Errorf("%w: %q", ErrInvalidProtocol, c.TracingProtocol)
		}
	}
	return nil
}

func (c Config) DatabaseEnabled() bool {
	return c.DatabaseHost != ""
}

func (c Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}
