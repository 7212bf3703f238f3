package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Transport names accepted by TRANSPORT.
const (
	TransportKafka  = "kafka"
	TransportNATS   = "nats"
	TransportRedis  = "redis"
	TransportMemory = "memory"
)

type Config struct {
	HTTPPort   string `env:"HTTP_PORT" envDefault:"8080"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"orders"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	Transport string `env:"TRANSPORT" envDefault:"memory"`

	KafkaBrokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaTopic         string   `env:"KAFKA_TOPIC" envDefault:"orders.events"`
	KafkaConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"orders-notifications"`

	NATSURL     string `env:"NATS_URL" envDefault:"nats://localhost:4222"`
	NATSStream  string `env:"NATS_STREAM" envDefault:"ORDERS"`
	NATSSubject string `env:"NATS_SUBJECT" envDefault:"orders.events"`
	NATSDurable string `env:"NATS_DURABLE" envDefault:"orders-notifications"`

	RedisAddr          string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	RedisStream        string        `env:"REDIS_STREAM" envDefault:"orders.events"`
	RedisConsumerGroup string        `env:"REDIS_CONSUMER_GROUP" envDefault:"orders-notifications"`
	RedisClaimMinIdle  time.Duration `env:"REDIS_CLAIM_MIN_IDLE" envDefault:"1m"`

	MaxDeliveries    int           `env:"MAX_DELIVERIES" envDefault:"10"`
	ConsumerSessions int           `env:"CONSUMER_SESSIONS" envDefault:"1"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	StatsSchedule    string        `env:"STATS_SCHEDULE" envDefault:"@every 1m"`
}

// LoadConfig reads the optional dotenv files and then the environment.
// Variables already set in the environment win over the files.
func LoadConfig(dotenvFiles ...string) (Config, error) {
	for _, file := range dotenvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	if c.DBHost == "" || c.DBName == "" || c.DBUser == "" {
		errs = append(errs, errors.New("DB_HOST, DB_NAME and DB_USER are required"))
	}
	if c.MaxDeliveries < 1 {
		errs = append(errs, errors.New("MAX_DELIVERIES must be at least 1"))
	}
	if c.ConsumerSessions < 1 {
		errs = append(errs, errors.New("CONSUMER_SESSIONS must be at least 1"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	switch c.Transport {
	case TransportKafka:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" || c.KafkaConsumerGroup == "" {
			errs = append(errs, errors.New("KAFKA_BROKERS, KAFKA_TOPIC and KAFKA_CONSUMER_GROUP are required for kafka"))
		}
	case TransportNATS:
		if c.NATSURL == "" || c.NATSStream == "" || c.NATSSubject == "" || c.NATSDurable == "" {
			errs = append(errs, errors.New("NATS_URL, NATS_STREAM, NATS_SUBJECT and NATS_DURABLE are required for nats"))
		}
	case TransportRedis:
		if c.RedisAddr == "" || c.RedisStream == "" || c.RedisConsumerGroup == "" {
			errs = append(errs, errors.New("REDIS_ADDR, REDIS_STREAM and REDIS_CONSUMER_GROUP are required for redis"))
		}
	case TransportMemory:
	default:
		errs = append(errs, fmt.Errorf("TRANSPORT %q is not one of kafka, nats, redis, memory", c.Transport))
	}

	return errors.Join(errs...)
}

// DSN is the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q is invalid", c.LogLevel)
	}
	return level, nil
}
