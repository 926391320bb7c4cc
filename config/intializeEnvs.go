package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	godotenv "github.com/joho/godotenv"

	"github.com/mahirjain10/image-resolution-worker/internal/routing"
	"github.com/mahirjain10/image-resolution-worker/internal/transformation"
	"github.com/mahirjain10/image-resolution-worker/internal/types"
)

const (
	DefaultOutputPrefix    = "images/formatted"
	DefaultRabbitMqWorkers = 2
	DefaultDedupeTTL       = 24 * time.Hour
)

type Config struct {
	AppEnv   string
	LogLevel string

	AwsRegion  string
	S3Endpoint string

	IncomingPrefix  string
	OutputPrefix    string
	ResolutionsFile string
	Resolutions     []types.Resolution
	MaxParallel     int
	JPEGQuality     int

	RabbitMqURL     string
	RabbitMqQueue   string
	RabbitMqWorkers int

	RedisAddr     string
	RedisPassword string
	DedupeTTL     time.Duration
}

// InitializeEnvs loads the .env file matching APP_ENV (existing environment
// variables are overridden) and builds the config from the environment.
func InitializeEnvs() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working dir: %w", err)
	}
	log.Println("Working dir:", wd)

	switch os.Getenv("APP_ENV") {
	case "docker":
		if err := godotenv.Overload(".env.docker"); err == nil {
			log.Println("Loaded .env.docker")
		} else {
			log.Println(".env.docker not found, using existing environment")
		}
	case "dev", "":
		if err := godotenv.Overload(".env.dev"); err == nil {
			log.Println("Loaded .env.dev")
		} else if err := godotenv.Overload(".env"); err == nil {
			log.Println("Loaded .env")
		} else {
			log.Println("No .env.dev or .env found, using system environment variables")
		}
	default:
		fname := ".env." + os.Getenv("APP_ENV")
		if err := godotenv.Overload(fname); err == nil {
			log.Printf("Loaded %s", fname)
		} else if err := godotenv.Overload(".env"); err == nil {
			log.Println("Loaded .env")
		} else {
			log.Printf("No %s or .env found, using system environment variables", fname)
		}
	}

	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a getenv-style lookup.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		AppEnv:          getenv("APP_ENV"),
		LogLevel:        getenv("LOG_LEVEL"),
		AwsRegion:       getenv("AWS_REGION"),
		S3Endpoint:      getenv("S3_ENDPOINT"),
		IncomingPrefix:  withDefault(getenv("INCOMING_PREFIX"), routing.DefaultIncomingPrefix),
		OutputPrefix:    strings.TrimSuffix(withDefault(getenv("OUTPUT_PREFIX"), DefaultOutputPrefix), "/"),
		ResolutionsFile: getenv("RESOLUTIONS_FILE"),
		RabbitMqURL:     getenv("RABBITMQ_URL"),
		RabbitMqQueue:   getenv("RABBITMQ_QUEUE"),
		RedisAddr:       getenv("REDIS_ADDR"),
		RedisPassword:   getenv("REDIS_PASSWORD"),
	}

	if cfg.AwsRegion == "" {
		return nil, fmt.Errorf("AWS_REGION is missing")
	}

	var err error
	if cfg.MaxParallel, err = intWithDefault(getenv, "MAX_PARALLEL", 0); err != nil {
		return nil, err
	}
	if cfg.JPEGQuality, err = intWithDefault(getenv, "JPEG_QUALITY", transformation.DefaultJPEGQuality); err != nil {
		return nil, err
	}
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		return nil, fmt.Errorf("JPEG_QUALITY must be between 1 and 100, got %d", cfg.JPEGQuality)
	}
	if cfg.RabbitMqWorkers, err = intWithDefault(getenv, "RABBITMQ_WORKERS", DefaultRabbitMqWorkers); err != nil {
		return nil, err
	}

	cfg.DedupeTTL = DefaultDedupeTTL
	if v := getenv("DEDUPE_TTL"); v != "" {
		if cfg.DedupeTTL, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("invalid DEDUPE_TTL %q: %w", v, err)
		}
	}

	if cfg.ResolutionsFile != "" {
		cfg.Resolutions, err = LoadResolutions(cfg.ResolutionsFile, cfg.OutputPrefix)
		if err != nil {
			return nil, err
		}
	} else {
		cfg.Resolutions = DefaultResolutions(cfg.OutputPrefix)
	}
	return cfg, nil
}

// RequireQueue checks the settings only the queue worker needs.
func (c *Config) RequireQueue() error {
	if c.RabbitMqURL == "" || c.RabbitMqQueue == "" {
		return fmt.Errorf("RABBITMQ_URL or RABBITMQ_QUEUE is missing")
	}
	if c.RabbitMqWorkers < 1 {
		return fmt.Errorf("RABBITMQ_WORKERS must be positive, got %d", c.RabbitMqWorkers)
	}
	return nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func intWithDefault(getenv func(string) string, name string, def int) (int, error) {
	v := getenv(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return n, nil
}
