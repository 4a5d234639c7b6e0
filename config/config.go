package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// LoadDatabaseConfig loads database configuration from environment variables
func LoadDatabaseConfig(prefix string) (*DatabaseConfig, error) {
	cfg := &DatabaseConfig{
		Host:         getEnv(prefix+"DB_HOST", "postgres"),
		User:         getEnv(prefix+"DB_USER", "postgres"),
		Password:     getEnv(prefix+"DB_PASSWORD", "postgres"),
		DBName:       getEnv(prefix+"DB_NAME", "interaction_service_db"),
		SSLMode:      getEnv(prefix+"DB_SSLMODE", "disable"),
		MaxOpenConns: getEnvAsInt(prefix+"DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: getEnvAsInt(prefix+"DB_MAX_IDLE_CONNS", 5),
		MaxLifetime:  getEnvAsDuration(prefix+"DB_MAX_LIFETIME", 5*time.Minute),
	}

	var err error
	cfg.Port, err = strconv.Atoi(getEnv(prefix+"DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid database port: %w", err)
	}

	if cfg.DBName == "" {
		return nil, fmt.Errorf("database name is required (set %sDB_NAME)", prefix)
	}

	return cfg, nil
}

// InteractionConfig holds the feed interaction tunables. They can be
// overridden by a YAML file named in INTERACTION_CONFIG.
type InteractionConfig struct {
	DoubleTapWindow time.Duration `yaml:"double_tap_window"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	FeedPageSize    int           `yaml:"feed_page_size"`
	CommentsPerPost int           `yaml:"comments_per_post"`
	CommentRate     float64       `yaml:"comment_rate"`
	CommentBurst    int           `yaml:"comment_burst"`
}

// ServiceConfig holds everything the server needs besides the database.
type ServiceConfig struct {
	GRPCPort      string
	MetricsPort   string
	JWTSecret     string
	NATSURL       string
	NATSClientID  string
	RedisURL      string
	RedisPassword string
	RedisDB       int
	LogLevel      string
	Interaction   InteractionConfig
}

// LoadServiceConfig reads the service configuration from the environment and
// applies the optional YAML overlay.
func LoadServiceConfig() (*ServiceConfig, error) {
	cfg := &ServiceConfig{
		GRPCPort:      getEnv("GRPC_PORT", "50060"),
		MetricsPort:   getEnv("METRICS_PORT", "9100"),
		JWTSecret:     getEnv("JWT_SECRET", "your-secret-key"),
		NATSURL:       getEnv("NATS_URL", "nats://nats:4222"),
		NATSClientID:  getEnv("NATS_CLIENT_ID", "interaction-service"),
		RedisURL:      getEnv("REDIS_URL", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Interaction: InteractionConfig{
			DoubleTapWindow: getEnvAsDuration("DOUBLE_TAP_WINDOW", 300*time.Millisecond),
			SessionTTL:      getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			SweepInterval:   getEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Minute),
			FeedPageSize:    getEnvAsInt("FEED_PAGE_SIZE", 20),
			CommentsPerPost: getEnvAsInt("COMMENTS_PER_POST", 3),
			CommentRate:     getEnvAsFloat("COMMENT_RATE", 1),
			CommentBurst:    getEnvAsInt("COMMENT_BURST", 5),
		},
	}

	if path := os.Getenv("INTERACTION_CONFIG"); path != "" {
		if err := cfg.Interaction.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Interaction.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile overlays the non-zero values of a YAML file onto c.
func (c *InteractionConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read interaction config: %w", err)
	}

	var file InteractionConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse interaction config %s: %w", path, err)
	}

	if file.DoubleTapWindow != 0 {
		c.DoubleTapWindow = file.DoubleTapWindow
	}
	if file.SessionTTL != 0 {
		c.SessionTTL = file.SessionTTL
	}
	if file.SweepInterval != 0 {
		c.SweepInterval = file.SweepInterval
	}
	if file.FeedPageSize != 0 {
		c.FeedPageSize = file.FeedPageSize
	}
	if file.CommentsPerPost != 0 {
		c.CommentsPerPost = file.CommentsPerPost
	}
	if file.CommentRate != 0 {
		c.CommentRate = file.CommentRate
	}
	if file.CommentBurst != 0 {
		c.CommentBurst = file.CommentBurst
	}

	return nil
}

func (c *InteractionConfig) Validate() error {
	if c.DoubleTapWindow < time.Millisecond {
		return fmt.Errorf("double tap window must be at least 1ms, got %s", c.DoubleTapWindow)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL)
	}
	if c.FeedPageSize <= 0 || c.FeedPageSize > 100 {
		return fmt.Errorf("feed page size must be in 1..100, got %d", c.FeedPageSize)
	}
	if c.CommentsPerPost < 0 {
		return fmt.Errorf("comments per post must not be negative, got %d", c.CommentsPerPost)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
