package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds all configuration for the bot
type Config struct {
	Telegram  TelegramConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Media     MediaConfig
	Broadcast BroadcastConfig
	Logging   LoggingConfig
	Service   ServiceConfig
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken string
	AdminIDs []int64
	// WebhookURL switches the bot to webhook mode when set
	WebhookURL    string
	WebhookPath   string
	WebhookSecret string
	Workers       int
}

// WebhookEnabled reports whether updates are pushed by Telegram instead of polled
func (c TelegramConfig) WebhookEnabled() bool {
	return c.WebhookURL != ""
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig holds Redis configuration for conversation state
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	StateTTL time.Duration
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled        bool
	Brokers        []string
	GroupID        string
	EventsTopic    string
	BroadcastTopic string
}

// MediaConfig holds media job runner configuration
type MediaConfig struct {
	DownloadPath    string
	MaxJobs         int
	JobTimeout      time.Duration
	QueueTimeout    time.Duration
	YtDlpBinary     string
	CookiesFile     string
	RecognizerURL   string
	RecognizerToken string
}

// BroadcastConfig holds broadcast configuration
type BroadcastConfig struct {
	Delay time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds service configuration
type ServiceConfig struct {
	Name string
	Port string
}

// Result provides config parts for fx dependency injection using fx.Out pattern
type Result struct {
	fx.Out

	Config    *Config
	Telegram  *TelegramConfig
	Database  *DatabaseConfig
	Redis     *RedisConfig
	Kafka     *KafkaConfig
	Media     *MediaConfig
	Broadcast *BroadcastConfig
	Logging   *LoggingConfig
	Service   *ServiceConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:    cfg,
		Telegram:  &cfg.Telegram,
		Database:  &cfg.Database,
		Redis:     &cfg.Redis,
		Kafka:     &cfg.Kafka,
		Media:     &cfg.Media,
		Broadcast: &cfg.Broadcast,
		Logging:   &cfg.Logging,
		Service:   &cfg.Service,
	}, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	adminIDs, err := parseIDs(getEnv("ADMIN_IDS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_IDS: %w", err)
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken:      getEnv("TELEGRAM_BOT_TOKEN", getEnv("BOT_TOKEN", "")),
			AdminIDs:      adminIDs,
			WebhookURL:    strings.TrimRight(getEnv("WEBHOOK_URL", ""), "/"),
			WebhookPath:   getEnv("WEBHOOK_PATH", "/webhook"),
			WebhookSecret: getEnv("WEBHOOK_SECRET", ""),
			Workers:       getEnvInt("BOT_WORKERS", 8),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "bot_media"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", false),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			StateTTL: getEnvDuration("STATE_TTL", 0),
		},
		Kafka: KafkaConfig{
			Enabled:        getEnvBool("KAFKA_ENABLED", false),
			Brokers:        splitList(getEnv("KAFKA_BROKERS", "localhost:9093")),
			GroupID:        getEnv("KAFKA_GROUP_ID", "bot-media-group"),
			EventsTopic:    getEnv("KAFKA_EVENTS_TOPIC", "bot.events"),
			BroadcastTopic: getEnv("KAFKA_BROADCAST_TOPIC", "bot.broadcasts"),
		},
		Media: MediaConfig{
			DownloadPath:    getEnv("DOWNLOAD_PATH", "downloads"),
			MaxJobs:         getEnvInt("MEDIA_MAX_JOBS", 4),
			JobTimeout:      getEnvDuration("MEDIA_JOB_TIMEOUT", 5*time.Minute),
			QueueTimeout:    getEnvDuration("MEDIA_QUEUE_TIMEOUT", 30*time.Second),
			YtDlpBinary:     getEnv("YTDLP_BINARY", "yt-dlp"),
			CookiesFile:     getEnv("YTDLP_COOKIES", "cookies.txt"),
			RecognizerURL:   getEnv("RECOGNIZER_URL", "https://api.audd.io/"),
			RecognizerToken: getEnv("RECOGNIZER_TOKEN", ""),
		},
		Broadcast: BroadcastConfig{
			Delay: getEnvDuration("BROADCAST_DELAY", 50*time.Millisecond),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Service: ServiceConfig{
			Name: getEnv("SERVICE_NAME", "bot-media"),
			Port: getEnv("SERVICE_PORT", getEnv("PORT", "8080")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if c.Telegram.WebhookEnabled() && !strings.HasPrefix(c.Telegram.WebhookPath, "/") {
		return fmt.Errorf("WEBHOOK_PATH must start with /")
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}

	if c.Media.MaxJobs <= 0 {
		return fmt.Errorf("MEDIA_MAX_JOBS must be positive")
	}

	if c.Media.JobTimeout <= 0 {
		return fmt.Errorf("MEDIA_JOB_TIMEOUT must be positive")
	}

	return nil
}

// IsAdminID reports whether the user is a statically configured admin
func (c TelegramConfig) IsAdminID(userID int64) bool {
	return slices.Contains(c.AdminIDs, userID)
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseIDs(value string) ([]int64, error) {
	var ids []int64
	for _, item := range splitList(value) {
		id, err := strconv.ParseInt(item, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
