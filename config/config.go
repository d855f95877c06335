package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

// Config holds all configuration for the auto-responder.
// It is built once at startup and never mutated afterwards.
type Config struct {
	Telegram TelegramConfig
	LLM      LLMConfig
	Persona  PersonaConfig
	Limits   LimitsConfig
	Logging  LoggingConfig
	Service  ServiceConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
}

// TelegramConfig holds MTProto session configuration
type TelegramConfig struct {
	SessionsDir    string
	ConnectTimeout time.Duration
	ChannelsFile   string
}

// LLMConfig holds completion service configuration
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// PersonaConfig holds the initial reply personality
type PersonaConfig struct {
	Personality string
	Formality   string
}

// LimitsConfig holds cooldowns and backoff timings
type LimitsConfig struct {
	ChatCooldown     time.Duration
	PostCooldown     time.Duration
	JoinBatchSize    int
	JoinBatchPause   time.Duration
	JoinPause        time.Duration
	DefaultFloodWait time.Duration
	LivenessInterval time.Duration
	HistoryScan      int
	ContentMatchSkew time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string
}

// ServiceConfig holds the admin HTTP endpoint configuration.
// An empty Port disables the server.
type ServiceConfig struct {
	Name string
	Port string
}

// DatabaseConfig holds the optional postgres session store.
// An empty DSN keeps sessions on disk.
type DatabaseConfig struct {
	DSN  string
	Name string
}

// KafkaConfig holds the optional activity event sink.
// No brokers means events are dropped.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

var (
	personalities = []string{"default", "friendly", "witty", "expert", "provocative"}
	formalities   = []string{"casual", "neutral", "formal"}
)

// Result provides config parts for fx dependency injection
type Result struct {
	fx.Out

	Config         *Config
	TelegramConfig *TelegramConfig
	LLMConfig      *LLMConfig
	PersonaConfig  *PersonaConfig
	LimitsConfig   *LimitsConfig
	LoggingConfig  *LoggingConfig
	ServiceConfig  *ServiceConfig
	DatabaseConfig *DatabaseConfig
	KafkaConfig    *KafkaConfig
}

// Out loads configuration and returns Result for fx injection
func Out() (Result, error) {
	cfg, err := Load()
	if err != nil {
		return Result{}, err
	}

	return Result{
		Config:         cfg,
		TelegramConfig: &cfg.Telegram,
		LLMConfig:      &cfg.LLM,
		PersonaConfig:  &cfg.Persona,
		LimitsConfig:   &cfg.Limits,
		LoggingConfig:  &cfg.Logging,
		ServiceConfig:  &cfg.Service,
		DatabaseConfig: &cfg.Database,
		KafkaConfig:    &cfg.Kafka,
	}, nil
}

// SetDefaults registers default values on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging_level", "info")

	v.SetDefault("sessions_dir", "./sessions")
	v.SetDefault("telegram_connect_timeout", "3m")
	v.SetDefault("channels_file", "channels.json")

	v.SetDefault("deepseek_api_key", "")
	v.SetDefault("deepseek_base_url", "https://api.deepseek.com")
	v.SetDefault("deepseek_model", "deepseek-chat")
	v.SetDefault("ai_temperature", 0.7)
	v.SetDefault("ai_max_tokens", 100)
	v.SetDefault("ai_timeout", "60s")
	v.SetDefault("ai_personality", "default")
	v.SetDefault("ai_formality", "casual")

	v.SetDefault("chat_cooldown", "30s")
	v.SetDefault("post_cooldown", "600s")
	v.SetDefault("join_batch_size", 4)
	v.SetDefault("join_batch_pause", "300s")
	v.SetDefault("join_pause", "1s")
	v.SetDefault("default_flood_wait", "60s")
	v.SetDefault("liveness_interval", "60s")
	v.SetDefault("history_scan", 15)
	v.SetDefault("content_match_skew", "300s")

	v.SetDefault("service_name", "tgexp")
	v.SetDefault("service_port", "")
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_name", "tgexp")
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_topic", "autoresponder.activity")
}

// Load loads configuration from .env, environment and bound flags
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom builds a Config from the given viper instance
func LoadFrom(v *viper.Viper) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Telegram: TelegramConfig{
			SessionsDir:    v.GetString("sessions_dir"),
			ConnectTimeout: v.GetDuration("telegram_connect_timeout"),
			ChannelsFile:   v.GetString("channels_file"),
		},
		LLM: LLMConfig{
			APIKey:      v.GetString("deepseek_api_key"),
			BaseURL:     strings.TrimRight(v.GetString("deepseek_base_url"), "/"),
			Model:       v.GetString("deepseek_model"),
			Temperature: v.GetFloat64("ai_temperature"),
			MaxTokens:   v.GetInt("ai_max_tokens"),
			Timeout:     v.GetDuration("ai_timeout"),
		},
		Persona: PersonaConfig{
			Personality: strings.ToLower(v.GetString("ai_personality")),
			Formality:   strings.ToLower(v.GetString("ai_formality")),
		},
		Limits: LimitsConfig{
			ChatCooldown:     v.GetDuration("chat_cooldown"),
			PostCooldown:     v.GetDuration("post_cooldown"),
			JoinBatchSize:    v.GetInt("join_batch_size"),
			JoinBatchPause:   v.GetDuration("join_batch_pause"),
			JoinPause:        v.GetDuration("join_pause"),
			DefaultFloodWait: v.GetDuration("default_flood_wait"),
			LivenessInterval: v.GetDuration("liveness_interval"),
			HistoryScan:      v.GetInt("history_scan"),
			ContentMatchSkew: v.GetDuration("content_match_skew"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("logging_level"),
		},
		Service: ServiceConfig{
			Name: v.GetString("service_name"),
			Port: v.GetString("service_port"),
		},
		Database: DatabaseConfig{
			DSN:  v.GetString("database_dsn"),
			Name: v.GetString("database_name"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("kafka_brokers")),
			Topic:   v.GetString("kafka_topic"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Telegram.SessionsDir == "" {
		return fmt.Errorf("SESSIONS_DIR is required")
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("AI_TEMPERATURE must be within [0, 2], got %v", c.LLM.Temperature)
	}

	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("AI_MAX_TOKENS must be positive, got %d", c.LLM.MaxTokens)
	}

	if !contains(personalities, c.Persona.Personality) {
		return fmt.Errorf("AI_PERSONALITY must be one of %v, got %q", personalities, c.Persona.Personality)
	}

	if !contains(formalities, c.Persona.Formality) {
		return fmt.Errorf("AI_FORMALITY must be one of %v, got %q", formalities, c.Persona.Formality)
	}

	if c.Limits.JoinBatchSize <= 0 {
		return fmt.Errorf("JOIN_BATCH_SIZE must be positive")
	}

	if c.Limits.LivenessInterval <= 0 {
		return fmt.Errorf("LIVENESS_INTERVAL must be positive")
	}

	if c.Limits.HistoryScan <= 0 {
		return fmt.Errorf("HISTORY_SCAN must be positive")
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return nil
}

// Personalities returns the accepted personality names
func Personalities() []string {
	return append([]string(nil), personalities...)
}

// Formalities returns the accepted formality names
func Formalities() []string {
	return append([]string(nil), formalities...)
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

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
