package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "http" or "stdio"
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

type AuthConfig struct {
	Secret       string        `yaml:"secret"`
	Issuer       string        `yaml:"issuer"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	PasswordMode string        `yaml:"password_mode"` // "plaintext" or "bcrypt"
	StdioUser    string        `yaml:"stdio_user"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type CleanupConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type CatalogConfig struct {
	SeedOnStart bool `yaml:"seed_on_start"`
}

// MinSecretLength is the shortest token signing secret accepted in http mode.
const MinSecretLength = 32

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		DB: DBConfig{
			Path: "stepwise.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			Issuer:       "stepwise",
			TokenTTL:     7 * 24 * time.Hour,
			PasswordMode: "plaintext",
		},
		Kafka: KafkaConfig{
			Topic: "stepwise.lifecycle",
		},
		Cleanup: CleanupConfig{
			Enabled:  true,
			Schedule: "@daily",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables and validates it for serving.
func Load() (Config, error) {
	cfg, err := Read()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without serving validation, for tools that only need the database.
func Read() (Config, error) {
	cfg := Default()

	if path := os.Getenv("STEPWISE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q", c.Transport.Mode)
	}
	switch c.Auth.PasswordMode {
	case "plaintext", "bcrypt":
	default:
		return fmt.Errorf("invalid password mode %q", c.Auth.PasswordMode)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid token ttl %s", c.Auth.TokenTTL)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("kafka enabled without brokers or topic")
	}
	if c.Transport.Mode == "http" && len(c.Auth.Secret) < MinSecretLength {
		return fmt.Errorf("http transport requires auth.secret of at least %d characters", MinSecretLength)
	}
	if c.Transport.Mode == "stdio" && c.Auth.StdioUser == "" {
		return fmt.Errorf("stdio transport requires auth.stdio_user")
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString("STEPWISE_SERVER_HOST", &cfg.Server.Host)
	if err := setInt("STEPWISE_SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	setString("STEPWISE_TRANSPORT_MODE", &cfg.Transport.Mode)
	setString("STEPWISE_DB_PATH", &cfg.DB.Path)
	setString("STEPWISE_LOG_LEVEL", &cfg.Log.Level)
	setString("STEPWISE_LOG_PATH", &cfg.Log.Path)
	setString("STEPWISE_AUTH_SECRET", &cfg.Auth.Secret)
	setString("STEPWISE_AUTH_ISSUER", &cfg.Auth.Issuer)
	if err := setDuration("STEPWISE_AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL); err != nil {
		return err
	}
	setString("STEPWISE_AUTH_PASSWORD_MODE", &cfg.Auth.PasswordMode)
	setString("STEPWISE_AUTH_STDIO_USER", &cfg.Auth.StdioUser)
	if err := setBool("STEPWISE_KAFKA_ENABLED", &cfg.Kafka.Enabled); err != nil {
		return err
	}
	if brokers := os.Getenv("STEPWISE_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = splitList(brokers)
	}
	setString("STEPWISE_KAFKA_TOPIC", &cfg.Kafka.Topic)
	if err := setBool("STEPWISE_CLEANUP_ENABLED", &cfg.Cleanup.Enabled); err != nil {
		return err
	}
	setString("STEPWISE_CLEANUP_SCHEDULE", &cfg.Cleanup.Schedule)
	if err := setBool("STEPWISE_METRICS_ENABLED", &cfg.Metrics.Enabled); err != nil {
		return err
	}
	return setBool("STEPWISE_CATALOG_SEED_ON_START", &cfg.Catalog.SeedOnStart)
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
