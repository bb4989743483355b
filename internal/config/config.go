package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"foodcatalog/normalization"
)

// DefaultTextFields поля, из которых собирается текст для кластеризации
var DefaultTextFields = []string{
	"name", "name_search", "remarks", "synonyms",
	"brands", "brands_search", "bron", "categories",
}

// Config конфигурация сервиса каталога
type Config struct {
	// Сервер
	Port           string   `yaml:"port"`
	GinMode        string   `yaml:"gin_mode"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	// База данных
	DatabasePath    string        `yaml:"database_path"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`

	// Логирование
	LogLevel string `yaml:"log_level"`
	LogMode  string `yaml:"log_mode"`

	// Дедупликация
	Dedup DedupConfig `yaml:"dedup"`
}

// DedupConfig параметры проходов кластеризации и связывания
type DedupConfig struct {
	TextFields      []string      `yaml:"text_fields"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	Workers         int           `yaml:"workers"`
	RetryAttempts   int           `yaml:"retry_attempts"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	ReclusterPerMin int           `yaml:"recluster_per_min"`
}

// GetDefaults возвращает конфигурацию со значениями по умолчанию
func GetDefaults() *Config {
	return &Config{
		Port:            "9999",
		GinMode:         "release",
		AllowedOrigins:  []string{"*"},
		DatabasePath:    "catalog.db",
		MaxOpenConns:    10,
		MaxIdleConns:    3,
		ConnMaxLifetime: 5 * time.Minute,
		LogLevel:        "info",
		LogMode:         "prod",
		Dedup: DedupConfig{
			TextFields:      append([]string(nil), DefaultTextFields...),
			PollInterval:    30 * time.Second,
			Workers:         4,
			RetryAttempts:   normalization.DefaultRetryAttempts,
			RetryDelay:      normalization.DefaultRetryDelay,
			ReclusterPerMin: 6,
		},
	}
}

// LoadConfig загружает конфигурацию: значения по умолчанию, затем YAML файл
// (если path не пуст), затем переменные окружения
func LoadConfig(path string) (*Config, error) {
	cfg := GetDefaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("SERVER_PORT", c.Port)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)

	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", c.MaxOpenConns)
	c.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", c.MaxIdleConns)
	c.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", c.ConnMaxLifetime)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogMode = getEnv("LOG_MODE", c.LogMode)

	c.Dedup.TextFields = getEnvList("DEDUP_TEXT_FIELDS", c.Dedup.TextFields)
	c.Dedup.PollInterval = getEnvDuration("DEDUP_POLL_INTERVAL", c.Dedup.PollInterval)
	c.Dedup.Workers = getEnvInt("DEDUP_WORKERS", c.Dedup.Workers)
	c.Dedup.RetryAttempts = getEnvInt("DEDUP_RETRY_ATTEMPTS", c.Dedup.RetryAttempts)
	c.Dedup.RetryDelay = getEnvDuration("DEDUP_RETRY_DELAY", c.Dedup.RetryDelay)
	c.Dedup.ReclusterPerMin = getEnvInt("RECLUSTER_RATE_LIMIT", c.Dedup.ReclusterPerMin)
}

// RetryConfig параметры повторов записи в хранилище
func (d DedupConfig) RetryConfig() normalization.RetryConfig {
	cfg := normalization.DefaultRetryConfig()
	cfg.MaxAttempts = d.RetryAttempts
	cfg.InitialDelay = d.RetryDelay
	return cfg
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList читает список через запятую
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
