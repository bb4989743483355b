package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"foodcatalog/internal/domain/repositories"
)

// Validate проверяет корректность конфигурации и возвращает все найденные проблемы сразу
func (c *Config) Validate() error {
	var problems []string

	// Валидация порта
	if c.Port == "" {
		problems = append(problems, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			problems = append(problems, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			problems = append(problems, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	switch c.GinMode {
	case "debug", "release", "test":
	default:
		problems = append(problems, fmt.Sprintf("invalid gin mode: %q", c.GinMode))
	}

	if c.DatabasePath == "" {
		problems = append(problems, "database path is required")
	}

	// Валидация connection pooling
	if c.MaxOpenConns < 1 {
		problems = append(problems, "max open connections must be at least 1")
	}
	if c.MaxIdleConns < 1 {
		problems = append(problems, "max idle connections must be at least 1")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		problems = append(problems, "max idle connections cannot be greater than max open connections")
	}
	if c.ConnMaxLifetime < time.Second {
		problems = append(problems, "connection max lifetime must be at least 1 second")
	}

	// Пустая строка допустима: будет использован уровень по умолчанию
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log level: %q", c.LogLevel))
	}

	switch strings.ToLower(c.LogMode) {
	case "dev", "development", "prod", "production":
	default:
		problems = append(problems, fmt.Sprintf("invalid log mode: %q", c.LogMode))
	}

	problems = append(problems, c.Dedup.validate()...)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func (d DedupConfig) validate() []string {
	var problems []string

	if len(d.TextFields) == 0 {
		problems = append(problems, "at least one dedup text field is required")
	}
	known := make(map[string]bool, len(repositories.ProductTextFields))
	for _, f := range repositories.ProductTextFields {
		known[f] = true
	}
	seen := make(map[string]bool, len(d.TextFields))
	for _, f := range d.TextFields {
		if !known[f] {
			problems = append(problems, fmt.Sprintf("unknown dedup text field: %q", f))
		}
		if seen[f] {
			problems = append(problems, fmt.Sprintf("duplicate dedup text field: %q", f))
		}
		seen[f] = true
	}

	if d.PollInterval < time.Second {
		problems = append(problems, "dedup poll interval must be at least 1 second")
	}
	if d.Workers < 1 {
		problems = append(problems, "dedup workers must be at least 1")
	}
	if d.RetryAttempts < 1 {
		problems = append(problems, "dedup retry attempts must be at least 1")
	}
	if d.RetryDelay < 0 {
		problems = append(problems, "dedup retry delay cannot be negative")
	}
	if d.ReclusterPerMin < 1 {
		problems = append(problems, "recluster rate limit must be at least 1 per minute")
	}

	return problems
}

// LogLevelOrDefault уровень логирования для zap
func (c *Config) LogLevelOrDefault() string {
	if c.LogLevel == "" {
		return "info"
	}
	return strings.ToLower(c.LogLevel)
}
