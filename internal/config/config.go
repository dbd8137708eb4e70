package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petasbytes/expense-agent/internal/expense"
)

// Backends accepted by AGT_DATA_BACKEND.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

type Config struct {
	// Agent
	ReferenceDate string `yaml:"reference_date"`
	StepBudget    int    `yaml:"step_budget"`
	ParallelTools bool   `yaml:"parallel_tools"`

	// Provider
	Model       string `yaml:"model"`
	MaxTokens   int    `yaml:"max_tokens"`
	TokenBudget int    `yaml:"token_budget"`

	// Records
	DataBackend string `yaml:"data_backend"`
	DataPath    string `yaml:"data_path"`
	StrictData  bool   `yaml:"strict_data"`

	// Ambient
	LogLevel    string `yaml:"log_level"`
	HTTPAddr    string `yaml:"http_addr"`
	ObserveJSON bool   `yaml:"observe_json"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ReferenceDate: "2025-12-30",
		StepBudget:    10,
		Model:         "claude-sonnet-4-5",
		MaxTokens:     1024,
		TokenBudget:   0,
		DataBackend:   BackendCSV,
		DataPath:      "data/expenses.csv",
		StrictData:    true,
		LogLevel:      "info",
		HTTPAddr:      ":3000",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// AGT_CONFIG_FILE (if any), then AGT_* environment variables. Environment wins.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("AGT_CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}
	cfg.overlayEnv()
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) overlayEnv() {
	c.ReferenceDate = getEnv("AGT_REFERENCE_DATE", c.ReferenceDate)
	c.StepBudget = getEnvInt("AGT_STEP_BUDGET", c.StepBudget)
	c.ParallelTools = getEnvBool("AGT_PARALLEL_TOOLS", c.ParallelTools)
	c.Model = getEnv("AGT_MODEL", c.Model)
	c.MaxTokens = getEnvInt("AGT_MAX_TOKENS", c.MaxTokens)
	c.TokenBudget = getEnvInt("AGT_TOKEN_BUDGET", c.TokenBudget)
	c.DataBackend = getEnv("AGT_DATA_BACKEND", c.DataBackend)
	c.DataPath = getEnv("AGT_DATA_PATH", c.DataPath)
	c.StrictData = getEnvBool("AGT_STRICT_DATA", c.StrictData)
	c.LogLevel = getEnv("AGT_LOG_LEVEL", c.LogLevel)
	c.HTTPAddr = getEnv("AGT_HTTP_ADDR", c.HTTPAddr)
	c.ObserveJSON = getEnvBool("AGT_OBSERVE_JSON", c.ObserveJSON)
}

// Reference returns the parsed reference date. Call Validate first.
func (c *Config) Reference() expense.Date {
	d, _ := expense.ParseDate(c.ReferenceDate)
	return d
}

// Validate validates the configuration and returns every problem found.
func (c *Config) Validate() error {
	var problems []string

	if _, err := expense.ParseDate(c.ReferenceDate); err != nil {
		problems = append(problems, fmt.Sprintf("invalid reference date '%s': %v", c.ReferenceDate, err))
	}
	if c.StepBudget < 1 {
		problems = append(problems, fmt.Sprintf("invalid step budget %d: must be at least 1", c.StepBudget))
	}
	if c.MaxTokens < 1 {
		problems = append(problems, fmt.Sprintf("invalid max tokens %d: must be at least 1", c.MaxTokens))
	}
	if c.TokenBudget < 0 {
		problems = append(problems, fmt.Sprintf("invalid token budget %d: must be 0 (disabled) or positive", c.TokenBudget))
	}
	if strings.TrimSpace(c.Model) == "" {
		problems = append(problems, "model cannot be empty")
	}

	validBackends := []string{BackendCSV, BackendSQLite}
	if !slices.Contains(validBackends, c.DataBackend) {
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}
	if c.DataPath == "" {
		problems = append(problems, "data path cannot be empty")
	}
	if c.HTTPAddr == "" {
		problems = append(problems, "http address cannot be empty")
	}

	if len(problems) > 0 {
		return errors.New("configuration validation failed:\n- " + strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
