package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Port    string `yaml:"port"`
	LogMode string `yaml:"logMode"`

	CertificateServiceURL  string `yaml:"certificateServiceUrl"`
	AppreciationServiceURL string `yaml:"appreciationServiceUrl"`
	RequestTimeoutSeconds  int    `yaml:"requestTimeoutSeconds"` // 0 leaves failure signaling to the transport

	WorkspaceIdleMinutes     int    `yaml:"workspaceIdleMinutes"`
	WorkspaceJanitorSchedule string `yaml:"workspaceJanitorSchedule"`
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// Default returns the configuration used when neither a config file nor the environment says otherwise
func Default() *Config {
	return &Config{
		Port:                     "3000",
		LogMode:                  "development",
		CertificateServiceURL:    "http://localhost:8000",
		AppreciationServiceURL:   "http://localhost:8001",
		RequestTimeoutSeconds:    0,
		WorkspaceIdleMinutes:     60,
		WorkspaceJanitorSchedule: "@every 5m",
	}
}

// LoadConfig initializes AppConfig from .env, an optional YAML file (CONFIG_FILE) and environment variables
func LoadConfig() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg, err := Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// Load builds a Config: defaults, then the YAML file at path (if any), then environment variables
func Load(path string) (*Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogMode = getEnv("LOG_MODE", cfg.LogMode)
	cfg.CertificateServiceURL = getEnv("CERTIFICATE_SERVICE_URL", cfg.CertificateServiceURL)
	cfg.AppreciationServiceURL = getEnv("APPRECIATION_SERVICE_URL", cfg.AppreciationServiceURL)
	cfg.RequestTimeoutSeconds = getEnvInt("REQUEST_TIMEOUT_SECONDS", cfg.RequestTimeoutSeconds)
	cfg.WorkspaceIdleMinutes = getEnvInt("WORKSPACE_IDLE_MINUTES", cfg.WorkspaceIdleMinutes)
	cfg.WorkspaceJanitorSchedule = getEnv("WORKSPACE_JANITOR_SCHEDULE", cfg.WorkspaceJanitorSchedule)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the clients and the janitor cannot work without
func (c *Config) Validate() error {
	if strings.TrimSpace(c.CertificateServiceURL) == "" {
		return fmt.Errorf("missing CERTIFICATE_SERVICE_URL")
	}
	if strings.TrimSpace(c.AppreciationServiceURL) == "" {
		return fmt.Errorf("missing APPRECIATION_SERVICE_URL")
	}
	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must not be negative, got %d", c.RequestTimeoutSeconds)
	}
	if c.WorkspaceIdleMinutes <= 0 {
		return fmt.Errorf("WORKSPACE_IDLE_MINUTES must be positive, got %d", c.WorkspaceIdleMinutes)
	}
	return nil
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c *Config) WorkspaceIdle() time.Duration {
	return time.Duration(c.WorkspaceIdleMinutes) * time.Minute
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
