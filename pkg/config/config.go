package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"matchin/internal/models"

	"github.com/joho/godotenv"
)

// Hard-coded webhook fallbacks used when RELAY_TEST_URL / RELAY_PRODUCTION_URL are unset.
const (
	DefaultTestWebhookURL       = "https://n8n.aicrafterslab.com/webhook-test/996e3677-02f2-495f-b496-943ebcec3b24"
	DefaultProductionWebhookURL = "https://n8n.aicrafterslab.com/webhook/996e3677-02f2-495f-b496-943ebcec3b24"
)

type Config struct {
	Server ServerConfig
	Relay  RelayConfig
	Logger LoggerConfig
}

type LoggerConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
	AllowOrigins string
}

// RelayConfig describes the downstream workflow webhooks.
type RelayConfig struct {
	Endpoints          map[models.Environment]string
	DefaultEnvironment models.Environment
	// ForwardTimeout is how long a POST waits before reporting timeout_but_processing.
	ForwardTimeout time.Duration
	// ClientTimeout caps every outbound call, including forwards nobody waits for anymore.
	ClientTimeout time.Duration
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables work the same way (Docker/K8s)
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "150"))
	bodyLimitMB, _ := strconv.Atoi(getEnv("SERVER_BODY_LIMIT_MB", "32"))
	forwardTimeout, _ := strconv.Atoi(getEnv("RELAY_FORWARD_TIMEOUT_SECONDS", "120"))
	clientTimeout, _ := strconv.Atoi(getEnv("RELAY_CLIENT_TIMEOUT_SECONDS", "600"))

	defaultEnv, err := models.ParseEnvironment(getEnv("RELAY_DEFAULT_ENVIRONMENT", string(models.EnvironmentTest)))
	if err != nil {
		return nil, fmt.Errorf("RELAY_DEFAULT_ENVIRONMENT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
			BodyLimit:    bodyLimitMB * 1024 * 1024,
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Relay: RelayConfig{
			Endpoints: map[models.Environment]string{
				models.EnvironmentTest:       getEnv("RELAY_TEST_URL", DefaultTestWebhookURL),
				models.EnvironmentProduction: getEnv("RELAY_PRODUCTION_URL", DefaultProductionWebhookURL),
			},
			DefaultEnvironment: defaultEnv,
			ForwardTimeout:     time.Duration(forwardTimeout) * time.Second,
			ClientTimeout:      time.Duration(clientTimeout) * time.Second,
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Relay.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects relay settings the server cannot run with.
func (c RelayConfig) Validate() error {
	if c.ForwardTimeout <= 0 {
		return fmt.Errorf("relay forward timeout must be positive, got %s", c.ForwardTimeout)
	}
	if c.ClientTimeout < c.ForwardTimeout {
		return fmt.Errorf("relay client timeout %s is shorter than forward timeout %s", c.ClientTimeout, c.ForwardTimeout)
	}
	if _, ok := c.Endpoints[c.DefaultEnvironment]; !ok {
		return fmt.Errorf("no webhook configured for default environment %q", c.DefaultEnvironment)
	}
	for env, url := range c.Endpoints {
		if url == "" {
			return fmt.Errorf("empty webhook URL for environment %q", env)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
