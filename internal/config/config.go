package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Game       GameConfig
	OpenRouter OpenRouterConfig
	Logging    LoggingConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Env  string `env:"ENV" envDefault:"development"` // "development" or "production"
}

// GameConfig holds game-related configuration.
type GameConfig struct {
	DefaultPlayerCount    int `env:"DEFAULT_PLAYER_COUNT" envDefault:"8"`
	DiscussionTurnSeconds int `env:"DISCUSSION_TURN_SECONDS" envDefault:"90"`
	NightDurationSeconds  int `env:"NIGHT_DURATION_SECONDS" envDefault:"120"`
	VotingDurationSeconds int `env:"VOTING_DURATION_SECONDS" envDefault:"90"`
}

// OpenRouterConfig holds the model gateway configuration.
type OpenRouterConfig struct {
	APIKey         string        `env:"OPENROUTER_API_KEY"`
	BaseURL        string        `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	DefaultModel   string        `env:"DEFAULT_MODEL" envDefault:"google/gemini-2.5-flash"`
	SummaryModel   string        `env:"SUMMARY_MODEL" envDefault:"google/gemini-2.5-flash"`
	MaxRetries     int           `env:"OPENROUTER_MAX_RETRIES" envDefault:"3"`
	RequestTimeout time.Duration `env:"OPENROUTER_REQUEST_TIMEOUT" envDefault:"60s"`
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Load reads configuration from the environment, with a .env file as a
// local convenience. A missing .env is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// GetAddr returns the server address in host:port format.
func (c *Config) GetAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// DiscussionTurnDeadline returns the per-turn discussion deadline.
func (c *Config) DiscussionTurnDeadline() time.Duration {
	return time.Duration(c.Game.DiscussionTurnSeconds) * time.Second
}

// NightDeadline returns the night phase deadline.
func (c *Config) NightDeadline() time.Duration {
	return time.Duration(c.Game.NightDurationSeconds) * time.Second
}

// VotingDeadline returns the voting phase deadline.
func (c *Config) VotingDeadline() time.Duration {
	return time.Duration(c.Game.VotingDurationSeconds) * time.Second
}
