package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/crmai/internal/ai"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Storage drivers.
const (
	DriverFS     = "fs"
	DriverSQLite = "sqlite"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	AI      AIConfig          `yaml:"ai"`
	Auth    AuthConfig        `yaml:"auth"`
	Seed    SeedConfig        `yaml:"seed"`
	Portal  PortalConfig      `yaml:"portal"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.AI.Validate(); err != nil {
		return err
	}
	if err := c.Portal.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig selects where the CRM blobs live.
//
// With the "fs" driver every key is a JSON file under Path; with "sqlite"
// the keys are rows of Path/crmai.db. Watch only applies to "fs".
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
	Watch  bool   `yaml:"watch"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverFS, DriverSQLite)),
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLitePath returns the database file used by the sqlite driver.
func (c *StorageConfig) SQLitePath() string {
	return filepath.Join(c.Path, "crmai.db")
}

// AIConfig tunes the provider bindings. Credentials are not configured
// here: they are user settings stored with the CRM data.
type AIConfig struct {
	Timeout        time.Duration `yaml:"timeout"`
	OpenAIEndpoint string        `yaml:"openai_endpoint"`
	GeminiEndpoint string        `yaml:"gemini_endpoint"`
	GeminiModel    string        `yaml:"gemini_model"`
	Temperature    float64       `yaml:"temperature"`
	MaxTokens      int           `yaml:"max_tokens"`
}

// Validate validates the AI configuration.
func (c *AIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Min(time.Second)),
		validation.Field(&c.OpenAIEndpoint, is.URL),
		validation.Field(&c.GeminiEndpoint, is.URL),
		validation.Field(&c.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&c.MaxTokens, validation.Min(0), validation.Max(32768)),
	)
}

// ClientConfig converts c to the AI client configuration.
func (c *AIConfig) ClientConfig() ai.Config {
	return ai.Config{
		OpenAIEndpoint: c.OpenAIEndpoint,
		GeminiEndpoint: c.GeminiEndpoint,
		GeminiModel:    c.GeminiModel,
		Temperature:    c.Temperature,
		MaxTokens:      c.MaxTokens,
		Timeout:        c.Timeout,
	}
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
//
// Portal pages are always public.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// SeedConfig chooses the first-run dataset.
type SeedConfig struct {
	Demo bool `yaml:"demo"`
}

// PortalConfig holds the public origin share links point to.
type PortalConfig struct {
	BaseURL string `yaml:"base_url"`
}

// Validate validates the portal configuration.
func (c *PortalConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Storage: StorageConfig{
			Driver: DriverFS,
			Path:   filepath.Join(xdg.DataHome, "crmai"),
			Watch:  true,
		},
		AI: AIConfig{
			Timeout:     ai.DefaultTimeout,
			GeminiModel: ai.DefaultGeminiModel,
			Temperature: ai.DefaultTemperature,
			MaxTokens:   ai.DefaultMaxTokens,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Seed: SeedConfig{
			Demo: true,
		},
		Portal: PortalConfig{
			BaseURL: "http://localhost:8080",
		},
	}
}
