// Package config handles application configuration from environment variables
// and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"air_bot/internal/provider/airparif"
	"air_bot/internal/provider/atmosud"
)

// Providers.
const (
	ProviderAirParif = "airparif"
	ProviderAtmoSud  = "atmosud"
)

// Environment variables.
const (
	EnvInstance       = "MASTODON_INSTANCE"
	EnvAccessToken    = "MASTODON_ACCESS_TOKEN"
	EnvAirParifAPIKey = "AIRPARIF_API_KEY"
	EnvLogLevel       = "LOG_LEVEL"
	EnvMediaDir       = "MEDIA_DIR"
	EnvMediaDelay     = "MEDIA_DELAY"
	EnvTelegramToken  = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
	EnvConfigFile     = "AIRBOT_CONFIG"
)

const defaultMediaDelay = 10 * time.Second

// MissingError lists required environment variables that are not set.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Keys, ", "))
}

// Config holds the application configuration.
type Config struct {
	Provider         string         `yaml:"-"`
	MastodonInstance string         `yaml:"-"`
	MastodonToken    string         `yaml:"-"`
	AirParifAPIKey   string         `yaml:"-"`
	LogLevel         string         `yaml:"logLevel"`
	Media            MediaConfig    `yaml:"media"`
	AirParif         AirParifConfig `yaml:"airparif"`
	AtmoSud          AtmoSudConfig  `yaml:"atmosud"`
	Telegram         TelegramConfig `yaml:"-"`
}

// MediaConfig controls where media files are written and how long to wait
// after uploading them.
type MediaConfig struct {
	Dir   string        `yaml:"dir"`
	Delay time.Duration `yaml:"delay"`
}

// AirParifConfig overrides AirParif endpoints and map settings.
type AirParifConfig struct {
	APIBaseURL    string `yaml:"apiBaseUrl"`
	WMSBaseURL    string `yaml:"wmsBaseUrl"`
	LayerToday    string `yaml:"layerToday"`
	LayerTomorrow string `yaml:"layerTomorrow"`
	MapWidth      int    `yaml:"mapWidth"`
	MapHeight     int    `yaml:"mapHeight"`
}

// Settings converts the configuration to client settings.
func (c AirParifConfig) Settings() airparif.Settings {
	return airparif.Settings(c)
}

// AtmoSudConfig overrides the AtmoSud GIF location.
type AtmoSudConfig struct {
	GIFURL string `yaml:"gifUrl"`
}

// TelegramConfig is the destination of failure alerts.
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// Enabled reports whether failure alerts are configured.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != ""
}

// LoadDotEnv loads variables from the .env file at path if it exists.
// Variables already set in the environment are kept.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func defaults(provider string) *Config {
	ap := airparif.DefaultSettings()
	return &Config{
		Provider: provider,
		LogLevel: "info",
		Media: MediaConfig{
			Dir:   os.TempDir(),
			Delay: defaultMediaDelay,
		},
		AirParif: AirParifConfig(ap),
		AtmoSud:  AtmoSudConfig{GIFURL: atmosud.DefaultGIFURL},
	}
}

// Load reads the configuration of provider. Every missing required variable
// is reported at once, before any other validation.
func Load(provider string) (*Config, error) {
	required := []string{EnvInstance, EnvAccessToken}
	switch provider {
	case ProviderAirParif:
		required = append(required, EnvAirParifAPIKey)
	case ProviderAtmoSud:
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	var missing []string
	for _, key := range required {
		if strings.TrimSpace(os.Getenv(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingError{Keys: missing}
	}

	cfg := defaults(provider)
	cfg.MastodonInstance = strings.TrimSpace(os.Getenv(EnvInstance))
	cfg.MastodonToken = strings.TrimSpace(os.Getenv(EnvAccessToken))
	cfg.AirParifAPIKey = strings.TrimSpace(os.Getenv(EnvAirParifAPIKey))

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvMediaDir); v != "" {
		cfg.Media.Dir = v
	}
	if v := os.Getenv(EnvMediaDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvMediaDelay, v, err)
		}
		cfg.Media.Delay = d
	}
	if cfg.Media.Delay < 0 {
		return nil, fmt.Errorf("media delay must not be negative, got %s", cfg.Media.Delay)
	}

	if token := os.Getenv(EnvTelegramToken); token != "" {
		raw := os.Getenv(EnvTelegramChatID)
		if raw == "" {
			return nil, fmt.Errorf("%s is required when %s is set", EnvTelegramChatID, EnvTelegramToken)
		}
		chatID, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvTelegramChatID, raw, err)
		}
		cfg.Telegram = TelegramConfig{BotToken: token, ChatID: chatID}
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided config path
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
