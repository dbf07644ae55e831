package config

import (
	"fmt"
	"os"
	"time"

	"github.com/MrPunder/qrstyle/internal/models"
	"gopkg.in/yaml.v2"
)

type LogConfig struct {
	Level      string `yaml:"level"`
	Path       string `yaml:"path"`
	ErrorPath  string `yaml:"errorpath"`
	MaxSize    int    `yaml:"maxsize"`
	MaxBackups int    `yaml:"maxbackups"`
	MaxAge     int    `yaml:"maxage"`
	Compress   bool   `yaml:"compress"`
}

type ServerConfig struct {
	RunAddress string `yaml:"runaddress"`
}

type AuthConfig struct {
	// Ключ подписи токенов сессий
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	CookieSecure  bool          `yaml:"cookie_secure"`
	// Необязательный токен API; пустой отключает проверку
	APIToken string `yaml:"api_token"`
}

type SessionsConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

type RendererConfig struct {
	Encoder       string `yaml:"encoder"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	CacheSize     int    `yaml:"cache_size"`
	MaxImageBytes int64  `yaml:"max_image_bytes"`
}

type TelegramConfig struct {
	Token       string        `yaml:"token"`
	PollTimeout time.Duration `yaml:"poll_timeout"`
}

// Config представляет структуру конфигурации
type Config struct {
	Server   ServerConfig       `yaml:"server"`
	Log      LogConfig          `yaml:"logger"`
	Auth     AuthConfig         `yaml:"auth"`
	Sessions SessionsConfig     `yaml:"sessions"`
	Renderer RendererConfig     `yaml:"renderer"`
	Style    models.StyleConfig `yaml:"style"`
	Telegram TelegramConfig     `yaml:"telegram"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{RunAddress: "localhost:8080"},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
		Auth: AuthConfig{SessionTTL: 2 * time.Hour},
		Sessions: SessionsConfig{
			Size: 1024,
			TTL:  2 * time.Hour,
		},
		Renderer: RendererConfig{
			Encoder:       "barcode",
			Width:         500,
			Height:        500,
			CacheSize:     64,
			MaxImageBytes: 5 << 20,
		},
		Style:    models.DefaultStyleConfig(),
		Telegram: TelegramConfig{PollTimeout: 10 * time.Second},
	}
}

// LoadConfig загружает конфигурацию из файла YAML поверх значений по умолчанию
func LoadConfig(filepath string) (*Config, error) {
	config := Default()
	if filepath == "" {
		return config, nil
	}

	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	if err := config.Style.Validate(); err != nil {
		return nil, fmt.Errorf("invalid style defaults: %w", err)
	}
	if config.Sessions.Size <= 0 {
		return nil, fmt.Errorf("sessions.size must be positive, got %d", config.Sessions.Size)
	}

	return config, nil
}
