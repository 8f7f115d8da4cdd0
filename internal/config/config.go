package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"sensor-bot/internal/models"
)

const (
	DefaultPath            = "config.yaml"
	DefaultAPIURL          = "https://api.telegram.org"
	DefaultPollTimeout     = 60
	DefaultRefreshInterval = 5
	DefaultCommandTimeout  = 2
	DefaultLogLevel        = "warning"
)

// Config mirrors the YAML config file.
type Config struct {
	Bot struct {
		APIURL            string  `yaml:"api_url"`
		Token             string  `yaml:"token"`
		ChatID            int64   `yaml:"chat_id"`
		AllowedUsers      []int64 `yaml:"allowed_users"`
		PollTimeout       int     `yaml:"poll_timeout"`
		MaxSendsPerSecond float64 `yaml:"max_sends_per_second"`
	} `yaml:"bot"`
	App struct {
		LogLevel           string `yaml:"log_level"`
		LogDir             string `yaml:"log_dir"`
		EnableAlerts       Flag   `yaml:"enable_alerts"`
		UseShell           Flag   `yaml:"use_shell"`
		SensorsRefreshTime int    `yaml:"sensors_refresh_time"`
		CommandTimeout     int    `yaml:"command_timeout"`
	} `yaml:"app"`
	API struct {
		Listen string `yaml:"listen"`
	} `yaml:"api"`
	Sensors  Sensors           `yaml:"sensors"`
	Commands map[string]string `yaml:"commands"`
}

// Load reads the YAML file at path, applies .env and environment overrides,
// validates the result and fills defaults.
func Load(path string) (*Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates config bytes, including environment overrides.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("SENSORBOT_BOT_TOKEN"); v != "" {
		c.Bot.Token = v
	}
	if v := os.Getenv("SENSORBOT_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("SENSORBOT_CHAT_ID: %w", err)
		}
		c.Bot.ChatID = id
	}
	if v := os.Getenv("SENSORBOT_API_URL"); v != "" {
		c.Bot.APIURL = v
	}
	if v := os.Getenv("SENSORBOT_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv("SENSORBOT_API_LISTEN"); v != "" {
		c.API.Listen = v
	}
	return nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	missing := []string{}
	if c.Bot.Token == "" {
		missing = append(missing, "bot.token")
	}
	if c.Bot.ChatID == 0 {
		missing = append(missing, "bot.chat_id")
	}
	if len(c.Sensors) == 0 {
		missing = append(missing, "sensors")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configurations: %v", missing)
	}

	if c.Bot.APIURL != "" {
		u, err := url.Parse(c.Bot.APIURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("bot.api_url %q is not a valid URL", c.Bot.APIURL)
		}
	}
	if c.Bot.PollTimeout < 0 {
		return fmt.Errorf("bot.poll_timeout must not be negative")
	}
	if c.Bot.MaxSendsPerSecond < 0 {
		return fmt.Errorf("bot.max_sends_per_second must not be negative")
	}
	if c.App.SensorsRefreshTime < 0 {
		return fmt.Errorf("app.sensors_refresh_time must not be negative")
	}
	if c.App.CommandTimeout < 0 {
		return fmt.Errorf("app.command_timeout must not be negative")
	}
	for text, handler := range c.Commands {
		if strings.TrimSpace(text) == "" || strings.TrimSpace(handler) == "" {
			return fmt.Errorf("commands: empty command or handler name")
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Bot.APIURL == "" {
		c.Bot.APIURL = DefaultAPIURL
	}
	c.Bot.APIURL = strings.TrimRight(c.Bot.APIURL, "/")
	if c.Bot.PollTimeout == 0 {
		c.Bot.PollTimeout = DefaultPollTimeout
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = DefaultLogLevel
	}
	if c.App.SensorsRefreshTime == 0 {
		c.App.SensorsRefreshTime = DefaultRefreshInterval
	}
	if c.App.CommandTimeout == 0 {
		c.App.CommandTimeout = DefaultCommandTimeout
	}
	if c.Commands == nil {
		c.Commands = map[string]string{}
	}
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.App.SensorsRefreshTime) * time.Second
}

func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.App.CommandTimeout) * time.Second
}

func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.Bot.PollTimeout) * time.Second
}

// SensorSpecs returns the parsed sensor definitions in file order.
func (c *Config) SensorSpecs() []models.SensorSpec {
	specs := make([]models.SensorSpec, len(c.Sensors))
	for i, s := range c.Sensors {
		specs[i] = s.spec
	}
	return specs
}
