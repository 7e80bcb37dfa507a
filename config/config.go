package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cuotos/slackstorm/dispatcher"
	"github.com/cuotos/slackstorm/registry"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "slackstorm.yaml"

// Config is loaded from slackstorm.yaml, with secrets optionally supplied
// through the environment instead.
type Config struct {
	Channels []registry.ChannelConfig `yaml:"channels"`
	Store    StoreConfig              `yaml:"store"`
	Slack    SlackConfig              `yaml:"slack"`
	Server   ServerConfig             `yaml:"server"`
	LogLevel string                   `yaml:"log_level"`
}

// StoreConfig picks where channels are read from: the channels list in this
// file, or redis.
type StoreConfig struct {
	Backend       string `yaml:"backend"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
}

type SlackConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Escaping       string `yaml:"escaping"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type ServerConfig struct {
	Addr          string `yaml:"addr"`
	AuthToken     string `yaml:"auth_token"`
	SigningSecret string `yaml:"signing_secret"`
}

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Load reads the config file at path, DefaultPath when path is empty. A missing
// file is not an error, the defaults and environment are used instead.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	var cfg Config

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("AUTH_TOKEN"); v != "" {
		c.Server.AuthToken = v
	}
	if v := os.Getenv("SLACK_SIGNING_SECRET"); v != "" {
		c.Server.SigningSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Store.Backend = BackendRedis
		c.Store.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Store.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB must be an integer. but got \"%s\"", v)
		}
		c.Store.RedisDB = db
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	c.LogLevel = strings.ToUpper(c.LogLevel)

	if c.Store.Backend == "" {
		c.Store.Backend = BackendFile
	}
	if c.Store.Backend == BackendRedis && c.Store.RedisAddr == "" {
		c.Store.RedisAddr = "localhost:6379"
	}
	if c.Slack.Endpoint == "" {
		c.Slack.Endpoint = dispatcher.DefaultEndpoint
	}
	if !strings.HasSuffix(c.Slack.Endpoint, "/") {
		c.Slack.Endpoint += "/"
	}
	if c.Slack.Escaping == "" {
		c.Slack.Escaping = string(dispatcher.EscapeJSON)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
}

// Validate ensures the config is usable.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendFile, BackendRedis, c.Store.Backend)
	}

	if _, err := dispatcher.ParseEscaping(c.Slack.Escaping); err != nil {
		return fmt.Errorf("slack.escaping: %w", err)
	}
	if c.Slack.TimeoutSeconds < 0 {
		return errors.New("slack.timeout_seconds must not be negative")
	}

	seen := map[string]bool{}
	for i, ch := range c.Channels {
		if ch.ChannelID == "" {
			return fmt.Errorf("channel %d has empty id", i+1)
		}
		if ch.WebhookToken == "" {
			return fmt.Errorf("channel %s has empty token", ch.ChannelID)
		}
		if seen[ch.ChannelID] {
			return fmt.Errorf("channel %s is configured more than once", ch.ChannelID)
		}
		seen[ch.ChannelID] = true
	}
	return nil
}

func (c *Config) Escaping() dispatcher.Escaping {
	e, _ := dispatcher.ParseEscaping(c.Slack.Escaping)
	return e
}

// Timeout is the webhook client timeout, zero leaves the transport default.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Slack.TimeoutSeconds) * time.Second
}
