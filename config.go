package main

import (
	"crypto/tls"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"

	"github.com/Kofirs2634/p1-20-bot-telegram/internal/bot"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/db"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/jobs"
	"github.com/Kofirs2634/p1-20-bot-telegram/internal/session"
	"github.com/Kofirs2634/p1-20-bot-telegram/pkg/portal"
)

// Config represents a complete configuration
type Config struct {
	Host        string         `toml:"host,omitempty"`
	Port        uint16         `toml:"port,omitempty"`
	Log         LogConfig      `toml:"log,omitempty"`
	TLS         TLSConfig      `toml:"tls,omitempty"`
	Redis       db.RedisConfig `toml:"redis"`
	TelegramBot bot.Config     `toml:"telegram_bot"`
	Portal      portal.Config  `toml:"portal"`
	Master      session.Config `toml:"master"` // the bot's own portal account
	Jobs        jobs.Config    `toml:"jobs,omitempty"`

	WebhookPath string `toml:"-"`
}

// LogConfig represents a configuration for the global logger
type LogConfig struct {
	Level string `toml:"level,omitempty"`
	Path  string `toml:"path,omitempty"`
}

// TLSConfig represents a configuration for TLS of the HTTP server
type TLSConfig struct {
	ServerName      string `toml:"server_name,omitempty"`
	CertificatePath string `toml:"certificate_path,omitempty"`
	PrivateKeyPath  string `toml:"private_key_path,omitempty"`
}

// environment holds the secrets that may be given by environment variables instead of the file
type environment struct {
	BotToken       string `envconfig:"BOT_TOKEN"`
	PortalLogin    string `envconfig:"PORTAL_LOGIN"`
	PortalPassword string `envconfig:"PORTAL_PASSWORD"`
}

// LoadConfig loads a configuration from the given file, then from the environment
func LoadConfig(path string) (c Config, err error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config file: %w", err)
	}
	if err = toml.Unmarshal(f, &c); err != nil {
		return c, fmt.Errorf("failed to parse config file: %w", err)
	}

	var env environment
	if err = envconfig.Process("", &env); err != nil {
		return c, fmt.Errorf("failed to read environment: %w", err)
	}
	if env.BotToken != "" {
		c.TelegramBot.Token = env.BotToken
	}
	if env.PortalLogin != "" {
		c.Master.Login = env.PortalLogin
	}
	if env.PortalPassword != "" {
		c.Master.Password = env.PortalPassword
	}
	if err = envconfig.Process("", &c.Redis); err != nil {
		return c, fmt.Errorf("failed to read environment: %w", err)
	}

	if err = c.validate(); err != nil {
		return c, err
	}
	if err = c.setupHTTPServer(); err != nil {
		return c, err
	}
	return c, nil
}

// validate checks the settings the bot cannot start without
func (c *Config) validate() error {
	switch {
	case c.TelegramBot.Token == "":
		return fmt.Errorf("missing Telegram bot token (`token` or BOT_TOKEN)")
	case c.TelegramBot.Group == "":
		return fmt.Errorf("missing group (`group`) in config")
	case c.Master.Login == "" || c.Master.Password == "":
		return fmt.Errorf("missing portal credentials (`master` or PORTAL_LOGIN and PORTAL_PASSWORD)")
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Portal.BaseURL == "" {
		c.Portal.BaseURL = portal.DefaultBaseURL
	}
	c.Portal.BaseURL = strings.TrimSuffix(c.Portal.BaseURL, "/")
	return nil
}

// setupLogger sets up the global logger configuration
func (c *Config) setupLogger() error {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}
	log.SetLevel(level)
	log.Debugf("log level set to %s", strings.ToUpper(level.String()))
	if level >= log.DebugLevel {
		log.SetReportCaller(true)
	}

	if c.Log.Path != "" {
		f, err := os.OpenFile(c.Log.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}
	return nil
}

// setupHTTPServer sets up the HTTP server configuration
func (c *Config) setupHTTPServer() error {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8080
	}

	if c.TelegramBot.WebhookURL != "" {
		u, err := url.Parse(c.TelegramBot.WebhookURL)
		if err != nil {
			return fmt.Errorf("invalid Telegram bot webhook URL: %w", err)
		}
		c.WebhookPath = u.Path
		if c.WebhookPath == "" {
			c.WebhookPath = "/"
		}
	}
	return nil
}

// tlsConfig loads the certificate of the HTTP server, nil if TLS is not configured
func (c *Config) tlsConfig() (*tls.Config, error) {
	if c.TLS.CertificatePath == "" || c.TLS.PrivateKeyPath == "" {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(c.TLS.CertificatePath, c.TLS.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}
	return &tls.Config{
		ServerName:   c.TLS.ServerName,
		Certificates: []tls.Certificate{cert},
	}, nil
}
