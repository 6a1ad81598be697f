// Package config handles credo configuration loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata" // report.timezone must resolve on minimal hosts

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/credo/config.yaml, /etc/credo/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "credo", "config.yaml"))
	}

	paths = append(paths, "/etc/credo/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
// Returns the path found, or an error if nothing was found.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// LoadEnvFile reads KEY=VALUE pairs from a dotenv file into the process
// environment. Values in the file win over variables already set, so a
// cron job with a sparse environment sees the same settings as an
// interactive shell. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Overload(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Config holds all credo configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	LogFormat  string           `yaml:"log_format"` // text (default) or json
	DataDir    string           `yaml:"data_dir"`
	Report     ReportConfig     `yaml:"report"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
	Models     ModelsConfig     `yaml:"models"`
	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Generation GenerationConfig `yaml:"generation"`
	Delivery   DeliveryConfig   `yaml:"delivery"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// ReportConfig controls the shape of the posted report.
type ReportConfig struct {
	// Author is the name printed under the report header.
	Author string `yaml:"author"`
	// Timezone is the IANA zone used to decide what "today" is.
	Timezone string `yaml:"timezone"`
}

// Location resolves Timezone, falling back to Asia/Tokyo.
func (r ReportConfig) Location() (*time.Location, error) {
	name := r.Timezone
	if name == "" {
		name = "Asia/Tokyo"
	}
	return time.LoadLocation(name)
}

// ScheduleConfig lists the user-supplied exclusion dates.
type ScheduleConfig struct {
	// SkipDates is a comma/whitespace separated list of YYYY-MM-DD
	// (one-time) and MM-DD (every year) tokens.
	SkipDates string `yaml:"skip_dates"`
	// SkipDatesFile holds one token per line; # starts a comment.
	// Defaults to skip_dates.txt next to the config file.
	SkipDatesFile string `yaml:"skip_dates_file"`
}

// ModelsConfig selects the generative backend and its sampling settings.
type ModelsConfig struct {
	Provider      string        `yaml:"provider"` // ollama, anthropic, gemini, none
	Model         string        `yaml:"model"`
	OllamaURL     string        `yaml:"ollama_url"`
	Temperature   float64       `yaml:"temperature"`
	TopP          float64       `yaml:"top_p"`
	ContextTokens int           `yaml:"context_tokens"`
	MaxTokens     int           `yaml:"max_tokens"`
	Timeout       time.Duration `yaml:"timeout"` // per backend call
}

// Configured reports whether a generative backend should be used at all.
// An unconfigured backend is a designed branch: the template fallback
// produces the report body instead.
func (m ModelsConfig) Configured() bool {
	return m.Provider != "none" && m.Model != ""
}

// AnthropicConfig defines Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
}

// Configured reports whether an API key is present.
func (a AnthropicConfig) Configured() bool { return a.APIKey != "" }

// GeminiConfig defines Google Gemini API settings.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
}

// Configured reports whether an API key is present.
func (g GeminiConfig) Configured() bool { return g.APIKey != "" }

// GenerationConfig tunes the retry loop around the backend.
type GenerationConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	RelaxedMin  int           `yaml:"relaxed_min"`
	Backoff     time.Duration `yaml:"backoff"`
}

// DeliveryConfig selects where the assembled report goes.
type DeliveryConfig struct {
	Kind      string          `yaml:"kind"` // stdout, lineworks, email
	LineWorks LineWorksConfig `yaml:"lineworks"`
	Email     EmailConfig     `yaml:"email"`
}

// LineWorksConfig drives the browser-based LINE WORKS poster.
type LineWorksConfig struct {
	LoginURL     string        `yaml:"login_url"`
	ID           string        `yaml:"id"`
	Password     string        `yaml:"password"`
	Room         string        `yaml:"room"`
	ChromeBinary string        `yaml:"chrome_binary"`
	ShowBrowser  bool          `yaml:"show_browser"`
	Timeout      time.Duration `yaml:"timeout"`
}

// EmailConfig describes an email delivery target.
type EmailConfig struct {
	From    string     `yaml:"from"`
	To      []string   `yaml:"to"`
	Subject string     `yaml:"subject"`
	SMTP    SMTPConfig `yaml:"smtp"`
}

// SMTPConfig defines outbound mail server settings.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// StartTLS upgrades a plain connection (port 587). When false the
	// connection is TLS from the start (port 465).
	StartTLS bool `yaml:"starttls"`
}

// MQTTConfig defines the optional run-summary publisher.
type MQTTConfig struct {
	Broker      string `yaml:"broker"` // mqtt://host:1883 or mqtts://host:8883
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	ClientID    string `yaml:"client_id"`
	// DiscoveryPrefix enables Home Assistant discovery when set,
	// usually to "homeassistant".
	DiscoveryPrefix string `yaml:"discovery_prefix"`
	DeviceName      string `yaml:"device_name"`
}

// Configured reports whether a broker is set.
func (m MQTTConfig) Configured() bool { return m.Broker != "" }

// MetricsConfig defines the optional Prometheus textfile export.
type MetricsConfig struct {
	// TextfilePath is written after every run for the node_exporter
	// textfile collector. Empty disables the export.
	TextfilePath string `yaml:"textfile_path"`
}

// Load reads configuration from a YAML file, expanding environment
// variables, applying defaults and environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults(filepath.Dir(path))
	return cfg, nil
}

// Default returns a default configuration. It has no generative backend,
// so reports are built from the template fallback until a model is set.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults(".")
	return cfg
}

// FromEnv returns the defaults with the environment overrides applied,
// for hosts that keep every setting in the environment or a .env file.
func FromEnv() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults(".")
	return cfg
}

// applyEnv lets the cron environment variables override
// the file. Credentials usually live only in the environment.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("SKIP_DATES"); ok {
		c.Schedule.SkipDates = v
	}
	if v := os.Getenv("SKIP_DATES_FILE"); v != "" {
		c.Schedule.SkipDatesFile = v
	}
	if v := os.Getenv("LINEWORKS_ID"); v != "" {
		c.Delivery.LineWorks.ID = v
	}
	if v := os.Getenv("LINEWORKS_PASS"); v != "" {
		c.Delivery.LineWorks.Password = v
	}
	if v := os.Getenv("CHROME_BINARY"); v != "" {
		c.Delivery.LineWorks.ChromeBinary = v
	}
}

func (c *Config) applyDefaults(baseDir string) {
	if c.DataDir == "" {
		c.DataDir = filepath.Join(baseDir, "db")
	}
	if c.Report.Author == "" {
		c.Report.Author = "クレド当番"
	}
	if c.Schedule.SkipDatesFile == "" {
		c.Schedule.SkipDatesFile = filepath.Join(baseDir, "skip_dates.txt")
	}
	if c.Models.Provider == "" {
		c.Models.Provider = "ollama"
	}
	if c.Models.OllamaURL == "" {
		c.Models.OllamaURL = "http://localhost:11434"
	}
	if c.Models.Temperature == 0 {
		c.Models.Temperature = 0.7
	}
	if c.Models.TopP == 0 {
		c.Models.TopP = 0.9
	}
	if c.Models.ContextTokens == 0 {
		c.Models.ContextTokens = 1024
	}
	if c.Models.MaxTokens == 0 {
		c.Models.MaxTokens = 128
	}
	if c.Models.Timeout == 0 {
		c.Models.Timeout = 60 * time.Second
	}
	if c.Generation.MaxAttempts == 0 {
		c.Generation.MaxAttempts = 5
	}
	if c.Generation.RelaxedMin == 0 {
		c.Generation.RelaxedMin = 24
	}
	if c.Generation.Backoff == 0 {
		c.Generation.Backoff = 2 * time.Second
	}
	if c.Delivery.Kind == "" {
		c.Delivery.Kind = "stdout"
	}
	if c.Delivery.LineWorks.LoginURL == "" {
		c.Delivery.LineWorks.LoginURL = "https://auth.worksmobile.com/login/login?accessUrl=https%3A%2F%2Ftalk.worksmobile.com%2F%23%2F"
	}
	if c.Delivery.LineWorks.Timeout == 0 {
		c.Delivery.LineWorks.Timeout = 60 * time.Second
	}
	if c.Delivery.Email.Subject == "" {
		c.Delivery.Email.Subject = "【クレド報告】"
	}
	if c.Delivery.Email.SMTP.Port == 0 {
		c.Delivery.Email.SMTP.Port = 587
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = "credo"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "credo-bot"
	}
	if c.MQTT.DeviceName == "" {
		c.MQTT.DeviceName = "Credo Bot"
	}
}

// Validate checks the configuration for values that would only fail
// later, mid-run. It returns the first problem found.
func (c *Config) Validate() error {
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("log_format %q must be text or json", c.LogFormat)
	}
	if _, err := c.Report.Location(); err != nil {
		return fmt.Errorf("report.timezone: %w", err)
	}

	switch c.Models.Provider {
	case "ollama", "none":
	case "anthropic":
		if c.Models.Configured() && !c.Anthropic.Configured() {
			return fmt.Errorf("models.provider anthropic requires anthropic.api_key")
		}
	case "gemini":
		if c.Models.Configured() && !c.Gemini.Configured() {
			return fmt.Errorf("models.provider gemini requires gemini.api_key")
		}
	default:
		return fmt.Errorf("models.provider %q must be one of ollama, anthropic, gemini, none", c.Models.Provider)
	}
	if c.Models.Temperature < 0 || c.Models.Temperature > 2 {
		return fmt.Errorf("models.temperature %v out of range (0-2)", c.Models.Temperature)
	}
	if c.Models.TopP < 0 || c.Models.TopP > 1 {
		return fmt.Errorf("models.top_p %v out of range (0-1)", c.Models.TopP)
	}

	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be at least 1")
	}
	if c.Generation.RelaxedMin < 1 {
		return fmt.Errorf("generation.relaxed_min must be at least 1")
	}

	switch c.Delivery.Kind {
	case "stdout":
	case "lineworks":
		lw := c.Delivery.LineWorks
		if lw.ID == "" || lw.Password == "" {
			return fmt.Errorf("delivery.lineworks requires id and password (or LINEWORKS_ID / LINEWORKS_PASS)")
		}
		if lw.Room == "" {
			return fmt.Errorf("delivery.lineworks.room is required")
		}
	case "email":
		em := c.Delivery.Email
		if em.From == "" || len(em.To) == 0 {
			return fmt.Errorf("delivery.email requires from and at least one to address")
		}
		if em.SMTP.Host == "" {
			return fmt.Errorf("delivery.email.smtp.host is required")
		}
		if em.SMTP.Port < 1 || em.SMTP.Port > 65535 {
			return fmt.Errorf("delivery.email.smtp.port %d out of range (1-65535)", em.SMTP.Port)
		}
	default:
		return fmt.Errorf("delivery.kind %q must be one of stdout, lineworks, email", c.Delivery.Kind)
	}

	if c.MQTT.Configured() {
		u, err := url.Parse(c.MQTT.Broker)
		if err != nil {
			return fmt.Errorf("mqtt.broker: %w", err)
		}
		switch u.Scheme {
		case "mqtt", "mqtts", "tcp", "ssl", "ws", "wss":
		default:
			return fmt.Errorf("mqtt.broker scheme %q must be mqtt, mqtts, tcp, ssl, ws or wss", u.Scheme)
		}
	}

	return nil
}
