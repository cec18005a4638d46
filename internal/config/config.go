package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"truthtracker/internal/domain"
)

// Duration wraps time.Duration so YAML values like "30s" or "1h" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

const (
	configPathEnv    = "TRUTH_TRACKER_CONFIG"
	mongoURIEnv      = "MONGO_URI"
	mongoDatabaseEnv = "MONGO_DATABASE"
	openAIAPIKeyEnv  = "OPENAI_API_KEY"
	openAIModelEnv   = "OPENAI_MODEL"
	adminTokensEnv   = "ADMIN_TOKENS"
	listenAddrEnv    = "LISTEN_ADDR"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging         LoggingConfig      `yaml:"logging"`
	Server          ServerConfig       `yaml:"server"`
	Mongo           MongoConfig        `yaml:"mongo"`
	OpenAI          OpenAIConfig       `yaml:"openai"`
	Sync            SyncConfig         `yaml:"sync"`
	Scheduler       SchedulerConfig    `yaml:"scheduler"`
	Notifications   NotificationConfig `yaml:"notifications"`
	PromiseSources  []domain.Source    `yaml:"promiseSources"`
	IncidentSources []domain.Source    `yaml:"incidentSources"`
	AllowedHosts    []string           `yaml:"allowedHosts"`
	AdminTokens     []string           `yaml:"adminTokens"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// RelayPath is the same-origin proxy used by feed fetchers.
	RelayPath string `yaml:"relayPath"`
}

// MongoConfig describes the document-store connection.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// OpenAIConfig defines how to contact the completion API.
type OpenAIConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// SyncConfig tunes the orchestrator's pacing and limits.
type SyncConfig struct {
	SourceDelay   Duration `yaml:"sourceDelay"`
	ModelDelay    Duration `yaml:"modelDelay"`
	HistoryLimit  int      `yaml:"historyLimit"`
	CompareLimit  int      `yaml:"compareLimit"`
	PerSourceCap  int      `yaml:"perSourceCap"`
	RelayEndpoint string   `yaml:"relayEndpoint"`
}

// SchedulerConfig defines the background sync cadence.
type SchedulerConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Interval Duration `yaml:"interval"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(mongoURIEnv); v != "" {
		c.Mongo.URI = v
	}
	if v := os.Getenv(mongoDatabaseEnv); v != "" {
		c.Mongo.Database = v
	}
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv(listenAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(adminTokensEnv); v != "" {
		c.AdminTokens = splitCSV(v)
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func splitCSV(value string) []string {
	var out []string
	for _, token := range strings.Split(value, ",") {
		if token = strings.TrimSpace(token); token != "" {
			out = append(out, token)
		}
	}
	return out
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.RelayPath != "" {
		base.Server.RelayPath = override.Server.RelayPath
	}
	if override.Mongo.URI != "" {
		base.Mongo.URI = override.Mongo.URI
	}
	if override.Mongo.Database != "" {
		base.Mongo.Database = override.Mongo.Database
	}
	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.Sync.SourceDelay > 0 {
		base.Sync.SourceDelay = override.Sync.SourceDelay
	}
	if override.Sync.ModelDelay > 0 {
		base.Sync.ModelDelay = override.Sync.ModelDelay
	}
	if override.Sync.HistoryLimit > 0 {
		base.Sync.HistoryLimit = override.Sync.HistoryLimit
	}
	if override.Sync.CompareLimit > 0 {
		base.Sync.CompareLimit = override.Sync.CompareLimit
	}
	if override.Sync.PerSourceCap > 0 {
		base.Sync.PerSourceCap = override.Sync.PerSourceCap
	}
	if override.Sync.RelayEndpoint != "" {
		base.Sync.RelayEndpoint = override.Sync.RelayEndpoint
	}
	if override.Scheduler.Interval > 0 {
		base.Scheduler = override.Scheduler
	}
	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if len(override.PromiseSources) > 0 {
		base.PromiseSources = override.PromiseSources
	}
	if len(override.IncidentSources) > 0 {
		base.IncidentSources = override.IncidentSources
	}
	if len(override.AllowedHosts) > 0 {
		base.AllowedHosts = override.AllowedHosts
	}
	if len(override.AdminTokens) > 0 {
		base.AdminTokens = override.AdminTokens
	}
	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Server: ServerConfig{
			Addr:      ":8080",
			RelayPath: "/api/fetch-relay",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "truthtracker",
		},
		OpenAI: OpenAIConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o",
		},
		Sync: SyncConfig{
			SourceDelay:  Duration(time.Second),
			ModelDelay:   Duration(500 * time.Millisecond),
			HistoryLimit: 100,
			CompareLimit: 10,
			PerSourceCap: 20,
		},
		Scheduler: SchedulerConfig{
			Enabled:  false,
			Interval: Duration(24 * time.Hour),
		},
		PromiseSources: []domain.Source{
			{
				Name:      "The Wire Politics",
				FetchType: domain.FetchFeed,
				URL:       "https://thewire.in/politics/feed",
				Active:    true,
				Category:  "news",
			},
		},
		IncidentSources: []domain.Source{
			{
				Name:      "Press Information Bureau",
				FetchType: domain.FetchFeed,
				URL:       "https://pib.gov.in/rss/leng.xml",
				Active:    true,
				Category:  "government",
			},
			{
				Name:      "The Hindu - Politics",
				FetchType: domain.FetchFeed,
				URL:       "https://www.thehindu.com/news/national/feeder/default.rss",
				Active:    true,
				Category:  "news",
			},
			{
				Name:      "The Wire - Politics",
				FetchType: domain.FetchFeed,
				URL:       "https://thewire.in/politics/feed",
				Active:    true,
				Category:  "news",
			},
			{
				Name:      "Scroll.in - Politics",
				FetchType: domain.FetchFeed,
				URL:       "https://scroll.in/politics/feed",
				Active:    true,
				Category:  "news",
			},
			{
				Name:      "Factly",
				FetchType: domain.FetchFeed,
				URL:       "https://factly.in/feed/",
				Active:    true,
				Category:  "fact-check",
			},
		},
		AllowedHosts: []string{
			"pib.gov.in",
			"thehindu.com",
			"thewire.in",
			"scroll.in",
			"factly.in",
		},
	}
}
