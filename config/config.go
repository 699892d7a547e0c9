package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the chat service
type Config struct {
	General    GeneralConfig    `mapstructure:"general"`
	Server     ServerConfig     `mapstructure:"server"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Generation GenerationConfig `mapstructure:"generation"`
	Chat       ChatConfig       `mapstructure:"chat"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Knowledge  KnowledgeConfig  `mapstructure:"knowledge"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig configures the classification/translation model client
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.APIKey) == "" {
		return fmt.Errorf("llm.api_key required")
	}
	if strings.TrimSpace(l.Model) == "" {
		return fmt.Errorf("llm.model required")
	}
	return nil
}

// GenerationConfig configures the stateful response-generation backend
type GenerationConfig struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	DeploymentID        string        `mapstructure:"deployment_id"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ConversationTTLDays int           `mapstructure:"conversation_ttl_days"`
}

func (g GenerationConfig) Validate() error {
	if strings.TrimSpace(g.APIKey) == "" {
		return fmt.Errorf("generation.api_key required")
	}
	if strings.TrimSpace(g.DeploymentID) == "" {
		return fmt.Errorf("generation.deployment_id required")
	}
	return nil
}

// ChatConfig contains tunables for the conversation pipeline
type ChatConfig struct {
	DefaultLanguage  string        `mapstructure:"default_language"`
	HistoryLimit     int           `mapstructure:"history_limit"`
	ClassifyWindow   int           `mapstructure:"classify_window"`
	SessionTTL       time.Duration `mapstructure:"session_ttl"`
	SourceTimeout    time.Duration `mapstructure:"source_timeout"`
	ResultCap        int           `mapstructure:"result_cap"`
	RejectionMessage string        `mapstructure:"rejection_message"`
	ApologyMessage   string        `mapstructure:"apology_message"`
}

func (c ChatConfig) Validate() error {
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("chat.history_limit must be > 0")
	}
	if c.ClassifyWindow <= 0 {
		return fmt.Errorf("chat.classify_window must be > 0")
	}
	if c.ResultCap <= 0 {
		return fmt.Errorf("chat.result_cap must be > 0")
	}
	if c.SourceTimeout <= 0 {
		return fmt.Errorf("chat.source_timeout must be > 0")
	}
	return nil
}

// StorageConfig contains session and knowledge storage settings
type StorageConfig struct {
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig contains Redis connection settings for the session store.
// An empty host means Redis is not configured; sessions then live in process.
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("storage.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("storage.redis.port required")
	}
	return nil
}

// PostgresConfig contains Postgres connection settings for the knowledge store
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (p PostgresConfig) Validate() error {
	if strings.TrimSpace(p.URL) != "" {
		return nil
	}
	if strings.TrimSpace(p.Host) == "" {
		return fmt.Errorf("storage.postgres.host required when url is not provided")
	}
	if strings.TrimSpace(p.DBName) == "" {
		return fmt.Errorf("storage.postgres.dbname required when url is not provided")
	}
	return nil
}

// DSN builds a Postgres connection string from the configured fields
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl)
}

// KnowledgeConfig controls which knowledge sources the orchestrator queries
type KnowledgeConfig struct {
	Categories []string   `mapstructure:"categories"`
	Docs       DocsConfig `mapstructure:"docs"`
}

// DocsConfig configures the in-process support-documents index
type DocsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Name    string `mapstructure:"name"`
	Dir     string `mapstructure:"dir"`
}

// TelemetryConfig contains metrics settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// DefaultRejectionMessage is returned verbatim for out-of-domain queries.
// Carried unchanged from the production prompt set.
const DefaultRejectionMessage = `I'm an e-commerce assistant designed to help with shopping-related questions.
I can assist you with:
- Finding and recommending products
- Product specifications and details
- Pricing and promotions
- Shipping and delivery information
- Order tracking
- Returns and refunds
- Customer reviews

How can I help you with your shopping today?`

// DefaultApologyMessage is returned when response generation fails.
const DefaultApologyMessage = "I apologize, but I encountered an error processing your request. Please try again."

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("server.address", ":10002")
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.base_url", "https://api.openai.com/v1")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.max_tokens", 512)
	viper.SetDefault("llm.timeout", 30*time.Second)
	viper.SetDefault("generation.base_url", "https://api.abacus.ai/api/v0")
	viper.SetDefault("generation.timeout", 60*time.Second)
	viper.SetDefault("generation.conversation_ttl_days", 7)
	viper.SetDefault("chat.default_language", "English")
	viper.SetDefault("chat.history_limit", 15)
	viper.SetDefault("chat.classify_window", 3)
	viper.SetDefault("chat.session_ttl", 24*time.Hour)
	viper.SetDefault("chat.source_timeout", 5*time.Second)
	viper.SetDefault("chat.result_cap", 3)
	viper.SetDefault("chat.rejection_message", DefaultRejectionMessage)
	viper.SetDefault("chat.apology_message", DefaultApologyMessage)
	viper.SetDefault("storage.redis.port", "6379")
	viper.SetDefault("storage.redis.db", 0)
	viper.SetDefault("storage.redis.timeout", 5*time.Second)
	viper.SetDefault("storage.postgres.sslmode", "disable")
	viper.SetDefault("storage.postgres.timeout", 5*time.Second)
	viper.SetDefault("knowledge.categories", []string{"products", "services", "consultations", "specialists"})
	viper.SetDefault("knowledge.docs.enabled", true)
	viper.SetDefault("knowledge.docs.name", "support")
	viper.SetDefault("knowledge.docs.dir", "./docs/support")
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
		viper.AddConfigPath(filepath.Join(exeDir, "..", "config"))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("SHOPCHAT")
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	viper.AutomaticEnv() // read in environment variables that match (SHOPCHAT_*)

	if err := viper.ReadInConfig(); err != nil {
		// config file is optional; env and defaults may be enough
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Chat.Validate(); err != nil {
		panic(err)
	}
	return &config
}
