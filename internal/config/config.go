package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults mirror the values the bot shipped with before it was configurable.
const (
	DefaultPort         = 5000
	DefaultHost         = "0.0.0.0"
	DefaultVerifyToken  = "my_super_secret_password"
	DefaultOfferLink    = "https://yourwebsite.com/buy"
	DefaultWhatsAppBase = "https://graph.facebook.com"
	DefaultWhatsAppVer  = "v17.0"
	DefaultLLMBaseURL   = "https://api.groq.com/openai/v1"
	DefaultLLMModel     = "llama3-70b-8192"
	DefaultTemperature  = 0.7
	DefaultMaxTokens    = 150
	DefaultAgentName    = "Ace"
	DefaultProductName  = "Activate Your Dreams"
)

type ServerConfig struct {
	Host string
	Port int
	Mode string // gin mode: debug, release, test
}

type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	APIBase       string
	APIVersion    string
}

type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// DispatchConfig applies to every outbound messenger.
type DispatchConfig struct {
	Timeout time.Duration
}

type TelegramConfig struct {
	BotToken      string
	WebhookSecret string
}

type SalesConfig struct {
	AgentName      string
	ProductName    string
	OfferLink      string
	ObjectionsFile string
}

// Config is built once at startup and never mutated afterwards.
type Config struct {
	Server      ServerConfig
	WhatsApp    WhatsAppConfig
	LLM         LLMConfig
	Dispatch    DispatchConfig
	Telegram    TelegramConfig
	Sales       SalesConfig
	DatabaseURL string
	LogLevel    string
}

// Load reads the process environment. Call godotenv.Load beforehand to pick up a .env file.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("HOST", DefaultHost),
			Mode: getEnv("GIN_MODE", "release"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("PHONE_NUMBER_ID"),
			VerifyToken:   getEnv("VERIFY_TOKEN", DefaultVerifyToken),
			APIBase:       getEnv("WHATSAPP_API_BASE", DefaultWhatsAppBase),
			APIVersion:    getEnv("WHATSAPP_API_VERSION", DefaultWhatsAppVer),
		},
		LLM: LLMConfig{
			APIKey:  os.Getenv("GROQ_API_KEY"),
			BaseURL: getEnv("GROQ_BASE_URL", DefaultLLMBaseURL),
			Model:   getEnv("LLM_MODEL", DefaultLLMModel),
		},
		Telegram: TelegramConfig{
			BotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
			WebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		},
		Sales: SalesConfig{
			AgentName:      getEnv("AGENT_NAME", DefaultAgentName),
			ProductName:    getEnv("PRODUCT_NAME", DefaultProductName),
			OfferLink:      getEnv("BOOK_LINK", DefaultOfferLink),
			ObjectionsFile: os.Getenv("OBJECTIONS_FILE"),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.Server.Port, err = getInt("PORT", DefaultPort); err != nil {
		return nil, err
	}
	if cfg.LLM.MaxTokens, err = getInt("LLM_MAX_TOKENS", DefaultMaxTokens); err != nil {
		return nil, err
	}
	if cfg.LLM.Temperature, err = getFloat32("LLM_TEMPERATURE", DefaultTemperature); err != nil {
		return nil, err
	}
	if cfg.LLM.Timeout, err = getDuration("LLM_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.Dispatch.Timeout, err = getDuration("DISPATCH_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Missing lists required secrets that are unset. They only fail at call time,
// so callers are expected to warn rather than abort.
func (c *Config) Missing() []string {
	var missing []string
	if c.WhatsApp.AccessToken == "" {
		missing = append(missing, "WHATSAPP_TOKEN")
	}
	if c.WhatsApp.PhoneNumberID == "" {
		missing = append(missing, "PHONE_NUMBER_ID")
	}
	if c.LLM.APIKey == "" {
		missing = append(missing, "GROQ_API_KEY")
	}
	return missing
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", key, v)
	}
	return n, nil
}

func getFloat32(key string, fallback float32) (float32, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil || f < 0 || f > 2 {
		return 0, fmt.Errorf("invalid %s %q: must be between 0 and 2", key, v)
	}
	return float32(f), nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive duration", key, v)
	}
	return d, nil
}
