package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        App        `mapstructure:"app"`
	AI         AI         `mapstructure:"ai"`
	Telegram   Telegram   `mapstructure:"telegram"`
	Engagement Engagement `mapstructure:"engagement"`
	Logging    Logging    `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug        bool   `mapstructure:"debug"`
	DataDir      string `mapstructure:"data_dir"`      // tracking log + sqlite store
	PacksDir     string `mapstructure:"packs_dir"`     // digest JSON artifacts
	TrackingFile string `mapstructure:"tracking_file"` // defaults to <data_dir>/x-engagement-tracking.md
	ConfigFile   string `mapstructure:"config_file"`
}

// AI holds drafting-collaborator configuration
type AI struct {
	Provider string       `mapstructure:"provider"` // "gemini" or "openai"
	Gemini   GeminiConfig `mapstructure:"gemini"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout string `mapstructure:"timeout"`
}

// OpenAIConfig holds OpenAI-compatible provider configuration
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
	Timeout string `mapstructure:"timeout"`
}

// Telegram holds transport configuration
type Telegram struct {
	BotToken     string `mapstructure:"bot_token"`
	ChatID       string `mapstructure:"chat_id"`
	MessageLimit int    `mapstructure:"message_limit"` // chunk budget, chars
	SendDelay    string `mapstructure:"send_delay"`    // delay between chunks
	Timeout      string `mapstructure:"timeout"`
}

// Engagement holds the pipeline knobs that operators actually tune. Keyword
// sets and the influence-tier map keep their code defaults unless overridden
// here.
type Engagement struct {
	TopN            int      `mapstructure:"top_n"`
	CooldownHours   int      `mapstructure:"cooldown_hours"`
	MaxAgeHours     float64  `mapstructure:"max_age_hours"`
	MinLikesPain    int      `mapstructure:"min_likes_pain"`
	MinLikesDefault int      `mapstructure:"min_likes_default"`
	ScoreCap        float64  `mapstructure:"score_cap"`
	RelevanceCap    float64  `mapstructure:"relevance_cap"`
	Watchlist       []string `mapstructure:"watchlist"` // extra tier-2 authors
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".xscout")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	config.App.ConfigFile = viper.ConfigFileUsed()

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached configuration. Test hook.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", "data")
	viper.SetDefault("app.packs_dir", "daily-packs")

	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash-preview-05-20")
	viper.SetDefault("ai.gemini.timeout", "120s")
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.timeout", "120s")

	viper.SetDefault("telegram.message_limit", 4000)
	viper.SetDefault("telegram.send_delay", "500ms")
	viper.SetDefault("telegram.timeout", "30s")

	viper.SetDefault("engagement.top_n", 5)
	viper.SetDefault("engagement.cooldown_hours", 96)
	viper.SetDefault("engagement.max_age_hours", 72.0)
	viper.SetDefault("engagement.min_likes_pain", 3)
	viper.SetDefault("engagement.min_likes_default", 5)
	viper.SetDefault("engagement.score_cap", 5.0)
	viper.SetDefault("engagement.relevance_cap", 1.5)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("telegram.bot_token", []string{
		"TELEGRAM_BOT_TOKEN",
		"XSCOUT_BOT_TOKEN",
	})

	bindEnvKeys("telegram.chat_id", []string{
		"TELEGRAM_CHAT_ID",
		"XSCOUT_CHAT_ID",
	})

	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})
}

// bindEnvKeys binds the first non-empty environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.App.PacksDir != "" {
		config.App.PacksDir = expandPath(config.App.PacksDir)
	}
	if config.App.TrackingFile == "" {
		config.App.TrackingFile = filepath.Join(config.App.DataDir, "x-engagement-tracking.md")
	} else {
		config.App.TrackingFile = expandPath(config.App.TrackingFile)
	}

	durations := map[string]string{
		"ai.gemini.timeout":   config.AI.Gemini.Timeout,
		"ai.openai.timeout":   config.AI.OpenAI.Timeout,
		"telegram.send_delay": config.Telegram.SendDelay,
		"telegram.timeout":    config.Telegram.Timeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// ValidateForSend ensures the transport credentials are present. Called before
// any candidate processing; a failure here is fatal for the run.
func (c *Config) ValidateForSend() error {
	var errors []string

	if c.Telegram.BotToken == "" {
		errors = append(errors, "Telegram bot token is required. Set TELEGRAM_BOT_TOKEN or telegram.bot_token in config file")
	}
	if c.Telegram.ChatID == "" {
		errors = append(errors, "Telegram chat ID is required. Set TELEGRAM_CHAT_ID or telegram.chat_id in config file")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// ValidateForDraft ensures the selected drafting provider has credentials.
func (c *Config) ValidateForDraft() error {
	switch c.AI.Provider {
	case "gemini":
		if c.AI.Gemini.APIKey == "" {
			return fmt.Errorf("Gemini API key is required. Set GEMINI_API_KEY or ai.gemini.api_key in config file")
		}
	case "openai":
		if c.AI.OpenAI.APIKey == "" {
			return fmt.Errorf("OpenAI API key is required. Set OPENAI_API_KEY or ai.openai.api_key in config file")
		}
	default:
		return fmt.Errorf("unknown drafting provider: %s. Supported: gemini, openai", c.AI.Provider)
	}
	return nil
}

// SendDelay returns the parsed inter-chunk delay.
func (c *Config) SendDelay() time.Duration {
	d, err := time.ParseDuration(c.Telegram.SendDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// SendTimeout returns the parsed per-message transport timeout.
func (c *Config) SendTimeout() time.Duration {
	d, err := time.ParseDuration(c.Telegram.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// DraftTimeout returns the parsed drafting-call timeout for the active provider.
func (c *Config) DraftTimeout() time.Duration {
	raw := c.AI.Gemini.Timeout
	if c.AI.Provider == "openai" {
		raw = c.AI.OpenAI.Timeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// Convenience getters for commonly used configuration values
func GetApp() App               { return Get().App }
func GetTelegram() Telegram     { return Get().Telegram }
func GetEngagement() Engagement { return Get().Engagement }
func IsDebugMode() bool         { return Get().App.Debug }
