package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      App      `mapstructure:"app"`
	AI       AI       `mapstructure:"ai"`
	Video    Video    `mapstructure:"video"`
	Database Database `mapstructure:"database"`
	Search   Search   `mapstructure:"search"`
	Quota    Quota    `mapstructure:"quota"`
	Jobs     Jobs     `mapstructure:"jobs"`
	Trends   Trends   `mapstructure:"trends"`
	Logging  Logging  `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey              string  `mapstructure:"api_key"`
	FastModel           string  `mapstructure:"fast_model"`
	CreativeModel       string  `mapstructure:"creative_model"`
	Timeout             string  `mapstructure:"timeout"`
	MaxTokens           int32   `mapstructure:"max_tokens"`
	FastTemperature     float32 `mapstructure:"fast_temperature"`
	CreativeTemperature float32 `mapstructure:"creative_temperature"`
	EmbeddingModel      string  `mapstructure:"embedding_model"`
	EmbeddingDimensions int32   `mapstructure:"embedding_dimensions"`
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Timeout     string  `mapstructure:"timeout"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
}

// Video holds video analysis configuration
type Video struct {
	SpeechLanguage  string `mapstructure:"speech_language"`
	AnnotateTimeout string `mapstructure:"annotate_timeout"`
}

// Database holds Postgres configuration
type Database struct {
	URL             string `mapstructure:"url"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
}

// Search holds trend signal provider configuration
type Search struct {
	DefaultProvider string          `mapstructure:"default_provider"`
	MaxResults      int             `mapstructure:"max_results"`
	Timeout         string          `mapstructure:"timeout"`
	Language        string          `mapstructure:"language"`
	Providers       SearchProviders `mapstructure:"providers"`
}

// SearchProviders holds configuration for all signal providers
type SearchProviders struct {
	SerpAPI    SerpAPIConfig    `mapstructure:"serpapi"`
	DuckDuckGo DuckDuckGoConfig `mapstructure:"duckduckgo"`
	YouTube    YouTubeConfig    `mapstructure:"youtube"`
	Reddit     RedditConfig     `mapstructure:"reddit"`
}

// SerpAPIConfig holds SerpAPI configuration
type SerpAPIConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// DuckDuckGoConfig holds DuckDuckGo configuration
type DuckDuckGoConfig struct {
	RateLimit string `mapstructure:"rate_limit"`
}

// YouTubeConfig holds YouTube Data API configuration
type YouTubeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Region string `mapstructure:"region"`
}

// RedditConfig holds the read-only Reddit signal source configuration
type RedditConfig struct {
	Subreddits []string `mapstructure:"subreddits"`
}

// Quota holds per-plan usage limits
type Quota struct {
	FreeMonthlyLimit int `mapstructure:"free_monthly_limit"`
}

// Jobs holds the analysis job runner configuration
type Jobs struct {
	Workers      int    `mapstructure:"workers"`
	QueueSize    int    `mapstructure:"queue_size"`
	PollInterval string `mapstructure:"poll_interval"`
	StaleAfter   string `mapstructure:"stale_after"`
}

// Trends holds trends radar configuration
type Trends struct {
	SignalsPerPlatform int `mapstructure:"signals_per_platform"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
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

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".reelsmith")
		viper.SetConfigType("yaml")
	}

	// Set defaults
	setDefaults()

	// Bind environment variables
	bindEnvironmentVariables()

	// Enable automatic environment variable reading
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Apply post-processing
	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

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

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	// AI defaults
	viper.SetDefault("ai.gemini.fast_model", "gemini-flash-lite-latest")
	viper.SetDefault("ai.gemini.creative_model", "gemini-2.5-pro")
	viper.SetDefault("ai.gemini.timeout", "30s")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.fast_temperature", 0.5)
	viper.SetDefault("ai.gemini.creative_temperature", 0.7)
	viper.SetDefault("ai.gemini.embedding_model", "gemini-embedding-001")
	viper.SetDefault("ai.gemini.embedding_dimensions", 768)
	viper.SetDefault("ai.openai.model", "gpt-4o")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.timeout", "60s")
	viper.SetDefault("ai.openai.temperature", 0.6)
	viper.SetDefault("ai.openai.max_tokens", 4096)

	// Video defaults
	viper.SetDefault("video.speech_language", "en-US")
	viper.SetDefault("video.annotate_timeout", "180s")

	// Database defaults
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")

	// Search defaults
	viper.SetDefault("search.default_provider", "duckduckgo")
	viper.SetDefault("search.max_results", 10)
	viper.SetDefault("search.timeout", "15s")
	viper.SetDefault("search.language", "en")
	viper.SetDefault("search.providers.duckduckgo.rate_limit", "1s")
	viper.SetDefault("search.providers.youtube.region", "US")
	viper.SetDefault("search.providers.reddit.subreddits", []string{"NewTubers", "SocialMediaMarketing", "Tiktokhelp"})

	// Quota defaults
	viper.SetDefault("quota.free_monthly_limit", 5)

	// Jobs defaults
	viper.SetDefault("jobs.workers", 2)
	viper.SetDefault("jobs.queue_size", 16)
	viper.SetDefault("jobs.poll_interval", "2s")
	viper.SetDefault("jobs.stale_after", "30m")

	// Trends defaults
	viper.SetDefault("trends.signals_per_platform", 10)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	// OpenAI API key
	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	// SerpAPI
	bindEnvKeys("search.providers.serpapi.api_key", []string{
		"SERPAPI_API_KEY",
		"SERPAPI_KEY",
	})

	// YouTube Data API
	bindEnvKeys("search.providers.youtube.api_key", []string{
		"YOUTUBE_API_KEY",
		"GOOGLE_YOUTUBE_API_KEY",
	})

	// Database
	bindEnvKeys("database.url", []string{
		"DATABASE_URL",
		"POSTGRES_URL",
	})

	// General settings
	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"REELSMITH_DEBUG",
	})

	bindEnvKeys("search.default_provider", []string{
		"SEARCH_PROVIDER",
		"DEFAULT_SEARCH_PROVIDER",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
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
	// Validate durations
	durations := map[string]string{
		"ai.gemini.timeout":                      config.AI.Gemini.Timeout,
		"ai.openai.timeout":                      config.AI.OpenAI.Timeout,
		"video.annotate_timeout":                 config.Video.AnnotateTimeout,
		"database.conn_max_lifetime":             config.Database.ConnMaxLifetime,
		"search.timeout":                         config.Search.Timeout,
		"search.providers.duckduckgo.rate_limit": config.Search.Providers.DuckDuckGo.RateLimit,
		"jobs.poll_interval":                     config.Jobs.PollInterval,
		"jobs.stale_after":                       config.Jobs.StaleAfter,
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

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	// Gemini powers the fast-cheap and best-creative aliases plus embeddings
	if config.AI.Gemini.APIKey == "" {
		errors = append(errors, "Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.")
	}

	// OpenAI powers the balanced alias
	if config.AI.OpenAI.APIKey == "" {
		errors = append(errors, "OpenAI API key is required. Set OPENAI_API_KEY environment variable or ai.openai.api_key in config file.")
	}

	if config.Database.URL == "" {
		errors = append(errors, "Database URL is required. Set DATABASE_URL environment variable or database.url in config file.")
	}

	// Validate search provider configuration
	if config.Search.DefaultProvider != "" {
		switch config.Search.DefaultProvider {
		case "serpapi":
			if config.Search.Providers.SerpAPI.APIKey == "" {
				errors = append(errors, "SerpAPI requires API key. Set SERPAPI_API_KEY environment variable")
			}
		case "youtube":
			if config.Search.Providers.YouTube.APIKey == "" {
				errors = append(errors, "YouTube provider requires API key. Set YOUTUBE_API_KEY environment variable")
			}
		case "duckduckgo", "reddit", "mock":
			// No validation needed for these providers
		default:
			errors = append(errors, fmt.Sprintf("Unknown search provider: %s. Supported: serpapi, duckduckgo, youtube, reddit, mock", config.Search.DefaultProvider))
		}
	}

	if config.Quota.FreeMonthlyLimit < 0 {
		errors = append(errors, "quota.free_monthly_limit must not be negative")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Convenience getters for commonly used configuration values
func GetApp() App           { return Get().App }
func GetAI() AI             { return Get().AI }
func GetVideo() Video       { return Get().Video }
func GetDatabase() Database { return Get().Database }
func GetSearch() Search     { return Get().Search }
func GetQuota() Quota       { return Get().Quota }
func GetJobs() Jobs         { return Get().Jobs }
func GetTrends() Trends     { return Get().Trends }
func GetLogging() Logging   { return Get().Logging }

// Specific convenience getters for frequently accessed values
func GetGeminiAPIKey() string   { return Get().AI.Gemini.APIKey }
func GetOpenAIAPIKey() string   { return Get().AI.OpenAI.APIKey }
func GetSerpAPIKey() string     { return Get().Search.Providers.SerpAPI.APIKey }
func GetYouTubeAPIKey() string  { return Get().Search.Providers.YouTube.APIKey }
func GetDatabaseURL() string    { return Get().Database.URL }
func GetSearchProvider() string { return Get().Search.DefaultProvider }
func IsDebugMode() bool         { return Get().App.Debug }

// HasValidSerpAPI returns true if SerpAPI is properly configured
func HasValidSerpAPI() bool {
	return isValidAPIKey(GetSerpAPIKey())
}

// GetSearchProviderConfig returns configuration for creating a search provider
func GetSearchProviderConfig(providerType string) map[string]string {
	config := Get()

	switch providerType {
	case "serpapi":
		return map[string]string{
			"api_key": config.Search.Providers.SerpAPI.APIKey,
		}
	case "youtube":
		return map[string]string{
			"api_key": config.Search.Providers.YouTube.APIKey,
			"region":  config.Search.Providers.YouTube.Region,
		}
	case "reddit":
		return map[string]string{
			"subreddits": strings.Join(config.Search.Providers.Reddit.Subreddits, ","),
		}
	case "duckduckgo":
		return map[string]string{
			"rate_limit": config.Search.Providers.DuckDuckGo.RateLimit,
		}
	default:
		return map[string]string{}
	}
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	// Check for common placeholder values
	placeholders := []string{
		"your-api-key", "your-serpapi-key", "your-openai-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
