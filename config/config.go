package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	dealerrors "sjsage522/geardealworker/pkg/errors"
)

// Page loader modes
const (
	LoaderChrome = "chrome"
	LoaderHTTP   = "http"
)

// DefaultCategories are the marketplace categories crawled when CATEGORIES is unset
var DefaultCategories = []string{
	"moduli-i-sempleri",
	"dj-oprema",
	"klavijature-oprema-i-delovi",
}

// Config represents the application configuration
type Config struct {
	// Credentials and endpoints
	GeminiAPIKey     string
	GeminiModel      string
	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIURL   string
	BaseURL          string

	// Crawler configuration
	Categories    []string
	RetryAttempts int
	RetryDelay    time.Duration
	CategoryDelay time.Duration
	WaitTimeout   time.Duration
	PageLoader    string
	ChromeBin     string
	Headless      bool

	// Optional Redis alert mirror
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	return &Config{
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		TelegramAPIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
		BaseURL:          strings.TrimRight(os.Getenv("BASE_URL"), "/"),

		Categories:    getEnvList("CATEGORIES", DefaultCategories),
		RetryAttempts: getEnvInt("RETRY_ATTEMPTS", 3),
		RetryDelay:    time.Duration(getEnvInt("RETRY_DELAY_SECONDS", 2)) * time.Second,
		CategoryDelay: time.Duration(getEnvInt("CATEGORY_DELAY_SECONDS", 2)) * time.Second,
		WaitTimeout:   time.Duration(getEnvInt("WAIT_TIMEOUT_SECONDS", 15)) * time.Second,
		PageLoader:    getEnv("PAGE_LOADER", LoaderChrome),
		ChromeBin:     os.Getenv("CHROME_BIN"),
		Headless:      getEnv("HEADLESS", "true") != "false",

		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		RedisStream:          getEnv("REDIS_STREAM", "gear_deals"),
		RedisStreamMaxLength: getEnvInt("REDIS_STREAM_MAX_LENGTH", 1000),

		Environment: getEnv("GEARDEAL_ENVIRONMENT", "development"),
	}
}

// Validate checks that every required value is present and every tunable is sane.
// It never touches the network.
func (c *Config) Validate() error {
	var missing []string
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.TelegramBotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if c.TelegramChatID == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}
	if c.BaseURL == "" {
		missing = append(missing, "BASE_URL")
	}
	if len(missing) > 0 {
		return dealerrors.NewConfiguration("missing required environment variables: "+strings.Join(missing, ", "), nil)
	}

	if len(c.Categories) == 0 {
		return dealerrors.NewConfiguration("no categories configured", nil)
	}
	if c.RetryAttempts < 1 {
		return dealerrors.NewConfiguration("RETRY_ATTEMPTS must be at least 1", nil)
	}
	if c.PageLoader != LoaderChrome && c.PageLoader != LoaderHTTP {
		return dealerrors.NewConfiguration("PAGE_LOADER must be \"chrome\" or \"http\", got "+strconv.Quote(c.PageLoader), nil)
	}
	return nil
}

// RedisEnabled reports whether alerts are mirrored to a Redis stream
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
