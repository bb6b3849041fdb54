package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tariff_digest/internal/domain/report"
)

// AppConfig holds all configuration for the application. It is built once at
// startup and passed down explicitly.
type AppConfig struct {
	DatabaseDriver string
	DatabaseURL    string

	Location            *time.Location
	HolidaysFile        string // empty: embedded table for HolidayJurisdiction
	HolidayJurisdiction string
	MaxLookbackDays     int
	BusinessDaysOnly    bool         // default flow skips non-business days
	ForcedReportDate    *report.Date // FORCE_REPORT_DATE

	OutputDir   string
	SiteTitle   string
	PageBaseURL string

	SourceFeeds  []string
	SourcePages  []PageSource
	SourceQuery  []string
	FetchTimeout time.Duration
	UserAgent    string

	// Read here but only validated when a notifier is actually built.
	TelegramToken  string
	TelegramChatID string

	CronSpecDaily string
	LogLevel      string
	Environment   string
}

// PageSource is an HTML listing page and the CSS selector of its entries.
type PageSource struct {
	URL      string
	Selector string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the config from a lookup function.
func FromEnv(getenv func(string) string) (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.DatabaseDriver = strings.ToLower(getenvDefault(getenv, "DATABASE_DRIVER", "sqlite"))
	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("invalid DATABASE_DRIVER %q (want sqlite or postgres)", cfg.DatabaseDriver)
	}
	cfg.DatabaseURL = getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseDriver == "postgres" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
		cfg.DatabaseURL = "file:digest.db"
	}

	tz := getenvDefault(getenv, "REPORT_TIMEZONE", "Asia/Tokyo")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEZONE: %w", err)
	}

	cfg.HolidaysFile = getenv("HOLIDAYS_FILE")
	cfg.HolidayJurisdiction = strings.ToLower(getenvDefault(getenv, "HOLIDAY_JURISDICTION", "jp"))

	cfg.MaxLookbackDays, err = getenvInt(getenv, "WINDOW_MAX_LOOKBACK_DAYS", 30)
	if err != nil {
		return nil, err
	}
	if cfg.MaxLookbackDays <= 0 {
		return nil, fmt.Errorf("WINDOW_MAX_LOOKBACK_DAYS must be positive, got %d", cfg.MaxLookbackDays)
	}

	if v := getenv("REPORT_BUSINESS_DAYS_ONLY"); v != "" {
		cfg.BusinessDaysOnly, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid REPORT_BUSINESS_DAYS_ONLY: %w", err)
		}
	}

	if v := strings.TrimSpace(getenv("FORCE_REPORT_DATE")); v != "" {
		d, err := report.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FORCE_REPORT_DATE: %w", err)
		}
		cfg.ForcedReportDate = &d
	}

	cfg.OutputDir = getenvDefault(getenv, "OUTPUT_DIR", "public")
	cfg.SiteTitle = getenvDefault(getenv, "SITE_TITLE", "Tariff Digest")
	cfg.PageBaseURL = getenv("PAGE_BASE_URL")

	cfg.SourceFeeds = splitList(getenv("SOURCE_FEEDS"))
	for _, raw := range splitList(getenv("SOURCE_PAGES")) {
		url, selector, ok := strings.Cut(raw, "|")
		if !ok || strings.TrimSpace(selector) == "" {
			return nil, fmt.Errorf("invalid SOURCE_PAGES entry %q (want url|selector)", raw)
		}
		cfg.SourcePages = append(cfg.SourcePages, PageSource{URL: strings.TrimSpace(url), Selector: strings.TrimSpace(selector)})
	}
	cfg.SourceQuery = splitList(getenvDefault(getenv, "SOURCE_QUERY", "tariff"))

	cfg.FetchTimeout = 20 * time.Second
	if v := getenv("FETCH_TIMEOUT"); v != "" {
		cfg.FetchTimeout, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
		}
	}
	cfg.UserAgent = getenvDefault(getenv, "USER_AGENT", "tariff-digest/1.0")

	cfg.TelegramToken = getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = getenv("TELEGRAM_CHAT_ID")

	cfg.CronSpecDaily = getenvDefault(getenv, "CRON_SPEC_DAILY", "0 7 * * *") // 07:00 every day

	cfg.LogLevel = strings.ToLower(getenvDefault(getenv, "LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getenvDefault(getenv, "ENVIRONMENT", "development"))

	return cfg, nil
}

// TelegramCredentials validates and returns the notification credentials.
func (c *AppConfig) TelegramCredentials() (string, int64, error) {
	if c.TelegramToken == "" {
		return "", 0, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}
	if c.TelegramChatID == "" {
		return "", 0, fmt.Errorf("TELEGRAM_CHAT_ID is not set")
	}
	chatID, err := strconv.ParseInt(c.TelegramChatID, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}
	return c.TelegramToken, chatID, nil
}

func getenvDefault(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(getenv func(string) string, key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
