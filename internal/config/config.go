package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	OutputDir string

	StoreURLs     []string
	UserAgent     string
	HTTPTimeoutMs int
	RateLimitRPS  int

	CardSelector          string
	TitleSelector         string
	PriceSelector         string
	ImageSelector         string
	SpecSelector          string
	SpecContainerSelector string
	BrandSelector         string
	BreadcrumbSelector    string

	SheetsClientID      string
	SheetsClientSecret  string
	SheetsRedirectURI   string
	SheetsRefreshToken  string
	SheetsSpreadsheetID string
	SheetsTab           string

	WatchIntervalSec int
	WatchAutoPush    bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "app.db")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),

		StoreURLs:     getEnvList("STORE_URLS"),
		UserAgent:     getEnv("HTTP_USER_AGENT", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"),
		HTTPTimeoutMs: getEnvInt("HTTP_TIMEOUT_MS", 30000),
		RateLimitRPS:  getEnvInt("HTTP_RATE_LIMIT_RPS", 2),

		CardSelector:          getEnv("SELECTOR_CARD", ".product-card, .product-item, li.product"),
		TitleSelector:         getEnv("SELECTOR_TITLE", ".product-title, .card-title, h3"),
		PriceSelector:         getEnv("SELECTOR_PRICE", ".price"),
		ImageSelector:         getEnv("SELECTOR_IMAGE", "img"),
		SpecSelector:          getEnv("SELECTOR_SPEC", ".product-specs li, .specs li, .description li"),
		SpecContainerSelector: getEnv("SELECTOR_SPEC_CONTAINER", ".product-specs, .specs, .description"),
		BrandSelector:         getEnv("SELECTOR_BRAND", ".brand"),
		BreadcrumbSelector:    getEnv("SELECTOR_BREADCRUMB", ".breadcrumb li, nav.breadcrumbs a"),

		SheetsClientID:      getEnv("SHEETS_CLIENT_ID", ""),
		SheetsClientSecret:  getEnv("SHEETS_CLIENT_SECRET", ""),
		SheetsRedirectURI:   getEnv("SHEETS_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		SheetsRefreshToken:  getEnv("SHEETS_REFRESH_TOKEN", ""),
		SheetsSpreadsheetID: getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsTab:           getEnv("SHEETS_TAB", "Sheet1"),

		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 900),
		WatchAutoPush:    getEnvBool("WATCH_AUTO_PUSH", false),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}

func getEnvList(key string) []string {
	value := getEnv(key, "")
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
