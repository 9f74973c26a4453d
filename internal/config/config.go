package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Lookup modes
const (
	LookupDemo    = "demo"
	LookupRemote  = "remote"
	LookupScraper = "scraper"
)

// Storage backends
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Host string
	Port string

	// Database settings
	DatabasePath string

	// Logging settings
	LogLevel  string
	LogFormat string

	// Cache settings
	CacheSize int
	CacheTTL  time.Duration

	// Court settings
	CourtBaseURL string
	CourtName    string

	// Lookup backend settings
	LookupMode           string
	LookupURL            string
	SimulatedLatency     time.Duration
	SimulatedFailureRate float64

	// Scraper settings
	ScraperTimeout  time.Duration
	HeadlessMode    bool
	UserAgent       string
	BrowserPath     string
	TwoCaptchaKey   string
	CaptchaDir      string
	DownloadTimeout time.Duration

	// Storage and session settings
	StorageBackend string
	RedisURL       string
	SessionTTL     time.Duration
	HistoryLimit   int

	// Concurrency settings
	MaxConcurrentScrapes int

	// API settings
	APIRateLimit  int
	APIRateWindow time.Duration
	CORSOrigins   []string
	SecureCookies bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not an error if .env doesn't exist
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg := &Config{
		Host:           getEnv("HOST", "0.0.0.0"),
		Port:           getEnv("PORT", "8080"),
		DatabasePath:   getEnv("DATABASE_PATH", "./data/court_cases.db"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		CourtBaseURL:   getEnv("COURT_BASE_URL", "https://delhihighcourt.nic.in"),
		CourtName:      getEnv("COURT_NAME", "Delhi High Court"),
		LookupMode:     getEnv("LOOKUP_MODE", LookupDemo),
		LookupURL:      getEnv("LOOKUP_URL", ""),
		UserAgent:      getEnv("USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"),
		BrowserPath:    getEnv("ROD_BROWSER_PATH", ""),
		TwoCaptchaKey:  getEnv("TWOCAPTCHA_API_KEY", ""),
		CaptchaDir:     getEnv("CAPTCHA_DIR", "./data/captchas"),
		StorageBackend: getEnv("STORAGE_BACKEND", StorageSQLite),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
	}

	// Parse integer values
	var err error
	cfg.CacheSize, err = strconv.Atoi(getEnv("CACHE_SIZE", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_SIZE: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("CACHE_TTL", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = time.Duration(cacheTTL) * time.Minute

	latency, err := strconv.Atoi(getEnv("SIMULATED_LATENCY_MS", "2000"))
	if err != nil {
		return nil, fmt.Errorf("invalid SIMULATED_LATENCY_MS: %w", err)
	}
	cfg.SimulatedLatency = time.Duration(latency) * time.Millisecond

	cfg.SimulatedFailureRate, err = strconv.ParseFloat(getEnv("SIMULATED_FAILURE_RATE", "0.2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SIMULATED_FAILURE_RATE: %w", err)
	}
	if cfg.SimulatedFailureRate < 0 || cfg.SimulatedFailureRate > 1 {
		return nil, fmt.Errorf("invalid SIMULATED_FAILURE_RATE: %v not in [0,1]", cfg.SimulatedFailureRate)
	}

	scraperTimeout, err := strconv.Atoi(getEnv("SCRAPER_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCRAPER_TIMEOUT: %w", err)
	}
	cfg.ScraperTimeout = time.Duration(scraperTimeout) * time.Second

	downloadTimeout, err := strconv.Atoi(getEnv("DOWNLOAD_TIMEOUT", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_TIMEOUT: %w", err)
	}
	cfg.DownloadTimeout = time.Duration(downloadTimeout) * time.Second

	cfg.HeadlessMode = getEnv("HEADLESS_MODE", "true") == "true"
	cfg.SecureCookies = getEnv("SECURE_COOKIES", "false") == "true"
	cfg.CORSOrigins = splitCSV(getEnv("CORS_ORIGINS", "*"))

	sessionTTL, err := strconv.Atoi(getEnv("SESSION_TTL", "1440"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = time.Duration(sessionTTL) * time.Minute

	cfg.HistoryLimit, err = strconv.Atoi(getEnv("HISTORY_LIMIT", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_LIMIT: %w", err)
	}

	cfg.MaxConcurrentScrapes, err = strconv.Atoi(getEnv("MAX_CONCURRENT_SCRAPES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_CONCURRENT_SCRAPES: %w", err)
	}

	cfg.APIRateLimit, err = strconv.Atoi(getEnv("API_RATE_LIMIT", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_RATE_LIMIT: %w", err)
	}

	apiRateWindow, err := strconv.Atoi(getEnv("API_RATE_WINDOW", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_RATE_WINDOW: %w", err)
	}
	cfg.APIRateWindow = time.Duration(apiRateWindow) * time.Second

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LookupMode {
	case LookupDemo, LookupScraper:
	case LookupRemote:
		if c.LookupURL == "" {
			return fmt.Errorf("LOOKUP_URL is required when LOOKUP_MODE=%s", LookupRemote)
		}
	default:
		return fmt.Errorf("invalid LOOKUP_MODE: %q", c.LookupMode)
	}

	switch c.StorageBackend {
	case StorageMemory, StorageSQLite, StorageRedis:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND: %q", c.StorageBackend)
	}

	if c.HistoryLimit <= 0 {
		return fmt.Errorf("invalid HISTORY_LIMIT: must be positive")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
