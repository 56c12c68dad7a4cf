package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int

	MarketplaceURL string
	ChromeBin      string
	UserDataDir    string
	Headless       bool
	FrameMs        int

	CSVOutputPath      string
	AnalysisConfigPath string
	LogLevel           string

	Analysis Analysis
}

// Load reads the .env file and returns a populated Config struct. Analysis
// options start from DefaultAnalysis, then the YAML file named by
// analysisPath (or ANALYSIS_CONFIG when empty), then individual env
// overrides.
func Load(analysisPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "analyzer"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "analyzer"),
		PostgresDB:       getEnv("POSTGRES_DB", "marketplace"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 2),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 1500),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		MarketplaceURL: strings.TrimRight(getEnv("MARKETPLACE_URL", "https://www.facebook.com/marketplace"), "/"),
		ChromeBin:      getEnv("CHROME_BIN", ""),
		UserDataDir:    getEnv("CHROME_USER_DATA_DIR", ""),
		Headless:       getEnvBool("HEADLESS", false),
		FrameMs:        getEnvInt("FRAME_MS", 16),

		CSVOutputPath:      getEnv("CSV_OUTPUT_PATH", "./output/listings.csv"),
		AnalysisConfigPath: getEnv("ANALYSIS_CONFIG", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if analysisPath != "" {
		cfg.AnalysisConfigPath = analysisPath
	}

	analysis := DefaultAnalysis()
	if cfg.AnalysisConfigPath != "" {
		loaded, err := LoadAnalysisFile(cfg.AnalysisConfigPath)
		if err != nil {
			return nil, err
		}
		analysis = loaded
	}
	applyAnalysisEnv(&analysis)
	analysis.Normalize()
	cfg.Analysis = analysis

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// SearchURL returns the marketplace search page for a keyword.
func (c *Config) SearchURL(keyword string) string {
	return c.MarketplaceURL + "/search/?query=" + url.QueryEscape(strings.TrimSpace(keyword))
}

func applyAnalysisEnv(a *Analysis) {
	a.MinPriceForAnalysis = getEnvFloat("MIN_PRICE_FOR_ANALYSIS", a.MinPriceForAnalysis)
	a.RobustZGood = getEnvFloat("ROBUST_Z_GOOD", a.RobustZGood)
	a.RobustZBad = getEnvFloat("ROBUST_Z_BAD", a.RobustZBad)
	a.MinSampleSize = getEnvInt("MIN_SAMPLE_SIZE", a.MinSampleSize)
	a.VehicleMultiplierCap = getEnvFloat("VEHICLE_MULTIPLIER_CAP", a.VehicleMultiplierCap)
	if kw := getEnv("SCAM_KEYWORDS", ""); kw != "" {
		a.ScamKeywords = splitList(kw)
	}
	a.CategoryThresholds.Car = getEnvFloat("THRESHOLD_CAR", a.CategoryThresholds.Car)
	a.CategoryThresholds.Electronics = getEnvFloat("THRESHOLD_ELECTRONICS", a.CategoryThresholds.Electronics)
	a.CategoryThresholds.Property = getEnvFloat("THRESHOLD_PROPERTY", a.CategoryThresholds.Property)
	a.CategoryThresholds.General = getEnvFloat("THRESHOLD_GENERAL", a.CategoryThresholds.General)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToLower(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
