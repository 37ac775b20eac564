package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process-level environment. Per-site scrape settings live in
// pkg/sites; this only carries what varies between deployments.
type Config struct {
	MongoURI   string
	MongoDB    string
	RateAPIURL string
	RunlogPath string
	LogLevel   string

	WriteDelay    time.Duration
	NavTimeout    time.Duration
	NavMaxRetries int
	Stealth       bool
	UpdateOnly    bool
}

// Load reads .env if present, then the environment, with defaults suitable
// for a local run against a local mongod.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getenv("MONGO_DB", "kompare"),
		RateAPIURL:    getenv("RATE_API_URL", "https://api.exchangerate.host/latest?base=USD&symbols=TRY"),
		RunlogPath:    getenv("RUNLOG_DB_PATH", "./runs.db"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		WriteDelay:    getduration("WRITE_DELAY_MS", 300*time.Millisecond),
		NavTimeout:    getduration("NAV_TIMEOUT_MS", 45*time.Second),
		NavMaxRetries: getint("NAV_MAX_RETRIES", 2),
		Stealth:       getbool("STEALTH", false),
		UpdateOnly:    getbool("UPDATE_ONLY", false),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getint(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return time.Duration(parsed) * time.Millisecond
		}
	}
	return fallback
}
