package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// Inbound API authentication
	APIKey string

	// Final-intelligence callback
	CallbackURL         string
	CallbackTimeout     time.Duration // per delivery attempt
	CallbackDeadline    time.Duration // aggregate across attempts
	CallbackMaxAttempts int
	CallbackBackoffBase time.Duration
	CallbackMinMessages int

	// Decision fusion
	MLScamThreshold float64

	// Extra suspicious-phrase vocabulary beyond the rule engine's triggers
	SuspiciousTerms []string

	// Session + history storage
	SessionBackend  string // "memory" or "redis"
	HistoryBackend  string // "memory", "file" or "redis"
	HistoryFilePath string
	SessionTTL      time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisTLS        bool

	// ML classifier service (optional)
	ClassifierURL     string
	ClassifierTimeout time.Duration

	// Reply generation (optional)
	OpenAIAPIKey string
	ChatModel    string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		APIKey: getEnv("HONEYPOT_API_KEY", ""),

		CallbackURL:         getEnv("CALLBACK_URL", "https://hackathon.guvi.in/api/updateHoneyPotFinalResult"),
		CallbackTimeout:     getEnvAsDuration("CALLBACK_TIMEOUT", 5*time.Second),
		CallbackDeadline:    getEnvAsDuration("CALLBACK_DEADLINE", 20*time.Second),
		CallbackMaxAttempts: getEnvAsInt("CALLBACK_MAX_ATTEMPTS", 3),
		CallbackBackoffBase: getEnvAsDuration("CALLBACK_BACKOFF_BASE", time.Second),
		CallbackMinMessages: getEnvAsInt("CALLBACK_MIN_MESSAGES", 3),

		MLScamThreshold: getEnvAsFloat("ML_SCAM_THRESHOLD", 0.70),

		SuspiciousTerms: getEnvAsList("SUSPICIOUS_TERMS", []string{"otp", "kyc", "click link", "bank update"}),

		SessionBackend:  strings.ToLower(getEnv("SESSION_BACKEND", "memory")),
		HistoryBackend:  strings.ToLower(getEnv("HISTORY_BACKEND", "memory")),
		HistoryFilePath: getEnv("HISTORY_FILE_PATH", "data/conversation_store.json"),
		SessionTTL:      getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		RedisAddr:       getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisTLS:        getEnvAsBool("REDIS_TLS", false),

		ClassifierURL:     getEnv("CLASSIFIER_URL", ""),
		ClassifierTimeout: getEnvAsDuration("CLASSIFIER_TIMEOUT", 3*time.Second),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		ChatModel:    getEnv("HONEYPOT_CHAT_MODEL", "gpt-4o-mini"),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated environment variable, trimming blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
