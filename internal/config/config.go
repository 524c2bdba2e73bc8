package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	DBDSN       string
	StaticDir   string
	TemplateDir string
	LogFile     string

	GeminiAPIKey     string
	GeminiModel      string
	AssistantTimeout time.Duration

	// Empty AMQPURL keeps orders local (acknowledged in-process).
	AMQPURL            string
	OrderSubmitRetries int

	SessionTTL      time.Duration
	SessionCapacity int
}

func Load() Config {
	return Config{
		Port:        getenv("PORT", "8080"),
		DBDSN:       getenv("DB_DSN", ":memory:"), // catalog lives for the process unless pointed at a file
		StaticDir:   getenv("STATIC_DIR", "./web/static"),
		TemplateDir: getenv("TEMPLATE_DIR", "./web/templates"),
		LogFile:     os.Getenv("LOG_FILE"),

		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		AssistantTimeout: parseDuration(os.Getenv("ASSISTANT_TIMEOUT"), 30*time.Second),

		AMQPURL:            os.Getenv("AMQP_URL"),
		OrderSubmitRetries: parseInt(os.Getenv("ORDER_SUBMIT_RETRIES"), 3),

		SessionTTL:      parseDuration(os.Getenv("SESSION_TTL"), 2*time.Hour),
		SessionCapacity: parseInt(os.Getenv("SESSION_CAPACITY"), 10000),
	}
}

// Fields is the loggable view of the config; secrets are reduced to presence flags.
func (c Config) Fields() map[string]any {
	return map[string]any{
		"port":              c.Port,
		"db_dsn":            c.DBDSN,
		"static_dir":        c.StaticDir,
		"template_dir":      c.TemplateDir,
		"log_file":          c.LogFile,
		"gemini_model":      c.GeminiModel,
		"gemini_configured": c.GeminiAPIKey != "",
		"amqp_configured":   c.AMQPURL != "",
		"session_ttl":       c.SessionTTL.String(),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func parseInt(v string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return def
	}
	return n
}
