package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Telegram TelegramConfig
	Ticket   TicketConfig
	Ops      OpsConfig
}

// AppConfig controls process level behavior.
type AppConfig struct {
	Name string
	Env  string
	Host string
	Port string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// TelegramConfig holds chat platform settings.
type TelegramConfig struct {
	Token string
	// AdminChatID is the management group receiving forwarded messages
	// and hosting per-ticket support topics.
	AdminChatID int64
	// SupportCategory names the forum-topic prefix for ticket channels.
	SupportCategory string
	PollTimeoutSec  int
}

// TicketConfig holds the timing constants of the ticket lifecycle.
type TicketConfig struct {
	InactivityThreshold time.Duration
	PollInterval        time.Duration
	DeletionDelay       time.Duration
	SelectionWindow     time.Duration
}

// OpsConfig defines the operator API parameters.
type OpsConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
	// Operators hold the management capability for actions taken through
	// the ops API, independent of chat platform roles.
	Operators []string
	// PrintBootstrapToken logs a signed management token at startup.
	PrintBootstrapToken bool
}

// Load reads configuration from environment variables, applying defaults
// where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	adminChatID, err := strconv.ParseInt(getEnv("TELEGRAM_ADMIN_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ADMIN_CHAT_ID: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "support-bot"),
			Env:  getEnv("APP_ENV", "development"),
			Host: getEnv("APP_HOST", "0.0.0.0"),
			Port: getEnv("APP_PORT", "8080"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Telegram: TelegramConfig{
			Token:           os.Getenv("TELEGRAM_TOKEN"),
			AdminChatID:     adminChatID,
			SupportCategory: getEnv("TELEGRAM_SUPPORT_CATEGORY", "ticket"),
			PollTimeoutSec:  getEnvAsInt("TELEGRAM_POLL_TIMEOUT_SECONDS", 15),
		},
		Ticket: TicketConfig{
			InactivityThreshold: minutes(getEnvAsInt("TICKET_INACTIVITY_MINUTES", 15)),
			PollInterval:        time.Duration(getEnvAsInt("TICKET_POLL_SECONDS", 60)) * time.Second,
			DeletionDelay:       minutes(getEnvAsInt("TICKET_DELETION_DELAY_MINUTES", 5)),
			SelectionWindow:     minutes(getEnvAsInt("TOPIC_SELECTION_WINDOW_MINUTES", 15)),
		},
		Ops: OpsConfig{
			JWTSecret:           getEnv("OPS_JWT_SECRET", "dev-secret"),
			TokenTTLMinutes:     getEnvAsInt("OPS_TOKEN_TTL_MINUTES", 60),
			Operators:           splitList(os.Getenv("OPS_OPERATORS")),
			PrintBootstrapToken: getEnvAsBool("OPS_PRINT_BOOTSTRAP_TOKEN", false),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
