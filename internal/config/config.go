package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	defaultGeminiModel  = "gemini-2.0-flash"
	defaultOpenAIModel  = "gpt-4o-mini"
	defaultTranslateURL = "http://localhost:5000"
	defaultSTTURL       = "http://localhost:8000/transcribe"
	defaultStorePath    = "patient_records.json"
	defaultTimeout      = 60 * time.Second
	defaultLogLevel     = "warn"
	defaultEnvFile      = ".env"
)

// Config holds everything the assistant reads from the environment.
// Optional integrations are disabled when their address is empty.
type Config struct {
	Provider      string
	GeminiAPIKey  string
	GeminiModel   string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	TranslateURL    string
	TranslateAPIKey string
	STTURL          string

	StorePath     string
	LanguagesFile string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	KafkaBroker   string

	SentryDSN   string
	Environment string
	MetricsAddr string

	ReportDir      string
	ReportFontPath string
	TelegramToken  string
	DoctorChatID   int64

	BackendTimeout time.Duration
	LogLevel       string
}

// Load reads the optional .env file and then the process environment.
// Variables already present in the environment win over the file.
func Load() (Config, error) {
	envFile := getEnv("VIRTUAL_DOCTOR_ENV", defaultEnvFile)
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := Config{
		Provider:        strings.ToLower(getEnv("GENERATIVE_PROVIDER", ProviderGemini)),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", defaultGeminiModel),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getEnv("OPENAI_MODEL", defaultOpenAIModel),
		OpenAIBaseURL:   os.Getenv("OPENAI_BASE_URL"),
		TranslateURL:    strings.TrimRight(getEnv("TRANSLATE_URL", defaultTranslateURL), "/"),
		TranslateAPIKey: os.Getenv("TRANSLATE_API_KEY"),
		STTURL:          getEnv("STT_URL", defaultSTTURL),
		StorePath:       getEnv("PATIENT_STORE_PATH", defaultStorePath),
		LanguagesFile:   os.Getenv("LANGUAGES_FILE"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		KafkaBroker:     os.Getenv("KAFKA_BROKER"),
		SentryDSN:       os.Getenv("SENTRY_DSN"),
		Environment:     getEnv("APP_ENV", "development"),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		ReportDir:       os.Getenv("REPORT_DIR"),
		ReportFontPath:  os.Getenv("REPORT_FONT_PATH"),
		TelegramToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		BackendTimeout:  defaultTimeout,
		LogLevel:        getEnv("APP_LOG_LEVEL", defaultLogLevel),
	}

	if raw := os.Getenv("BACKEND_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BACKEND_TIMEOUT %q: %w", raw, err)
		}
		cfg.BackendTimeout = d
	}

	if raw := os.Getenv("DOCTOR_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DOCTOR_CHAT_ID %q: %w", raw, err)
		}
		cfg.DoctorChatID = id
	}

	return cfg, nil
}

// Validate rejects configurations the assistant cannot start with.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown GENERATIVE_PROVIDER %q", c.Provider)
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive, got %s", c.BackendTimeout)
	}
	if c.StorePath == "" {
		return errors.New("PATIENT_STORE_PATH must not be empty")
	}
	return nil
}

// ReportsEnabled reports whether a session PDF should be produced.
func (c Config) ReportsEnabled() bool {
	return c.ReportDir != "" || (c.TelegramToken != "" && c.DoctorChatID != 0)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
