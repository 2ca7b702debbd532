package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string

	// Remote learning platform
	CourseID           string `validate:"required"`
	StepikBaseURL      string `validate:"required,url"`
	StepikClientID     string `validate:"required"`
	StepikClientSecret string `validate:"required"`
	RequestTimeout     time.Duration
	RequestsPerSecond  float64

	// Spreadsheet
	WorkbookPath    string `validate:"required"`
	SheetName       string `validate:"required"`
	HeaderRow       int    `validate:"min=1"`
	CodeStartCol    int    `validate:"min=1"`
	StudentCol      int    `validate:"min=1"`
	StudentStartRow int    `validate:"min=1"`

	// Scheduling
	SyncCron string `validate:"required"`

	// Optional collaborators; empty disables the integration
	DatabaseURL string
	RedisURL    string

	Events EventConfig
}

func LoadConfig() (*Config, error) {
	// A missing .env is fine in deployed environments
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		CourseID:           getEnv("COURSE_ID", ""),
		StepikBaseURL:      getEnv("STEPIK_BASE_URL", "https://stepik.org"),
		StepikClientID:     getEnv("STEPIK_CLIENT_ID", ""),
		StepikClientSecret: getEnv("STEPIK_CLIENT_SECRET", ""),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		RequestsPerSecond:  getEnvFloat("REQUESTS_PER_SECOND", 10),

		WorkbookPath:    getEnv("WORKBOOK_PATH", "course_tracking.xlsx"),
		SheetName:       getEnv("SHEET_NAME", "Sheet1"),
		HeaderRow:       getEnvInt("HEADER_ROW", 5),
		CodeStartCol:    getEnvInt("CODE_START_COL", 3),
		StudentCol:      getEnvInt("STUDENT_COL", 2),
		StudentStartRow: getEnvInt("STUDENT_START_ROW", 6),

		SyncCron: getEnv("SYNC_CRON", "*/5 * * * *"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		Events: EventConfig{
			Enabled:      getEnvBool("EVENTS_ENABLED", false),
			Publisher:    getEnv("EVENTS_PUBLISHER", "kafka"),
			KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
			SyncTopic:    getEnv("SYNC_TOPIC", "course-sync"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// String renders the config for startup logging with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("course=%s base_url=%s workbook=%s sheet=%s cron=%q env=%s",
		c.CourseID, c.StepikBaseURL, c.WorkbookPath, c.SheetName, c.SyncCron, c.Environment)
}
