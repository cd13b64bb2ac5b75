package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr              string
	DatabaseURL       string
	JWTSecret         string
	Environment       string
	SessionTTL        time.Duration
	AuthSpreadsheetID string
	KpiSpreadsheetID  string
	AuthMasterSheet   string
	KpiMasterSheet    string
	DataSheet         string
	RecordsSheet      string
	DashboardSheet    string
	ScriptURL         string
	AvatarServiceURL  string
	ChartServiceURL   string
	WriterQueueSize   int
	RunMigrations     bool
	MetricsEnabled    bool
}

func Load() Config {
	return Config{
		Addr:              getEnv("APP_ADDR", ":8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		Environment:       getEnv("APP_ENV", "development"),
		SessionTTL:        getEnvDuration("SESSION_TTL", 8*time.Hour),
		AuthSpreadsheetID: getEnv("AUTH_SPREADSHEET_ID", ""),
		KpiSpreadsheetID:  getEnv("KPI_SPREADSHEET_ID", ""),
		AuthMasterSheet:   getEnv("AUTH_MASTER_SHEET", "Master"),
		KpiMasterSheet:    getEnv("KPI_MASTER_SHEET", "Master"),
		DataSheet:         getEnv("DATA_SHEET", "Data"),
		RecordsSheet:      getEnv("RECORDS_SHEET", "For Records"),
		DashboardSheet:    getEnv("DASHBOARD_SHEET", "Dashboard"),
		ScriptURL:         getEnv("SCRIPT_URL", ""),
		AvatarServiceURL:  getEnv("AVATAR_SERVICE_URL", "https://ui-avatars.com/api/"),
		ChartServiceURL:   getEnv("CHART_SERVICE_URL", "https://quickchart.io/chart"),
		WriterQueueSize:   getEnvInt("WRITER_QUEUE_SIZE", 128),
		RunMigrations:     getEnvBool("RUN_MIGRATIONS", true),
		MetricsEnabled:    getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.AuthSpreadsheetID) == "" {
		return fmt.Errorf("AUTH_SPREADSHEET_ID is required")
	}
	if strings.TrimSpace(c.KpiSpreadsheetID) == "" {
		return fmt.Errorf("KPI_SPREADSHEET_ID is required")
	}
	if strings.TrimSpace(c.ScriptURL) == "" {
		return fmt.Errorf("SCRIPT_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.WriterQueueSize <= 0 {
		return fmt.Errorf("WRITER_QUEUE_SIZE must be positive")
	}
	return nil
}
