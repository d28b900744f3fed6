package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"doc-study-server/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort     string
	UploadPath     string
	MaxFileSize    int64
	LogLevel       string
	DatabasePath   string
	StaticDir      string
	SupabaseURL    string
	SupabaseKey    string
	SupabaseBucket string
	OCR            domain.OCRSettings
	LLM            domain.LLMSettings
	Translator     domain.TranslatorSettings
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:     getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "5000")),
		UploadPath:     getEnvOrDefault("UPLOAD_PATH", "./uploads"),
		MaxFileSize:    getEnvInt64OrDefault("MAX_FILE_SIZE", 16*1024*1024), // 16MB default
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		DatabasePath:   getEnvOrDefault("DATABASE_PATH", "./data/analyses.db"),
		StaticDir:      getEnvOrDefault("STATIC_DIR", ""),
		SupabaseURL:    getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:    getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		SupabaseBucket: getEnvOrDefault("SUPABASE_BUCKET", "uploads"),
		OCR: domain.OCRSettings{
			Endpoint:     strings.TrimRight(getEnvOrDefault("AZURE_OCR_ENDPOINT", ""), "/"),
			Key:          getEnvOrDefault("AZURE_OCR_KEY", ""),
			Language:     getEnvOrDefault("OCR_LANGUAGE", "en"),
			PollInterval: getEnvDurationOrDefault("OCR_POLL_INTERVAL", time.Second),
			MaxAttempts:  getEnvIntOrDefault("OCR_MAX_POLL_ATTEMPTS", 60),
		},
		LLM: domain.LLMSettings{
			Provider:        strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "azure")),
			AzureEndpoint:   getEnvOrDefault("AZURE_OPENAI_ENDPOINT", ""),
			AzureKey:        getEnvOrDefault("AZURE_OPENAI_API_KEY", ""),
			AzureDeployment: getEnvOrDefault("AZURE_OPENAI_DEPLOYMENT", ""),
			AzureAPIVersion: getEnvOrDefault("AZURE_OPENAI_API_VERSION", "2023-05-15"),
			GCPProjectID:    getEnvOrDefault("GCP_PROJECT_ID", ""),
			GCPLocation:     getEnvOrDefault("GCP_LOCATION", "us-central1"),
			VertexModel:     getEnvOrDefault("VERTEX_MODEL", "gemini-2.0-flash-001"),
		},
		Translator: domain.TranslatorSettings{
			Endpoint:       getEnvOrDefault("AZURE_TRANSLATOR_ENDPOINT", "https://api.cognitive.microsofttranslator.com"),
			Key:            getEnvOrDefault("AZURE_TRANSLATOR_KEY", ""),
			Region:         getEnvOrDefault("AZURE_TRANSLATOR_REGION", ""),
			TargetLanguage: getEnvOrDefault("TRANSLATE_TARGET", "ur"),
		},
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetUploadPath returns the upload directory path
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetMaxFileSize returns the maximum allowed file size
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetDatabasePath returns the SQLite database path
func (c *AppConfig) GetDatabasePath() string {
	return c.DatabasePath
}

// GetStaticDir returns the directory served at /, empty to disable
func (c *AppConfig) GetStaticDir() string {
	return c.StaticDir
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetSupabaseBucket returns the storage bucket for original uploads
func (c *AppConfig) GetSupabaseBucket() string {
	return c.SupabaseBucket
}

func (c *AppConfig) GetOCRSettings() domain.OCRSettings {
	return c.OCR
}

func (c *AppConfig) GetLLMSettings() domain.LLMSettings {
	return c.LLM
}

func (c *AppConfig) GetTranslatorSettings() domain.TranslatorSettings {
	return c.Translator
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

// getEnvDurationOrDefault accepts Go durations ("1500ms") or whole seconds ("2").
func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
