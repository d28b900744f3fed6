package domain

import "time"

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// OCRSettings configures the Azure Read API poller.
type OCRSettings struct {
	Endpoint     string
	Key          string
	Language     string
	PollInterval time.Duration
	MaxAttempts  int
}

// LLMSettings configures the language model provider.
type LLMSettings struct {
	Provider string // "azure" or "vertex"

	AzureEndpoint   string
	AzureKey        string
	AzureDeployment string
	AzureAPIVersion string

	GCPProjectID string
	GCPLocation  string
	VertexModel  string
}

// TranslatorSettings configures the Azure Translator client.
type TranslatorSettings struct {
	Endpoint       string
	Key            string
	Region         string
	TargetLanguage string
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetDatabasePath() string
	GetStaticDir() string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseBucket() string
	GetOCRSettings() OCRSettings
	GetLLMSettings() LLMSettings
	GetTranslatorSettings() TranslatorSettings
}
