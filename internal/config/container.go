package config

import (
	"context"
	"errors"
	"fmt"

	"doc-study-server/internal/domain"
	"doc-study-server/internal/llm"
	"doc-study-server/internal/ocr"
	"doc-study-server/internal/repository"
	"doc-study-server/internal/service"
	"doc-study-server/internal/translate"
	"doc-study-server/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config             domain.Config
	Logger             domain.Logger
	Poller             *ocr.Poller
	LanguageModel      domain.LanguageModel
	Translator         domain.Translator
	AnalysisRepository domain.AnalysisRepository
	DocumentArchive    domain.DocumentArchive
	StudyService       *service.StudyService

	closers []func() error
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context) (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel())

	c := &Container{
		Config: config,
		Logger: appLogger,
	}

	ocrSettings := config.GetOCRSettings()
	c.Poller = ocr.NewPoller(ocr.Config{
		Endpoint:          ocrSettings.Endpoint,
		Key:               ocrSettings.Key,
		Language:          ocrSettings.Language,
		DetectOrientation: true,
		PollInterval:      ocrSettings.PollInterval,
		MaxAttempts:       ocrSettings.MaxAttempts,
	}, appLogger)
	if !c.Poller.Configured() {
		appLogger.Warn("Azure OCR endpoint or key not set; uploads will fail until configured")
	}

	model, err := llm.New(ctx, config.GetLLMSettings(), appLogger)
	if err != nil {
		return nil, fmt.Errorf("init language model: %w", err)
	}
	if closer, ok := model.(interface{ Close() error }); ok {
		c.closers = append(c.closers, closer.Close)
	}
	c.LanguageModel = model

	c.Translator = translate.NewAzureTranslator(config.GetTranslatorSettings(), appLogger)

	if err := c.initStorage(); err != nil {
		c.Close()
		return nil, err
	}

	c.StudyService = service.NewStudyService(service.StudyDeps{
		Extractor:      c.Poller,
		PDFReader:      service.NewPDFProcessor(appLogger),
		Model:          c.LanguageModel,
		Translator:     c.Translator,
		Repository:     c.AnalysisRepository,
		Archive:        c.DocumentArchive,
		TargetLanguage: config.GetTranslatorSettings().TargetLanguage,
		MaxFileSize:    config.GetMaxFileSize(),
	}, appLogger)

	return c, nil
}

// initStorage prefers Supabase when it is configured and reachable, and
// otherwise uses SQLite with uploads archived on local disk.
func (c *Container) initStorage() error {
	if c.Config.GetSupabaseURL() != "" {
		supabaseClient := repository.NewSupabaseClient(c.Config, c.Logger)
		if err := supabaseClient.Initialize(); err != nil {
			c.Logger.Error("Supabase unavailable, falling back to SQLite", err)
		} else {
			c.AnalysisRepository = repository.NewSupabaseAnalysisRepository(supabaseClient, c.Logger)
			c.DocumentArchive = service.NewStorageService(
				c.Config.GetSupabaseURL(),
				c.Config.GetSupabaseKey(),
				c.Config.GetSupabaseBucket(),
			)
			return nil
		}
	}

	repo, err := repository.OpenSQLite(c.Config.GetDatabasePath(), c.Logger)
	if err != nil {
		return fmt.Errorf("init analysis store: %w", err)
	}
	c.closers = append(c.closers, repo.Close)
	c.AnalysisRepository = repo
	c.DocumentArchive = service.NewLocalStorage(c.Config.GetUploadPath())
	return nil
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
