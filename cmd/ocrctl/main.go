package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"doc-study-server/internal/domain"
	"doc-study-server/internal/ocr"
	"doc-study-server/pkg/logger"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

type CLI struct {
	Extract ExtractCommand `cmd:"extract" help:"Submit a document for OCR and print the recognized text."`
	Status  StatusCommand  `cmd:"status" help:"Query the status of an OCR operation once."`
}

// ProviderFlags are shared by every command that talks to the Read API.
type ProviderFlags struct {
	Endpoint string        `help:"Azure Computer Vision endpoint." env:"AZURE_OCR_ENDPOINT" required:""`
	Key      string        `help:"Azure Computer Vision subscription key." env:"AZURE_OCR_KEY" required:""`
	Timeout  time.Duration `help:"Per-request HTTP timeout." default:"30s"`
	LogLevel string        `help:"The log level to use." env:"LOG_LEVEL" default:"warn"`
}

func (f ProviderFlags) poller(cfg ocr.Config) (*ocr.Poller, domain.Logger) {
	log := logger.NewLoggerWithWriter(os.Stderr, f.LogLevel)
	cfg.Endpoint = f.Endpoint
	cfg.Key = f.Key
	cfg.Timeout = f.Timeout
	return ocr.NewPoller(cfg, log), log
}

func main() {
	// A missing .env file is fine for the CLI.
	_ = godotenv.Load()

	var cli CLI
	ctx := context.Background()
	kctx := kong.Parse(&cli,
		kong.Name("ocrctl"),
		kong.Description("Run documents through the Azure Read API."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err := kctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ocrctl: %v\n", err)
		os.Exit(1)
	}
}
