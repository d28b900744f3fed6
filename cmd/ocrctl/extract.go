package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"doc-study-server/internal/domain"
	"doc-study-server/internal/ocr"
)

type ExtractCommand struct {
	ProviderFlags

	File              string        `arg:"" type:"existingfile" help:"PNG, JPEG or PDF file to read."`
	Language          string        `help:"Language hint sent to the provider." env:"OCR_LANGUAGE" default:"en"`
	DetectOrientation bool          `help:"Ask the provider to correct page rotation." default:"true" negatable:""`
	PollInterval      time.Duration `help:"Delay between status queries." env:"OCR_POLL_INTERVAL" default:"1s"`
	MaxAttempts       int           `help:"Maximum number of status queries." env:"OCR_MAX_POLL_ATTEMPTS" default:"60"`
	JSON              bool          `help:"Print the lines and page count as JSON."`
}

func (c ExtractCommand) Run(ctx context.Context) error {
	kind, ok := domain.KindFromFilename(c.File)
	if !ok {
		return fmt.Errorf("unsupported file type %q", filepath.Ext(c.File))
	}
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("read %s: %w", c.File, err)
	}

	poller, log := c.poller(ocr.Config{
		Language:          c.Language,
		DetectOrientation: c.DetectOrientation,
		PollInterval:      c.PollInterval,
		MaxAttempts:       c.MaxAttempts,
	})

	doc := &domain.Document{Filename: filepath.Base(c.File), Kind: kind, Data: data}
	start := time.Now()
	result, err := poller.ExtractResult(ctx, doc)
	if err != nil {
		return err
	}
	log.Info("Extraction finished", "file", c.File, "lines", len(result.Lines), "duration_ms", time.Since(start).Milliseconds())

	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	fmt.Println(result.Text())
	return nil
}
