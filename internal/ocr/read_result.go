package ocr

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"doc-study-server/internal/domain"
)

// Read API (v3.2) payload returned by GET Operation-Location.
type readOperationResponse struct {
	Status        string         `json:"status"`
	AnalyzeResult *analyzeResult `json:"analyzeResult"`
}

type analyzeResult struct {
	ReadResults []readResult `json:"readResults"`
}

type readResult struct {
	Page  int        `json:"page"`
	Lines []readLine `json:"lines"`
}

type readLine struct {
	Text string `json:"text"`
}

// Synchronous OCR payload returned inline with 200 OK.
type ocrResponse struct {
	Regions       *[]ocrRegion   `json:"regions"`
	AnalyzeResult *analyzeResult `json:"analyzeResult"`
}

type ocrRegion struct {
	Lines []ocrLine `json:"lines"`
}

type ocrLine struct {
	Words []ocrWord `json:"words"`
}

type ocrWord struct {
	Text string `json:"text"`
}

var errNoTextPayload = errors.New("response carries neither regions nor analyzeResult")

// normalizeStatus folds provider status strings into the three domain states.
// notStarted and anything unrecognised count as running.
func normalizeStatus(status string) domain.OperationStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "succeeded":
		return domain.OperationSucceeded
	case "failed":
		return domain.OperationFailed
	default:
		return domain.OperationRunning
	}
}

func (a *analyzeResult) extractionResult() *domain.ExtractionResult {
	result := &domain.ExtractionResult{
		Lines:     make([]string, 0),
		PageCount: len(a.ReadResults),
	}
	for _, page := range a.ReadResults {
		for _, line := range page.Lines {
			result.Lines = append(result.Lines, line.Text)
		}
	}
	return result
}

func (r *readOperationResponse) extractionResult() (*domain.ExtractionResult, error) {
	if r.AnalyzeResult == nil {
		return nil, fmt.Errorf("succeeded operation without analyzeResult")
	}
	return r.AnalyzeResult.extractionResult(), nil
}

// parseSyncResult builds an ExtractionResult from a 200 OK submission body.
// Words of a line are joined with single spaces so the text has the same
// shape as the asynchronous path.
func parseSyncResult(body []byte) (*domain.ExtractionResult, error) {
	var payload ocrResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode ocr response: %w", err)
	}

	if payload.AnalyzeResult != nil {
		return payload.AnalyzeResult.extractionResult(), nil
	}
	if payload.Regions == nil {
		return nil, errNoTextPayload
	}

	result := &domain.ExtractionResult{Lines: make([]string, 0), PageCount: 1}
	for _, region := range *payload.Regions {
		for _, line := range region.Lines {
			words := make([]string, 0, len(line.Words))
			for _, w := range line.Words {
				words = append(words, w.Text)
			}
			result.Lines = append(result.Lines, strings.Join(words, " "))
		}
	}
	return result, nil
}
