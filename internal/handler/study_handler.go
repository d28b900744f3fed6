package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"doc-study-server/internal/domain"

	"github.com/gorilla/mux"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
	// multipart framing allowance on top of the file itself
	multipartOverhead = 1 << 20
)

// StudyHandler serves uploads, chat and stored analyses.
type StudyHandler struct {
	studyService domain.StudyService
	maxFileSize  int64
	logger       domain.Logger
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(studyService domain.StudyService, maxFileSize int64, logger domain.Logger) *StudyHandler {
	return &StudyHandler{
		studyService: studyService,
		maxFileSize:  maxFileSize,
		logger:       logger,
	}
}

type uploadResponse struct {
	Success bool `json:"success"`
	*domain.Analysis
	// UrduText mirrors TranslatedText under the key the bundled frontend reads.
	UrduText string `json:"urdu_text"`
}

// Upload handles POST /api/v1/upload with a multipart "file" field.
func (h *StudyHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.maxFileSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	// Sanitize filename (strip any path components)
	filename := strings.TrimSpace(filepath.Base(header.Filename))
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}

	analysis, err := h.studyService.Analyze(r.Context(), domain.Upload{
		Filename: filename,
		Size:     header.Size,
		Reader:   file,
	})
	if err != nil {
		h.logger.Error("Upload analysis failed", err, "filename", filename)
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Success: true, Analysis: analysis, UrduText: analysis.TranslatedText})
}

// Chat handles POST /api/v1/chat.
func (h *StudyHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.studyService.Chat(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListAnalyses handles GET /api/v1/analyses?limit=N.
func (h *StudyHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	analyses, err := h.studyService.ListAnalyses(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list analyses", err)
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": analyses,
		"count":    len(analyses),
	})
}

// GetAnalysis handles GET /api/v1/analyses/{id}.
func (h *StudyHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		writeError(w, http.StatusBadRequest, "Analysis ID is required")
		return
	}

	analysis, err := h.studyService.GetAnalysis(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
