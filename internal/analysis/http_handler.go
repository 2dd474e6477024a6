package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rpattn/rentroll/internal/domain"
	"github.com/rpattn/rentroll/internal/repository"
	"github.com/rpattn/rentroll/internal/risk"
)

// Handler exposes document analysis as an HTTP endpoint.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a POST upload endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return
	}

	doc := domain.NewDocument(header.Filename, data)
	outcome := h.service.Process(r.Context(), doc)

	status := http.StatusOK
	if !outcome.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, outcome)
}

// CacheHandler exposes cache introspection and manual invalidation.
type CacheHandler struct {
	service *Service
}

// NewCacheHandler wraps the service's cache operations.
func NewCacheHandler(service *Service) http.Handler {
	return &CacheHandler{service: service}
}

func (h *CacheHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.service.CacheStats())
	case http.MethodDelete:
		h.service.ClearCache()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// SummaryHandler serves portfolio risk summaries. GET aggregates the stored
// assessments; POST aggregates the list supplied in the request body, which
// may use either snake_case or camelCase field names.
type SummaryHandler struct {
	assessments repository.AssessmentRepository
}

// NewSummaryHandler wraps an assessment source with aggregation endpoints.
func NewSummaryHandler(assessments repository.AssessmentRepository) http.Handler {
	return &SummaryHandler{assessments: assessments}
}

func (h *SummaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if h.assessments == nil {
			http.Error(w, "assessment store not configured", http.StatusServiceUnavailable)
			return
		}
		stored, err := h.assessments.List(r.Context(), 0, 0)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to load assessments: %v", err), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, risk.Summarize(stored))
	case http.MethodPost:
		var supplied []domain.TenantRiskAssessment
		if err := json.NewDecoder(r.Body).Decode(&supplied); err != nil {
			http.Error(w, fmt.Sprintf("invalid assessment list: %v", err), http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, risk.Summarize(supplied))
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
