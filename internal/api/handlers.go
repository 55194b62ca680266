// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	apperrors "people-search/internal/common/errors"
	"people-search/internal/models"
	"people-search/internal/search/diagnostics"
	"people-search/internal/search/profiles"
	"people-search/internal/search/validator"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type validateResponse struct {
	Validation *models.ValidationResult `json:"validation"`
	Report     string                   `json:"report"`
}

type errorResponse struct {
	Error *apperrors.StandardError `json:"error"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.searcher.PerformSearch(r.Context(), req.SearchID, req.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleValidate answers with the validation result and report; an
// invalid query is still a 200.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := req.Query()
	result := validator.Validate(q)
	writeJSON(w, http.StatusOK, validateResponse{
		Validation: result,
		Report:     validator.RenderReport(q.Type, result),
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	if s.diagnostics == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "diagnostics not configured"})
		return
	}

	report := s.diagnostics.Run(r.Context())
	status := http.StatusOK
	if report.OverallStatus == diagnostics.OverallCritical {
		status = http.StatusServiceUnavailable
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, diagnostics.RenderText(report))
		return
	}
	writeJSON(w, status, report)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "search history disabled"})
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, apperrors.NewSchemaValidationFailedError("limit must be a positive integer"))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	records, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, apperrors.NewDatabaseConnectionFailedError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"searches": records,
		"count":    len(records),
	})
}

// handleDirectoryLookup takes the search request body and answers from the
// local directory only.
func (s *Server) handleDirectoryLookup(w http.ResponseWriter, r *http.Request) {
	if s.directory == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile directory disabled"})
		return
	}

	req, err := s.decodeRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.directory.Lookup(r.Context(), models.ParseSearchType(req.SearchType), req.SearchQuery)
	if err != nil {
		s.writeError(w, directoryError(err, ""))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	if s.directory == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile directory disabled"})
		return
	}

	id := r.PathValue("id")
	profile, err := s.directory.Profile(r.Context(), id)
	if err != nil {
		s.writeError(w, directoryError(err, id))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func directoryError(err error, id string) error {
	switch {
	case errors.Is(err, profiles.ErrNotFound):
		return apperrors.NewProfileNotFoundError(id)
	case errors.Is(err, profiles.ErrInvalidID), errors.Is(err, profiles.ErrUnsupportedType):
		return apperrors.NewSchemaValidationFailedError(err.Error())
	}
	return apperrors.NewDatabaseConnectionFailedError(err)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
		"uptime": time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// decodeRequest checks the body against the registry schema, then decodes
// it.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request) (*models.SearchRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.NewSchemaValidationFailedError(fmt.Sprintf("read body: %v", err))
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, apperrors.NewSchemaValidationFailedError("body is not a JSON object")
	}
	if s.schema != nil {
		if err := s.schema.Check(SchemaTaskType, doc); err != nil {
			return nil, err
		}
	}

	var req models.SearchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, apperrors.NewSchemaValidationFailedError(err.Error())
	}
	return &req, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	stdErr := apperrors.FromError(err)
	status := statusFor(stdErr.Code)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", map[string]interface{}{
			"code":  string(stdErr.Code),
			"error": err.Error(),
		})
	}
	writeJSON(w, status, errorResponse{Error: stdErr})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeSchemaValidationFailed:
		return http.StatusBadRequest
	case apperrors.ErrCodeSearchValidationFailed, apperrors.ErrCodeUnknownSearchType:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeSearchExhausted, apperrors.ErrCodeProviderRequestFailed:
		return http.StatusBadGateway
	case apperrors.ErrCodeProviderTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeDatabaseConnectionFailed, apperrors.ErrCodeCacheUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeProfileNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

