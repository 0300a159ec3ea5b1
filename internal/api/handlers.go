package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"schoolscraper/internal/domain"
	"schoolscraper/internal/jobs"
	"schoolscraper/internal/storage"
)

func (s *Server) handleScrapeRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.ScrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Output == "" {
		s.respondWithError(w, http.StatusBadRequest, "Output path is required")
		return
	}

	job, err := s.runner.Submit(jobs.Job{
		Kind:    jobs.KindScrape,
		Filters: req.Filters,
		Output:  req.Output,
	})
	if err != nil {
		s.respondWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleEnrichRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.EnrichRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Input == "" {
		s.respondWithError(w, http.StatusBadRequest, "Input path is required")
		return
	}

	job, err := s.runner.Submit(jobs.Job{
		Kind:  jobs.KindEnrich,
		Input: req.Input,
	})
	if err != nil {
		s.respondWithError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	s.respondWithJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, ok := s.runner.Get(id)
	if !ok {
		s.respondWithError(w, http.StatusNotFound, "Job not found")
		return
	}

	s.respondWithJSON(w, http.StatusOK, job)
}

func (s *Server) handleSchoolLookup(w http.ResponseWriter, r *http.Request) {
	urlParam := r.URL.Query().Get("url")
	if urlParam == "" {
		s.respondWithError(w, http.StatusBadRequest, "URL query parameter is required")
		return
	}

	if s.archive == nil {
		s.respondWithError(w, http.StatusServiceUnavailable, "Archive is not configured")
		return
	}

	rec, err := s.archive.GetSchool(r.Context(), urlParam)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.respondWithError(w, http.StatusNotFound, "School not found")
			return
		}
		s.logger.Error("failed to look up school", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve school")
		return
	}

	s.respondWithJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	if s.archive == nil {
		healthStatus["postgres"] = "disabled"
	} else if err := s.archive.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	if healthStatus["postgres"] == "unhealthy" {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}

	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
