package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"manim-studio/internal/domain"
	"manim-studio/internal/domain/model"
)

// errorBody is the uniform error envelope for every API error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, errorBody{Error: code, Message: message, Details: details})
}

type generateRequest struct {
	Prompt  string `json:"prompt"`
	Quality string `json:"quality,omitempty"`
}

type generateResponse struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	CurrentStep string `json:"current_step"`
}

// jobStatusResponse flattens a job and its result into the polling wire
// format the frontend consumes.
type jobStatusResponse struct {
	JobID       string `json:"job_id"`
	Status      string `json:"status"`
	Progress    int    `json:"progress"`
	CurrentStep string `json:"current_step"`
	VideoURL    string `json:"video_url,omitempty"`
	Code        string `json:"code,omitempty"`
	SceneName   string `json:"scene_name,omitempty"`
	Description string `json:"description,omitempty"`
	Method      string `json:"method,omitempty"`
	Model       string `json:"model,omitempty"`
	SampleUsed  string `json:"sample_used,omitempty"`
	Error       string `json:"error,omitempty"`
}

func toJobStatusResponse(job *model.RenderJob) jobStatusResponse {
	resp := jobStatusResponse{
		JobID:       job.ID,
		Status:      string(job.Status),
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
	}
	if r := job.Result; r != nil {
		resp.VideoURL = r.VideoURL
		resp.Code = r.Code
		resp.SceneName = r.SceneName
		resp.Description = r.Description
		resp.Method = r.Method
		resp.Model = r.Model
		resp.SampleUsed = r.SampleUsed
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "manim-studio",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// handleGenerate accepts a prompt and schedules the async pipeline.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body", err.Error())
		return
	}

	job, err := s.generationUC.Start(r.Context(), req.Prompt, req.Quality)
	if err != nil {
		s.writeGenerationError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, generateResponse{
		JobID:       job.ID,
		Status:      string(job.Status),
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
	})
}

// handleRender runs the whole pipeline inline and returns the finished
// result. Useful for scripts and tests that do not want to poll.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body", err.Error())
		return
	}

	result, err := s.generationUC.RenderSync(r.Context(), req.Prompt, req.Quality)
	if err != nil {
		s.writeGenerationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := s.generationUC.Status(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "job not found", id)
			return
		}
		s.log.Error().Err(err).Str("job_id", id).Msg("status lookup failed")
		writeError(w, http.StatusInternalServerError, "internal", "failed to load job", "")
		return
	}
	writeJSON(w, http.StatusOK, toJobStatusResponse(job))
}

func (s *Server) handleJobDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.generationUC.Delete(r.Context(), id); err != nil && !errors.Is(err, domain.ErrJobNotFound) {
		s.log.Error().Err(err).Str("job_id", id).Msg("job delete failed")
		writeError(w, http.StatusInternalServerError, "internal", "failed to delete job", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "job deleted", "job_id": id})
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	items, err := s.exampleUC.List(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("examples listing failed")
		writeError(w, http.StatusInternalServerError, "internal", "failed to list examples", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]*model.ExampleItem{"examples": items})
}

// writeGenerationError maps pipeline errors onto HTTP statuses.
func (s *Server) writeGenerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyPrompt):
		writeError(w, http.StatusBadRequest, "empty_prompt", "prompt must not be empty", "")
	case errors.Is(err, domain.ErrPromptTooLong):
		writeError(w, http.StatusBadRequest, "prompt_too_long", "prompt exceeds maximum length", "")
	case errors.Is(err, domain.ErrGenerationQueue):
		writeError(w, http.StatusServiceUnavailable, "queue_full", "too many jobs in flight, try again shortly", "")
	case errors.Is(err, domain.ErrRendererMissing):
		writeError(w, http.StatusServiceUnavailable, "renderer_unavailable", "video renderer is not installed", "")
	case errors.Is(err, domain.ErrScriptInvalid):
		writeError(w, http.StatusUnprocessableEntity, "invalid_script", "generated script failed validation", "")
	default:
		s.log.Error().Err(err).Msg("generation failed")
		writeError(w, http.StatusInternalServerError, "internal", "generation failed", err.Error())
	}
}

// ===== Admin =====

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body", "")
		return
	}
	if !s.auth.CheckPassword(req.Password) {
		writeError(w, http.StatusUnauthorized, "unauthorized", "wrong password", "")
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		s.log.Error().Err(err).Msg("token mint failed")
		writeError(w, http.StatusInternalServerError, "internal", "failed to create session", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) handleAdminCleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.CleanupOld(s.retention)
	if err != nil {
		s.log.Error().Err(err).Msg("cleanup failed")
		writeError(w, http.StatusInternalServerError, "internal", "cleanup failed", "")
		return
	}
	s.log.Info().Int("removed", removed).Msg("cleanup finished")
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}

// adminOnly rejects requests without a valid admin session.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "admin session required", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}
