package gateway

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dohr-michael/lingo/internal/a2a"
	"github.com/dohr-michael/lingo/internal/jobs"
	"github.com/dohr-michael/lingo/internal/results"
)

// executeTaskRequest is the legacy envelope/parts submission shape.
type executeTaskRequest struct {
	Envelope struct {
		TaskID         string `json:"task_id"`
		TargetLanguage string `json:"target_language"`
	} `json:"envelope"`
	Parts struct {
		DocumentContent string `json:"document_content"`
	} `json:"parts"`
}

// handleExecuteTask serves the legacy submission endpoint. Accepted
// requests answer 202 with a pending status.
func (s *Server) handleExecuteTask(w http.ResponseWriter, r *http.Request) {
	var req executeTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": "failed",
			"error":  "invalid request body",
		})
		return
	}

	if req.Parts.DocumentContent == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"status": "failed",
			"error":  "document_content is required",
		})
		return
	}

	taskID := req.Envelope.TaskID
	if taskID == "" {
		taskID = uuid.New().String()
	}
	targetLanguage := req.Envelope.TargetLanguage
	if targetLanguage == "" {
		targetLanguage = s.defaultLanguage
	}

	payload := &jobs.Payload{
		TaskID:          taskID,
		DocumentContent: req.Parts.DocumentContent,
		TargetLanguage:  targetLanguage,
	}

	if err := s.submit(r.Context(), payload); err != nil {
		slog.Error("submission failed", "task_id", taskID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "failed",
			"error":  "failed to queue task",
		})
		return
	}

	writeJSON(w, http.StatusAccepted, a2a.LegacyStatus{
		TaskID:  taskID,
		Status:  a2a.LegacyPending,
		Message: "Task received. A worker will process it shortly.",
	})
}

// handleTaskStatus serves the legacy status endpoint. An absent result
// reads as pending, never as an error.
func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	rec, err := s.results.Get(r.Context(), taskID)
	if err != nil {
		slog.Error("result lookup failed", "task_id", taskID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"status": "failed",
			"error":  "failed to look up task",
		})
		return
	}

	if rec == nil {
		writeJSON(w, http.StatusOK, a2a.LegacyStatus{TaskID: taskID, Status: a2a.LegacyPending})
		return
	}

	state := a2a.StateCompleted
	if rec.Status == results.StatusFailed {
		state = a2a.StateFailed
	}
	writeJSON(w, http.StatusOK, a2a.LegacyView(rec.TaskID, state, rec.ArtifactContent, rec.ProcessedAt))
}
