package transport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/stepwise/internal/domain/journal"
	"github.com/rpggio/stepwise/internal/domain/progress"
)

type addActivityRequest struct {
	ActivityID string `json:"activityId"`
}

type userActivityResponse struct {
	Message      string                 `json:"message"`
	UserActivity *progress.UserActivity `json:"userActivity"`
}

func (s *Server) handleListUserActivities(w http.ResponseWriter, r *http.Request) {
	var opts progress.ListOptions
	if v := r.URL.Query().Get("status"); v != "" {
		status := progress.Status(v)
		if !status.Valid() {
			writeBadRequest(w, "Invalid status filter")
			return
		}
		opts.Status = &status
	}

	entries, err := s.progress.ListForUser(r.Context(), session(r).UserID, opts)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	if entries == nil {
		entries = []progress.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"userActivities": entries})
}

func (s *Server) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	var req addActivityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.ActivityID == "" {
		writeBadRequest(w, "activityId is required")
		return
	}

	result, err := s.progress.AddActivity(r.Context(), session(r).UserID, req.ActivityID)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}

	status, message := http.StatusCreated, "Activity added to your list"
	if result.IsReset {
		status, message = http.StatusOK, "Activity reset and added to your list"
	}
	writeJSON(w, status, map[string]any{
		"message":      message,
		"userActivity": result.UserActivity,
		"isReset":      result.IsReset,
	})
}

func (s *Server) handleGetUserActivity(w http.ResponseWriter, r *http.Request) {
	entry, err := s.progress.Get(r.Context(), session(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userActivity": entry})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	ua, err := s.progress.Start(r.Context(), session(r).UserID, chi.URLParam(r, "id"))
	s.writeTransition(w, r, ua, err)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	ua, err := s.progress.Complete(r.Context(), session(r).UserID, chi.URLParam(r, "id"))
	s.writeTransition(w, r, ua, err)
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	ua, err := s.progress.Skip(r.Context(), session(r).UserID, chi.URLParam(r, "id"))
	s.writeTransition(w, r, ua, err)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	ua, err := s.progress.Resume(r.Context(), session(r).UserID, chi.URLParam(r, "id"))
	s.writeTransition(w, r, ua, err)
}

func (s *Server) writeTransition(w http.ResponseWriter, r *http.Request, ua *progress.UserActivity, err error) {
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userActivityResponse{Message: "Activity " + string(ua.Status), UserActivity: ua})
}

func (s *Server) handleToggleStep(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil {
		writeBadRequest(w, "Step number must be an integer")
		return
	}

	ua, err := s.progress.ToggleStep(r.Context(), session(r).UserID, chi.URLParam(r, "id"), step)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":         "Activity updated successfully",
		"userActivity":    ua,
		"percentComplete": ua.Progress.PercentComplete,
	})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := s.progress.Remove(r.Context(), session(r).UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Activity removed from your list", "deletedId": id})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.progress.Stats(r.Context(), session(r).UserID)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var opts journal.ListOptions
	if v := q.Get("type"); v != "" {
		entryType := journal.EntryType(v)
		opts.Type = &entryType
	}
	if v := q.Get("userActivityId"); v != "" {
		opts.UserActivityID = &v
	}
	var err error
	if opts.Limit, err = intParam(q.Get("limit")); err != nil {
		writeBadRequest(w, "limit must be an integer")
		return
	}
	if opts.Offset, err = intParam(q.Get("offset")); err != nil {
		writeBadRequest(w, "offset must be an integer")
		return
	}

	entries, err := s.journal.List(r.Context(), session(r).UserID, opts)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
