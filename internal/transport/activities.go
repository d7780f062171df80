package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/stepwise/internal/domain/catalog"
)

type activityRequest struct {
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Category      catalog.Category   `json:"category"`
	Difficulty    catalog.Difficulty `json:"difficulty"`
	EstimatedTime int                `json:"estimatedTime"`
	Steps         []catalog.Step     `json:"steps"`
	Tags          []string           `json:"tags"`
	Instructions  []string           `json:"instructions"`
	Materials     []string           `json:"materials"`
	Benefits      []string           `json:"benefits"`
}

type activityPatch struct {
	Title         *string             `json:"title"`
	Description   *string             `json:"description"`
	Category      *catalog.Category   `json:"category"`
	Difficulty    *catalog.Difficulty `json:"difficulty"`
	EstimatedTime *int                `json:"estimatedTime"`
	Steps         *[]catalog.Step     `json:"steps"`
	Tags          *[]string           `json:"tags"`
	Instructions  *[]string           `json:"instructions"`
	Materials     *[]string           `json:"materials"`
	Benefits      *[]string           `json:"benefits"`
	IsActive      *bool               `json:"isActive"`
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	opts := catalog.ListOptions{ActiveOnly: true}
	if v := r.URL.Query().Get("category"); v != "" {
		category := catalog.Category(v)
		opts.Category = &category
	}
	if v := r.URL.Query().Get("difficulty"); v != "" {
		difficulty := catalog.Difficulty(v)
		opts.Difficulty = &difficulty
	}

	activities, err := s.catalog.List(r.Context(), opts)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	if activities == nil {
		activities = []catalog.Activity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"activities": activities, "total": len(activities)})
}

func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	act, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": act})
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	act, err := s.catalog.Create(r.Context(), session(r), catalog.CreateRequest(req))
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"activity": act})
}

func (s *Server) handleUpdateActivity(w http.ResponseWriter, r *http.Request) {
	var req activityPatch
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	act, err := s.catalog.Update(r.Context(), session(r), chi.URLParam(r, "id"), catalog.UpdateRequest(req))
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": act})
}
