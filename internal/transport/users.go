package transport

import (
	"net/http"

	"github.com/rpggio/stepwise/internal/domain/account"
)

type profileRequest struct {
	Name        *string              `json:"name"`
	Username    *string              `json:"username"`
	Preferences *account.Preferences `json:"preferences"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type userResponse struct {
	Message string        `json:"message,omitempty"`
	User    *account.User `json:"user"`
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.Get(r.Context(), session(r).UserID)
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: user})
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	user, err := s.accounts.UpdateProfile(r.Context(), session(r).UserID, account.ProfileUpdate(req))
	if err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Message: "Profile updated successfully", User: user})
}

func (s *Server) handleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	if err := s.accounts.UpdatePassword(r.Context(), session(r).UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (s *Server) handleDeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := s.accounts.Delete(r.Context(), session(r).UserID); err != nil {
		writeError(w, s.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deleted successfully"})
}
