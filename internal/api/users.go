package api

import (
	"net/http"
	"strings"

	"github.com/agonsep/21stCentury/internal/metrics"
	"github.com/agonsep/21stCentury/pkg/models"
)

type userRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.db.Users.List(r.Context())
	if err != nil {
		handleError(w, r, err, "", "Failed to fetch users")
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "user")
	if err != nil {
		handleError(w, r, err, "", "")
		return
	}

	user, err := s.db.Users.Get(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "User not found", "Failed to fetch user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err, "", "Failed to create user")
		return
	}

	user := &models.User{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.TrimSpace(req.Email),
	}
	if user.Name == "" || user.Email == "" {
		writeError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	err := s.db.Users.Create(r.Context(), user)
	metrics.RecordMutation("user", "create", err)
	if err != nil {
		handleError(w, r, err, "", "Failed to create user")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}
