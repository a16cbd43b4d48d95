package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	"gator-gram/internal/engine/actors"
	"gator-gram/internal/middleware"
	"gator-gram/internal/models"
	"gator-gram/internal/types"
	"gator-gram/internal/utils"
)

// RegisterRequest represents a request to register a new user
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a request to log in a user
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// HandleRegister handles requests to register a new user
func (s *Server) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewValidationError("Invalid request"))
			return
		}

		if req.Name == "" || req.Email == "" || req.Password == "" {
			s.respondError(w, utils.NewValidationError("Name, email and password are required"))
			return
		}
		if !emailPattern.MatchString(req.Email) {
			s.respondError(w, utils.NewValidationError("Invalid email address"))
			return
		}
		if len(req.Password) < 6 {
			s.respondError(w, utils.NewValidationError("Password must be at least 6 characters"))
			return
		}

		result, appErr := s.request(s.Engine.GetUserActor(), &actors.RegisterUserMsg{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		user := result.(*models.PublicUser)
		token, err := middleware.GenerateToken(user.ID)
		if err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrDatabase, "Failed to generate auth token", err))
			return
		}

		s.respondJSON(w, http.StatusCreated, &types.AuthResponse{
			Message: "User registered successfully",
			Token:   token,
			User:    user,
		})
	}
}

// HandleLogin handles requests to log in a user
func (s *Server) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewValidationError("Invalid request"))
			return
		}

		if req.Email == "" || req.Password == "" {
			s.respondError(w, utils.NewValidationError("Email and password are required"))
			return
		}

		result, appErr := s.request(s.Engine.GetUserActor(), &actors.LoginMsg{
			Email:    req.Email,
			Password: req.Password,
		})
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		user := result.(*models.PublicUser)
		token, err := middleware.GenerateToken(user.ID)
		if err != nil {
			s.respondError(w, utils.NewAppError(utils.ErrDatabase, "Failed to generate auth token", err))
			return
		}

		s.respondJSON(w, http.StatusOK, &types.AuthResponse{
			Message: "Login successful",
			Token:   token,
			User:    user,
		})
	}
}
