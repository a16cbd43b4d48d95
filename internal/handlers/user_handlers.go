package handlers

import (
	"encoding/json"
	"net/http"

	"gator-gram/internal/engine/actors"
	"gator-gram/internal/middleware"
	"gator-gram/internal/utils"
)

// UpdateProfileRequest represents a request to update the user's profile
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// UpdateScoreRequest represents a request to overwrite the user's score
type UpdateScoreRequest struct {
	Score int `json:"score"`
}

// HandleGetProfile returns the authenticated user's public projection.
func (s *Server) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		reply, appErr := s.request(s.Engine.GetUserActor(), &actors.GetProfileMsg{UserID: userID})
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		s.respondJSON(w, http.StatusOK, reply)
	}
}

// HandleUpdateProfile renames the authenticated user. The avatar is
// regenerated from the new name.
func (s *Server) HandleUpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewValidationError("Invalid request"))
			return
		}
		if req.Name == "" {
			s.respondError(w, utils.NewValidationError("Name is required"))
			return
		}

		reply, appErr := s.request(s.Engine.GetUserActor(), &actors.UpdateProfileMsg{
			UserID: userID,
			Name:   req.Name,
		})
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		s.respondJSON(w, http.StatusOK, reply)
	}
}

// HandleRanking returns the top users by descending score.
func (s *Server) HandleRanking() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply, appErr := s.request(s.Engine.GetUserActor(), &actors.GetRankingMsg{})
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		s.respondJSON(w, http.StatusOK, reply)
	}
}

// HandleUpdateScore overwrites the authenticated user's score with the
// supplied value. No bounds checking, no increment semantics.
func (s *Server) HandleUpdateScore() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			s.respondError(w, utils.NewAppError(utils.ErrUnauthorized, "Authentication required", nil))
			return
		}

		var req UpdateScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, utils.NewValidationError("Invalid request"))
			return
		}

		reply, appErr := s.request(s.Engine.GetUserActor(), &actors.UpdateScoreMsg{
			UserID: userID,
			Score:  req.Score,
		})
		if appErr != nil {
			s.respondError(w, appErr)
			return
		}

		s.respondJSON(w, http.StatusOK, reply)
	}
}
