package types

import "gator-gram/internal/models"

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    *models.PublicUser `json:"user"`
}

// MessageResponse carries a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}
