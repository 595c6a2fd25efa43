package auth

import "github.com/chifaexpress/storefront-backend/internal/users"

// RegisterRequest carries the payload for account creation.
type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	FullName string  `json:"full_name" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
}

// LoginRequest carries the credentials submitted at login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest rotates a refresh token into a new token pair. The access
// token may be expired; it only identifies the session being rotated.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is the credential set handed to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	AccessID     string `json:"access_id"`
}

// AuthResponse is returned by register, login, and refresh.
type AuthResponse struct {
	TokenPair
	User *users.UserDTO `json:"user"`
}
