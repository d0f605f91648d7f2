package model

import "time"

// User - a stored account. PasswordHash never leaves the process.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser - fields needed to insert a user; the hash is computed by the caller.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50" example:"alice"`
	Email    string `json:"email" binding:"required,email,max=254" example:"alice@example.com"`
	Password string `json:"password" binding:"required,min=8,max=128" example:"pw123456"`
}

// LoginRequest - OAuth2 password-grant form fields.
type LoginRequest struct {
	GrantType string `form:"grant_type" binding:"omitempty,eq=password"`
	Username  string `form:"username" binding:"required"`
	Password  string `form:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
	ExpiresIn   int64  `json:"expires_in" example:"1800"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
