package auth

import (
	"time"

	"github.com/angelmondragon/fastfood-backend/internal/users"
)

const (
	LandingAdmin    = "/admin/catalog"
	LandingCustomer = "/"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse contains the tokens and user produced by a successful login.
// Landing tells the client where to send the user next.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Landing      string         `json:"landing"`
	User         *users.UserDTO `json:"user"`
}

// OTPRequest asks for a verification code to be emailed.
type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// OTPResponse acknowledges a sent code without revealing it.
type OTPResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterRequest is the signup form. Role defaults to customer.
type RegisterRequest struct {
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,phone_vn"`
	Address         string `json:"address" validate:"required"`
	OTPCode         string `json:"otp_code" validate:"required,len=6,numeric"`
	Password        string `json:"password" validate:"required,password_policy"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	Role            string `json:"role,omitempty"`
}
