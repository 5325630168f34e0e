package users

import (
	"strings"
	"time"

	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	"github.com/angelmondragon/fastfood-backend/pkg/enums"
	"github.com/google/uuid"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID             uuid.UUID    `json:"id"`
	Email          string       `json:"email"`
	FullName       string       `json:"full_name"`
	Phone          *string      `json:"phone,omitempty"`
	Address        string       `json:"address"`
	EmailConfirmed bool         `json:"email_confirmed"`
	Roles          []enums.Role `json:"roles"`
	LastLoginAt    *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email          string
	PasswordHash   *string
	FullName       string
	Phone          *string
	Address        string
	EmailConfirmed bool
	GoogleSubject  *string
}

// FromModel converts a user plus its resolved roles.
func FromModel(u *models.User, roles []enums.Role) *UserDTO {
	if u == nil {
		return nil
	}
	if roles == nil {
		roles = []enums.Role{}
	}
	return &UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		Phone:          u.Phone,
		Address:        u.Address,
		EmailConfirmed: u.EmailConfirmed,
		Roles:          roles,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Email:          strings.ToLower(strings.TrimSpace(c.Email)),
		PasswordHash:   c.PasswordHash,
		FullName:       strings.TrimSpace(c.FullName),
		Phone:          c.Phone,
		Address:        c.Address,
		EmailConfirmed: c.EmailConfirmed,
		GoogleSubject:  c.GoogleSubject,
	}
}

// DisplayName is the name shown on receipts: the full name, else the email.
func DisplayName(u *models.User) string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Email
}
