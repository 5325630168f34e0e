package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the canonical identity entity. The email doubles as the login name.
type User struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Email          string     `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash   *string    `gorm:"column:password_hash"`
	FullName       string     `gorm:"column:full_name;type:text;not null"`
	Phone          *string    `gorm:"column:phone"`
	Address        string     `gorm:"column:address;type:text;not null"`
	EmailConfirmed bool       `gorm:"column:email_confirmed;not null"`
	GoogleSubject  *string    `gorm:"column:google_subject;uniqueIndex"`
	LastLoginAt    *time.Time `gorm:"column:last_login_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Role is a named permission group.
type Role struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;type:text;not null;uniqueIndex"`
}

func (Role) TableName() string { return "roles" }

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// UserRole links users to roles.
type UserRole struct {
	UserID uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	RoleID uuid.UUID `gorm:"column:role_id;type:uuid;primaryKey"`
}

func (UserRole) TableName() string { return "user_roles" }
