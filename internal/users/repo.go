package users

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	"github.com/angelmondragon/fastfood-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IdentityProvider is the account surface the registration and login flows depend on.
type IdentityProvider interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CreateAccount(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	EnsureRole(ctx context.Context, role enums.Role) (*models.Role, error)
	AssignRole(ctx context.Context, userID uuid.UUID, role enums.Role) error
	IsInRole(ctx context.Context, userID uuid.UUID, role enums.Role) (bool, error)
	RolesFor(ctx context.Context, userID uuid.UUID) ([]enums.Role, error)
}

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// CreateAccount inserts a new user and returns the persisted model.
func (r *Repository) CreateAccount(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email, case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByGoogleSubject loads the user linked to a Google account.
func (r *Repository) FindByGoogleSubject(ctx context.Context, subject string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "google_subject = ?", subject).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LinkGoogleSubject attaches a Google account to an existing user and marks the email confirmed.
func (r *Repository) LinkGoogleSubject(ctx context.Context, id uuid.UUID, subject string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{"google_subject": subject, "email_confirmed": true}).Error
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// EnsureRole returns the named role, creating it on first use.
func (r *Repository) EnsureRole(ctx context.Context, role enums.Role) (*models.Role, error) {
	conn := r.db.WithContext(ctx)
	if err := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&models.Role{Name: role.String()}).Error; err != nil {
		return nil, err
	}

	var stored models.Role
	if err := conn.First(&stored, "name = ?", role.String()).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// AssignRole links the user to the role. Assigning twice is a no-op.
func (r *Repository) AssignRole(ctx context.Context, userID uuid.UUID, role enums.Role) error {
	stored, err := r.EnsureRole(ctx, role)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserRole{UserID: userID, RoleID: stored.ID}).Error
}

func (r *Repository) IsInRole(ctx context.Context, userID uuid.UUID, role enums.Role) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, role.String()).
		Count(&count).Error
	return count > 0, err
}

// RolesFor lists the user's roles sorted by name. Unknown role names are skipped.
func (r *Repository) RolesFor(ctx context.Context, userID uuid.UUID) ([]enums.Role, error) {
	var names []string
	if err := r.db.WithContext(ctx).
		Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name ASC").
		Pluck("roles.name", &names).Error; err != nil {
		return nil, err
	}

	roles := make([]enums.Role, 0, len(names))
	for _, name := range names {
		if role, err := enums.ParseRole(name); err == nil {
			roles = append(roles, role)
		}
	}
	return roles, nil
}
