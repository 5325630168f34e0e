package auth

import (
	"context"
	"testing"
	"time"

	pkgAuth "github.com/angelmondragon/fastfood-backend/pkg/auth"
	"github.com/angelmondragon/fastfood-backend/pkg/config"
	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	"github.com/angelmondragon/fastfood-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/angelmondragon/fastfood-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var testJWTConfig = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "fastfood",
	ExpirationMinutes: 30,
}

func TestServiceLoginAdminLandsOnCatalog(t *testing.T) {
	password := "admin123"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "admin@example.com",
		PasswordHash: strPtr(mustHashPassword(t, password)),
		FullName:     "Quản trị",
	}

	svc, _, err := buildTestService(user, []enums.Role{enums.RoleAdmin, enums.RoleCustomer})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " ADMIN@example.com ", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if !claims.HasRole(enums.RoleAdmin) {
		t.Fatalf("expected admin role claim, got %v", claims.Roles)
	}
	if claims.DisplayName != "Quản trị" {
		t.Fatalf("expected display name claim, got %q", claims.DisplayName)
	}
	if resp.Landing != LandingAdmin {
		t.Fatalf("expected admin landing, got %s", resp.Landing)
	}
	if resp.RefreshToken != "refresh-token" {
		t.Fatalf("expected refresh token to be set")
	}
	if user.LastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
}

func TestServiceLoginCustomerLanding(t *testing.T) {
	password := "secret1"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "alice@example.com",
		PasswordHash: strPtr(mustHashPassword(t, password)),
	}
	svc, _, err := buildTestService(user, []enums.Role{enums.RoleCustomer})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Landing != LandingCustomer {
		t.Fatalf("expected customer landing, got %s", resp.Landing)
	}
	if resp.User == nil || resp.User.Email != user.Email {
		t.Fatalf("expected user dto in response, got %+v", resp.User)
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        "bob@example.com",
		PasswordHash: strPtr(mustHashPassword(t, "right1")),
	}
	googleOnly := &models.User{ID: uuid.New(), Email: "g@example.com"}

	cases := []struct {
		name     string
		user     *models.User
		email    string
		password string
	}{
		{name: "wrong password", user: user, email: user.Email, password: "wrong1"},
		{name: "unknown email", user: nil, email: "nobody@example.com", password: "whatever1"},
		{name: "blank email", user: user, email: "  ", password: "right1"},
		{name: "no local password", user: googleOnly, email: googleOnly.Email, password: "anything1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, err := buildTestService(tc.user, nil)
			if err != nil {
				t.Fatalf("build service: %v", err)
			}
			_, err = svc.Login(context.Background(), LoginRequest{Email: tc.email, Password: tc.password})
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized error, got %v", err)
			}
			if typed.Message() != invalidCredentialsMessage {
				t.Fatalf("expected generic message, got %q", typed.Message())
			}
		})
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{SessionManager: &stubSessionManager{}}); err == nil {
		t.Fatal("expected error without user repository")
	}
	if _, err := NewService(ServiceParams{UserRepo: stubUserRepo{}}); err == nil {
		t.Fatal("expected error without session manager")
	}
}

func TestLandingFor(t *testing.T) {
	if got := LandingFor(nil); got != LandingCustomer {
		t.Fatalf("expected customer landing for no roles, got %s", got)
	}
	if got := LandingFor([]enums.Role{enums.RoleCustomer, enums.RoleAdmin}); got != LandingAdmin {
		t.Fatalf("expected admin landing, got %s", got)
	}
}

func buildTestService(user *models.User, roles []enums.Role) (Service, *stubSessionManager, error) {
	sessionMgr := &stubSessionManager{refreshToken: "refresh-token"}
	svc, err := NewService(ServiceParams{
		UserRepo:       stubUserRepo{user: user, roles: roles},
		SessionManager: sessionMgr,
		JWTConfig:      testJWTConfig,
	})
	return svc, sessionMgr, err
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func strPtr(value string) *string {
	return &value
}

type stubUserRepo struct {
	user  *models.User
	roles []enums.Role
	err   error
}

func (s stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

func (s stubUserRepo) RolesFor(ctx context.Context, userID uuid.UUID) ([]enums.Role, error) {
	return s.roles, nil
}

type stubSessionManager struct {
	refreshToken string
	generated    []string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return s.refreshToken, nil
}
