package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/fastfood-backend/internal/users"
	"github.com/angelmondragon/fastfood-backend/pkg/config"
	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	"github.com/angelmondragon/fastfood-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const (
	googleUserInfoURL   = "https://openidconnect.googleapis.com/v1/userinfo"
	defaultGoogleName   = "Người dùng mới"
	defaultGoogleAddr   = "Chưa cập nhật"
	defaultStateTTL     = 10 * time.Minute
	loginExpiredMessage = "login session expired, try again"
)

// GoogleProfile is the subset of the OpenID userinfo document used for sign-in.
type GoogleProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// ProfileFetcher resolves the Google profile for an exchanged token.
type ProfileFetcher func(ctx context.Context, token *oauth2.Token) (*GoogleProfile, error)

type codeExchanger func(ctx context.Context, code string) (*oauth2.Token, error)

type stateStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	GetDel(ctx context.Context, key string) (string, error)
	OAuthStateKey(state string) string
}

// GoogleService drives the OAuth authorization-code login with Google.
type GoogleService interface {
	AuthCodeURL(ctx context.Context) (string, error)
	Callback(ctx context.Context, state, code string) (*LoginResponse, error)
}

// GoogleServiceParams bundles the dependencies of the Google login flow.
type GoogleServiceParams struct {
	Config config.GoogleOAuthConfig
	States stateStore
	DB     txRunner
	Users  *users.Repository
	Tokens Service
	Fetch  ProfileFetcher
	Logger *logger.Logger
}

type googleService struct {
	oauth    *oauth2.Config
	stateTTL time.Duration
	states   stateStore
	db       txRunner
	users    *users.Repository
	tokens   Service
	exchange codeExchanger
	fetch    ProfileFetcher
	logg     *logger.Logger
}

// NewGoogleService builds the Google login flow. Callers should check
// cfg.Enabled before wiring it.
func NewGoogleService(params GoogleServiceParams) (GoogleService, error) {
	if !params.Config.Enabled() {
		return nil, fmt.Errorf("google oauth is not configured")
	}
	if params.States == nil {
		return nil, fmt.Errorf("state store required")
	}
	if params.DB == nil || params.Users == nil {
		return nil, fmt.Errorf("user storage required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("token service required")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     params.Config.ClientID,
		ClientSecret: params.Config.ClientSecret,
		RedirectURL:  params.Config.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
	fetch := params.Fetch
	if fetch == nil {
		fetch = userInfoFetcher(oauthCfg)
	}
	ttl := params.Config.StateTTL
	if ttl <= 0 {
		ttl = defaultStateTTL
	}

	return &googleService{
		oauth:    oauthCfg,
		stateTTL: ttl,
		states:   params.States,
		db:       params.DB,
		users:    params.Users,
		tokens:   params.Tokens,
		exchange: func(ctx context.Context, code string) (*oauth2.Token, error) {
			return oauthCfg.Exchange(ctx, code)
		},
		fetch: fetch,
		logg:  params.Logger,
	}, nil
}

// AuthCodeURL stores a one-time state value and returns the consent URL.
func (s *googleService) AuthCodeURL(ctx context.Context) (string, error) {
	state := uuid.NewString()
	ok, err := s.states.SetNX(ctx, s.states.OAuthStateKey(state), "1", s.stateTTL)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store oauth state")
	}
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeConflict, "oauth state collision")
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Callback consumes the state, exchanges the code and signs the Google user in,
// creating a customer account on first visit.
func (s *googleService) Callback(ctx context.Context, state, code string) (*LoginResponse, error) {
	state = strings.TrimSpace(state)
	code = strings.TrimSpace(code)
	if state == "" || code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "state and code are required")
	}
	if _, err := s.states.GetDel(ctx, s.states.OAuthStateKey(state)); err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, loginExpiredMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load oauth state")
	}

	token, err := s.exchange(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "google rejected the authorization code")
	}
	profile, err := s.fetch(ctx, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch google profile")
	}
	if profile.Subject == "" || strings.TrimSpace(profile.Email) == "" || !profile.EmailVerified {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "google account email is not verified")
	}

	user, err := s.findOrCreate(ctx, profile)
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "user_id", user.ID.String()), "auth.google_login")
	}
	return s.tokens.IssueTokens(ctx, user)
}

func (s *googleService) findOrCreate(ctx context.Context, profile *GoogleProfile) (*models.User, error) {
	var user *models.User
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)

		found, err := repo.FindByGoogleSubject(ctx, profile.Subject)
		switch {
		case err == nil:
			user = found
		case errors.Is(err, gorm.ErrRecordNotFound):
			user, err = s.linkOrCreate(ctx, repo, profile)
			if err != nil {
				return err
			}
		default:
			return err
		}

		return repo.AssignRole(ctx, user.ID, enums.RoleCustomer)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve google user")
	}
	return user, nil
}

func (s *googleService) linkOrCreate(ctx context.Context, repo *users.Repository, profile *GoogleProfile) (*models.User, error) {
	existing, err := repo.FindByEmail(ctx, profile.Email)
	if err == nil {
		if err := repo.LinkGoogleSubject(ctx, existing.ID, profile.Subject); err != nil {
			return nil, err
		}
		subject := profile.Subject
		existing.GoogleSubject = &subject
		existing.EmailConfirmed = true
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = defaultGoogleName
	}
	subject := profile.Subject
	return repo.CreateAccount(ctx, users.CreateUserDTO{
		Email:          profile.Email,
		FullName:       name,
		Address:        defaultGoogleAddr,
		EmailConfirmed: true,
		GoogleSubject:  &subject,
	})
}

func userInfoFetcher(cfg *oauth2.Config) ProfileFetcher {
	return func(ctx context.Context, token *oauth2.Token) (*GoogleProfile, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := cfg.Client(ctx, token).Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
		}
		var profile GoogleProfile
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			return nil, fmt.Errorf("decode userinfo: %w", err)
		}
		return &profile, nil
	}
}
