package auth

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/angelmondragon/fastfood-backend/internal/notify"
	"github.com/angelmondragon/fastfood-backend/internal/otp"
	"github.com/angelmondragon/fastfood-backend/internal/users"
	"github.com/angelmondragon/fastfood-backend/pkg/config"
	"github.com/angelmondragon/fastfood-backend/pkg/db"
	"github.com/angelmondragon/fastfood-backend/pkg/db/models"
	"github.com/angelmondragon/fastfood-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"github.com/angelmondragon/fastfood-backend/pkg/metrics"
	"github.com/angelmondragon/fastfood-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	otpEmailSubject     = "Mã OTP xác thực"
	invalidCodeMessage  = "invalid or expired code"
	deliveryFailMessage = "could not send verification email, try again"
)

// PhonePattern is the accepted phone format: ten digits starting with 0.
var PhonePattern = regexp.MustCompile(`^0\d{9}$`)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type otpRecorder interface {
	IncIssued()
	IncVerification(result string)
	IncDelivery(result string)
}

// RegisterService runs the email-verified signup flow: request a code, then
// submit the form with that code.
type RegisterService interface {
	RequestOTP(ctx context.Context, email string) (*OTPResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB               txRunner
	Users            *users.Repository
	OTP              otp.Registry
	Notifier         notify.Notifier
	PasswordConfig   config.PasswordConfig
	AllowAdminSignup bool
	Metrics          *metrics.OTPMetrics
	Logger           *logger.Logger
}

type registerService struct {
	db          txRunner
	users       *users.Repository
	otp         otp.Registry
	notifier    notify.Notifier
	passwordCfg config.PasswordConfig
	allowAdmin  bool
	metrics     otpRecorder
	logg        *logger.Logger
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.OTP == nil {
		return nil, fmt.Errorf("otp registry required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	var recorder otpRecorder = noopOTPRecorder{}
	if params.Metrics != nil {
		recorder = params.Metrics
	}
	return &registerService{
		db:          params.DB,
		users:       params.Users,
		otp:         params.OTP,
		notifier:    params.Notifier,
		passwordCfg: params.PasswordConfig,
		allowAdmin:  params.AllowAdminSignup,
		metrics:     recorder,
		logg:        params.Logger,
	}, nil
}

// RequestOTP issues a fresh code for the email, replacing any pending one, and
// mails it. When delivery fails the issued code stays valid; asking again
// supersedes it.
func (s *registerService) RequestOTP(ctx context.Context, email string) (*OTPResponse, error) {
	address, err := notify.ValidateAddress(otp.NormalizeEmail(email))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid email address")
	}

	entry, err := s.otp.Issue(ctx, address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "issue otp")
	}
	s.metrics.IncIssued()

	if err := s.notifier.Send(ctx, address, otpEmailSubject, otpEmailBody(entry, s.otp.TTL())); err != nil {
		s.metrics.IncDelivery("failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, deliveryFailMessage)
	}
	s.metrics.IncDelivery("sent")

	return &OTPResponse{Email: entry.Email, ExpiresAt: entry.ExpiresAt}, nil
}

// otpEmailBody states the lifetime in whole minutes, rounded up.
func otpEmailBody(entry otp.Entry, ttl time.Duration) string {
	minutes := int((ttl + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("Mã OTP của bạn là: <b>%s</b>. Mã này sẽ hết hạn sau %d phút.", html.EscapeString(entry.Code), minutes)
}

// Register validates the form, consumes the OTP and creates the account with
// its role in one transaction. Form errors are reported before the code is
// spent so the user can correct them and resubmit.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	email := otp.NormalizeEmail(req.Email)
	role, err := s.validate(email, req)
	if err != nil {
		return nil, err
	}

	if err := s.otp.Verify(ctx, email, strings.TrimSpace(req.OTPCode)); err != nil {
		reason := otp.Reason(err)
		s.metrics.IncVerification(reason)
		if reason == "error" {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify otp")
		}
		if s.logg != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"email": email, "reason": reason}), "register.otp_rejected")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, invalidCodeMessage)
	}
	s.metrics.IncVerification(otp.Reason(nil))

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	phone := strings.TrimSpace(req.Phone)

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return accountRejected(pkgerrors.FieldError{Field: "email", Message: "email already registered"})
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := repo.CreateAccount(ctx, users.CreateUserDTO{
			Email:          email,
			PasswordHash:   &passwordHash,
			FullName:       strings.TrimSpace(req.FullName),
			Phone:          &phone,
			Address:        strings.TrimSpace(req.Address),
			EmailConfirmed: true,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return accountRejected(pkgerrors.FieldError{Field: "email", Message: "email already registered"})
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		if err := repo.AssignRole(ctx, user.ID, role); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign role")
		}
		created = user
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "register")
	}
	return created, nil
}

func (s *registerService) validate(email string, req RegisterRequest) (enums.Role, error) {
	var fields []pkgerrors.FieldError
	if strings.TrimSpace(req.FullName) == "" {
		fields = append(fields, pkgerrors.FieldError{Field: "full_name", Message: "full name is required"})
	}
	if _, err := notify.ValidateAddress(email); err != nil {
		fields = append(fields, pkgerrors.FieldError{Field: "email", Message: "email is invalid"})
	}
	if !PhonePattern.MatchString(strings.TrimSpace(req.Phone)) {
		fields = append(fields, pkgerrors.FieldError{Field: "phone", Message: "phone must be 10 digits starting with 0"})
	}
	if strings.TrimSpace(req.Address) == "" {
		fields = append(fields, pkgerrors.FieldError{Field: "address", Message: "address is required"})
	}
	for _, violation := range security.PasswordPolicyViolations(req.Password) {
		fields = append(fields, pkgerrors.FieldError{Field: "password", Message: violation})
	}
	if req.Password != req.ConfirmPassword {
		fields = append(fields, pkgerrors.FieldError{Field: "confirm_password", Message: "passwords do not match"})
	}

	role := enums.RoleCustomer
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := enums.ParseRole(req.Role)
		if err != nil {
			fields = append(fields, pkgerrors.FieldError{Field: "role", Message: "role must be admin or customer"})
		} else {
			role = parsed
		}
	}

	if len(fields) > 0 {
		return "", pkgerrors.Invalid("registration form is invalid", fields...)
	}
	if role == enums.RoleAdmin && !s.allowAdmin {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "admin self-registration is disabled")
	}
	return role, nil
}

func accountRejected(fields ...pkgerrors.FieldError) error {
	return pkgerrors.Invalid("account creation rejected", fields...)
}

type noopOTPRecorder struct{}

func (noopOTPRecorder) IncIssued()             {}
func (noopOTPRecorder) IncVerification(string) {}
func (noopOTPRecorder) IncDelivery(string)     {}
