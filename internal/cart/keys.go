package cart

import (
	"strings"

	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/google/uuid"
)

const (
	userKeyPrefix  = "user:"
	guestKeyPrefix = "guest:"
)

// UserKey is the cart key owned by an authenticated user.
func UserKey(userID uuid.UUID) string {
	return userKeyPrefix + userID.String()
}

// GuestKey is the cart key owned by an anonymous browser session.
func GuestKey(sessionID uuid.UUID) string {
	return guestKeyPrefix + sessionID.String()
}

// IsGuestKey reports whether key belongs to an anonymous session.
func IsGuestKey(key string) bool {
	return strings.HasPrefix(key, guestKeyPrefix)
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart key required")
	}
	return nil
}
