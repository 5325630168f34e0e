package middleware

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/fastfood-backend/api/responses"
	"github.com/angelmondragon/fastfood-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"github.com/google/uuid"
)

// CartSessionHeader carries the anonymous cart id chosen by the client.
const CartSessionHeader = "X-Cart-Session"

// CartKey resolves which cart the request operates on: the signed-in user's
// cart, otherwise the guest cart named by CartSessionHeader. It must run
// after OptionalAuth.
func CartKey(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var key string
			if raw := UserIDFromContext(ctx); raw != "" {
				userID, err := uuid.Parse(raw)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
					return
				}
				key = cart.UserKey(userID)
			} else {
				raw := strings.TrimSpace(r.Header.Get(CartSessionHeader))
				if raw == "" {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session required"))
					return
				}
				sessionID, err := uuid.Parse(raw)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session must be a uuid"))
					return
				}
				key = cart.GuestKey(sessionID)
			}

			ctx = WithCartKey(ctx, key)
			if logg != nil {
				ctx = logg.WithCartKey(ctx, key)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
