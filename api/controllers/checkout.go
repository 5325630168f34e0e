package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/fastfood-backend/api/middleware"
	"github.com/angelmondragon/fastfood-backend/api/responses"
	"github.com/angelmondragon/fastfood-backend/api/validators"
	"github.com/angelmondragon/fastfood-backend/internal/checkout"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
)

type checkoutRequest struct {
	CustomerName string `json:"customer_name" validate:"max=100"`
}

// Checkout drains the caller's cart into order history. Signed-in users are
// recorded under their display name; guests may supply a name and otherwise
// get guestName.
func Checkout(svc checkout.Service, guestName string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := cartKeyFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		result, err := svc.Checkout(r.Context(), key, customerName(r, body, guestName))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"record_count":  result.RecordCount,
				"total_charged": result.TotalCharged.StringFixed(2),
			})
			logg.Info(ctx, "checkout.completed")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func customerName(r *http.Request, body checkoutRequest, guestName string) string {
	if middleware.UserIDFromContext(r.Context()) != "" {
		if name := middleware.DisplayNameFromContext(r.Context()); name != "" {
			return name
		}
		if email := middleware.EmailFromContext(r.Context()); email != "" {
			return email
		}
	}
	if name := strings.TrimSpace(body.CustomerName); name != "" {
		return name
	}
	return guestName
}
