package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/fastfood-backend/api/middleware"
	"github.com/angelmondragon/fastfood-backend/api/responses"
	"github.com/angelmondragon/fastfood-backend/api/validators"
	"github.com/angelmondragon/fastfood-backend/internal/cart"
	"github.com/angelmondragon/fastfood-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"github.com/angelmondragon/fastfood-backend/pkg/pagination"
	"github.com/google/uuid"
)

// OrdersHistory lists order history newest first. Without a limit or cursor
// the full history is returned in one response.
func OrdersHistory(reader orders.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") == "" && q.Get("cursor") == "" {
			records, err := reader.ListAll(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, pagination.Page[orders.RecordDTO]{Items: records})
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := reader.ListPage(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(q.Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// OrdersMine lists the signed-in user's own orders.
func OrdersMine(reader orders.Reader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}
		records, err := reader.ListByCustomer(r.Context(), cart.UserKey(userID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pagination.Page[orders.RecordDTO]{Items: records})
	}
}
