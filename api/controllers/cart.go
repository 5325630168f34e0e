package controllers

import (
	"net/http"

	"github.com/angelmondragon/fastfood-backend/api/middleware"
	"github.com/angelmondragon/fastfood-backend/api/responses"
	"github.com/angelmondragon/fastfood-backend/api/validators"
	"github.com/angelmondragon/fastfood-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type addToCartRequest struct {
	ItemID   int64 `json:"item_id" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"min=0,max=99"`
}

func cartKeyFrom(r *http.Request) (string, error) {
	key := middleware.CartKeyFromContext(r.Context())
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session required")
	}
	return key, nil
}

// CartView returns the caller's cart lines and total.
func CartView(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := cartKeyFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.View(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// CartAddItem adds quantity of a menu item, merging into an existing line.
// A zero or missing quantity adds one.
func CartAddItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := cartKeyFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body addToCartRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		line, err := svc.AddItem(r.Context(), key, body.ItemID, body.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart.NewLineDTO(*line))
	}
}

// CartRemoveLine deletes one line from the caller's cart.
func CartRemoveLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := cartKeyFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid line id"))
			return
		}
		if err := svc.RemoveLine(r.Context(), key, lineID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
