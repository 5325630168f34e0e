package controllers

import (
	"net/http"

	"github.com/angelmondragon/fastfood-backend/api/middleware"
	"github.com/angelmondragon/fastfood-backend/api/responses"
	"github.com/angelmondragon/fastfood-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/fastfood-backend/pkg/errors"
	"github.com/angelmondragon/fastfood-backend/pkg/logger"
)

// GoogleLogin redirects the browser to Google's consent screen.
func GoogleLogin(svc auth.GoogleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "google sign-in is not enabled"))
			return
		}
		target, err := svc.AuthCodeURL(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		http.Redirect(w, r, target, http.StatusFound)
	}
}

// GoogleCallback completes the OAuth exchange and returns session tokens.
func GoogleCallback(svc auth.GoogleService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "google sign-in is not enabled"))
			return
		}

		q := r.URL.Query()
		if remote := q.Get("error"); remote != "" {
			err := pkgerrors.New(pkgerrors.CodeUnauthorized, "google sign-in was cancelled").
				WithDetails(map[string]any{"provider_error": remote})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Callback(r.Context(), q.Get("state"), q.Get("code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set(middleware.TokenHeader, result.AccessToken)
		responses.WriteSuccess(w, result)
	}
}
