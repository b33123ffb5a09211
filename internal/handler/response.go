package handler

// Response helpers shared by every page handler.
//
// Domain errors from the service layer are turned into pages and redirects
// here and nowhere else:
//
//	ErrNotFound     → 404 page
//	ErrUnauthorized → 302 to the login page with ?next=
//	ErrForbidden    → 302 to a read-only view chosen by the caller
//	anything else   → 500 page, logged
//
// Validation errors never reach handleError: handlers re-render the form
// with the field message instead.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/model"
)

// writeJSON sends a JSON response with the given status code.
// Headers and status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// handleError maps err to a response. forbidden is where a permission
// failure is sent; "" falls back to the home page.
func (rn *Renderer) handleError(w http.ResponseWriter, r *http.Request, err error, forbidden string) {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		rn.notFound(w, r)
	case errors.Is(err, apperror.ErrUnauthorized):
		http.Redirect(w, r, auth.LoginRedirectURL(r.URL.RequestURI()), http.StatusFound)
	case errors.Is(err, apperror.ErrForbidden):
		if forbidden == "" {
			forbidden = "/"
		}
		http.Redirect(w, r, forbidden, http.StatusFound)
	default:
		rn.serverError(w, r, err)
	}
}

func (rn *Renderer) notFound(w http.ResponseWriter, r *http.Request) {
	rn.render(w, http.StatusNotFound, pageNotFound, rn.data(r))
}

// serverError logs err with the request that caused it and shows the 500
// page. Internal details never reach the client.
func (rn *Renderer) serverError(w http.ResponseWriter, r *http.Request, err error) {
	rn.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	rn.render(w, http.StatusInternalServerError, pageServerError, rn.data(r))
}

// redirect sends a 302, the status every form submission ends with.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusFound)
}

// NotFound serves the 404 page for unknown routes.
func (rn *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rn.notFound(w, r)
}

// currentUser returns the signed-in user or nil.
func currentUser(r *http.Request) *model.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}
