package handler

import (
	"context"
	"net/http"
	"time"
)

// HandleAboutAuthor renders the static "about the author" page.
func (rn *Renderer) HandleAboutAuthor(w http.ResponseWriter, r *http.Request) {
	rn.render(w, http.StatusOK, pageAboutAuthor, rn.data(r))
}

// HandleAboutTech renders the static technologies page.
func (rn *Renderer) HandleAboutTech(w http.ResponseWriter, r *http.Request) {
	rn.render(w, http.StatusOK, pageAboutTech, rn.data(r))
}

// Pinger is a dependency the health check can probe. *sqlite.DB
// implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandleHealth reports whether the database answers.
//
// HTTP: GET /healthz
func HandleHealth(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
