// Package handler serves the HTML pages of the blog. Handlers call the
// service layer and turn its results and errors into rendered templates
// and redirects.
package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/media"
)

//go:embed templates
var templateFS embed.FS

// Page template names.
const (
	pageIndex       = "index.html"
	pageGroup       = "group_list.html"
	pageProfile     = "profile.html"
	pageDetail      = "post_detail.html"
	pageCreate      = "create_post.html"
	pageFollow      = "follow.html"
	pageLogin       = "login.html"
	pageSignup      = "signup.html"
	pageLoggedOut   = "logged_out.html"
	pageAboutAuthor = "about_author.html"
	pageAboutTech   = "about_tech.html"
	pageNotFound    = "404.html"
	pageServerError = "500.html"
)

var pageNames = []string{
	pageIndex, pageGroup, pageProfile, pageDetail, pageCreate, pageFollow,
	pageLogin, pageSignup, pageLoggedOut, pageAboutAuthor, pageAboutTech,
	pageNotFound, pageServerError,
}

var templateFuncs = template.FuncMap{
	"mediaURL": media.URL,
	"date": func(t time.Time) string {
		return t.Format("2 January 2006")
	},
	"datetime": func(t time.Time) string {
		return t.Format("2 Jan 2006 15:04")
	},
}

// Renderer executes the embedded page templates. Each page is parsed once
// together with base.html and the shared includes.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// NewRenderer parses every page template.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames)), logger: logger}
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS,
			"templates/base.html",
			"templates/includes/*.html",
			"templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("handler: parsing %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// viewData is what every template receives. Page-specific values go in the
// embedded map.
type viewData map[string]any

// data starts the view data of a request with the signed-in user.
func (rn *Renderer) data(r *http.Request) viewData {
	d := viewData{"Path": r.URL.Path}
	if u, ok := auth.UserFromContext(r.Context()); ok {
		d["User"] = u
	}
	return d
}

// render executes page into a buffer first, so a template error becomes a
// clean 500 instead of a half-written page.
func (rn *Renderer) render(w http.ResponseWriter, status int, page string, data viewData) {
	tmpl, ok := rn.pages[page]
	if !ok {
		rn.logger.Error("unknown template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		rn.logger.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
