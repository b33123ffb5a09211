package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/form"
	"github.com/sakif/yatube/internal/service"
)

const oauthStateCookie = "oauth_state"

// AuthHandler serves signup, login and logout, plus the optional GitHub
// OAuth flow.
//
//   - HandleLogin / HandleSignup  → password accounts, session cookie on success
//   - HandleLogout                → clear the session cookie
//   - HandleGitHubLogin           → redirect the browser to GitHub
//   - HandleGitHubCallback        → exchange the code, sign the user in
type AuthHandler struct {
	users  *service.AuthService
	github *auth.GitHubProvider // nil when GitHub login is not configured
	secure bool                 // set Secure on cookies (production, HTTPS)
	rn     *Renderer
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil.
func NewAuthHandler(
	users *service.AuthService,
	github *auth.GitHubProvider,
	secure bool,
	rn *Renderer,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		users:  users,
		github: github,
		secure: secure,
		rn:     rn,
		logger: logger,
	}
}

// HandleLogin shows the login form and checks submitted credentials.
// On success the user goes to the local path in next, or home.
//
// HTTP: GET, POST /auth/login/?next=/create/
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	data := h.rn.data(r)
	data["Next"] = r.URL.Query().Get("next")
	data["Username"] = ""
	data["Error"] = ""
	data["GitHubEnabled"] = h.github != nil

	if r.Method != http.MethodPost {
		h.rn.render(w, http.StatusOK, pageLogin, data)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	next := r.PostFormValue("next")
	data["Next"] = next
	data["Username"] = username

	result, err := h.users.Login(r.Context(), username, r.PostFormValue("password"))
	var appErr *apperror.AppError
	if errors.Is(err, apperror.ErrUnauthorized) && errors.As(err, &appErr) {
		data["Error"] = appErr.Message
		h.rn.render(w, http.StatusOK, pageLogin, data)
		return
	}
	if err != nil {
		h.rn.serverError(w, r, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.secure)
	redirect(w, r, auth.SafeNext(next, "/"))
}

// HandleSignup registers a password account and signs it in.
//
// HTTP: GET, POST /auth/signup/
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	data := h.rn.data(r)
	data["Errors"] = form.Errors{}
	data["Username"] = ""
	data["Email"] = ""

	if r.Method != http.MethodPost {
		h.rn.render(w, http.StatusOK, pageSignup, data)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	username := r.PostFormValue("username")
	email := r.PostFormValue("email")
	data["Username"] = username
	data["Email"] = email

	result, err := h.users.Register(r.Context(), username, email, r.PostFormValue("password"))
	if field, msg, ok := apperror.FieldOf(err); ok {
		var errs form.Errors
		errs.Add(field, msg)
		data["Errors"] = errs
		h.rn.render(w, http.StatusOK, pageSignup, data)
		return
	}
	if err != nil {
		h.rn.serverError(w, r, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.secure)
	redirect(w, r, "/")
}

// HandleLogout clears the session cookie. The JWT itself stays valid until
// it expires, but the browser no longer sends it.
//
// HTTP: GET, POST /auth/logout/
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	data := h.rn.data(r)
	delete(data, "User")
	h.rn.render(w, http.StatusOK, pageLoggedOut, data)
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// A random state value goes into a short-lived cookie; the callback only
// proceeds if GitHub hands the same value back.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		h.rn.notFound(w, r)
		return
	}

	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.github == nil {
		h.rn.notFound(w, r)
		return
	}

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// Single use.
	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		redirect(w, r, auth.LoginURL)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusBadGateway)
		return
	}

	result, err := h.users.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.rn.serverError(w, r, err)
		return
	}

	auth.SetSessionCookie(w, result.Token, h.secure)
	redirect(w, r, "/")
}
