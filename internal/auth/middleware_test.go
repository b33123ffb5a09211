package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/yatube/internal/model"
)

// fakeResolver accepts exactly one token.
type fakeResolver struct {
	token string
	user  *model.User
}

func (f *fakeResolver) UserFromToken(_ context.Context, token string) (*model.User, error) {
	if token != f.token {
		return nil, errors.New("bad token")
	}
	return f.user, nil
}

// whoami writes the username of the request's user, or "anonymous".
var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if u, ok := UserFromContext(r.Context()); ok {
		w.Write([]byte(u.Username))
		return
	}
	w.Write([]byte("anonymous"))
})

func TestAuthenticate(t *testing.T) {
	resolver := &fakeResolver{token: "good", user: &model.User{ID: "u1", Username: "leo"}}
	h := Authenticate(resolver)(whoami)

	tests := []struct {
		name        string
		cookie      string
		want        string
		wantCleared bool
	}{
		{"no cookie", "", "anonymous", false},
		{"valid cookie", "good", "leo", false},
		{"stale cookie", "expired", "anonymous", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Body.String())
			cleared := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == CookieName && c.MaxAge < 0 {
					cleared = true
				}
			}
			assert.Equal(t, tt.wantCleared, cleared)
		})
	}
}

func TestRequireLogin_RedirectsAnonymous(t *testing.T) {
	h := RequireLogin(whoami)

	tests := []struct {
		path string
		want string
	}{
		{"/create/", "/auth/login/?next=/create/"},
		{"/follow/", "/auth/login/?next=/follow/"},
		{"/posts/abc/edit/", "/auth/login/?next=/posts/abc/edit/"},
		{"/follow/?page=2", "/auth/login/?next=/follow/%3Fpage%3D2"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

func TestRequireLogin_PassesSignedIn(t *testing.T) {
	h := RequireLogin(whoami)

	req := httptest.NewRequest(http.MethodGet, "/create/", nil)
	req = req.WithContext(WithUser(req.Context(), &model.User{ID: "u1", Username: "leo"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "leo", rec.Body.String())
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                  "/",
		"/create/":          "/create/",
		"https://evil.com/": "/",
		"//evil.com/":       "/",
		"/\\evil.com":       "/",
		"profile/leo/":      "/",
		"/profile/leo/?x=1": "/profile/leo/?x=1",
	}
	for in, want := range tests {
		assert.Equal(t, want, SafeNext(in, "/"), in)
	}
}

func TestSessionCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "jwt-value", true)
	ClearSessionCookie(rec)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	assert.Equal(t, "jwt-value", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, int(SessionLifetime.Seconds()), cookies[0].MaxAge)

	assert.Equal(t, "", cookies[1].Value)
	assert.Less(t, cookies[1].MaxAge, 0)
}
