package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/cache"
	"github.com/sakif/yatube/internal/metrics"
	"github.com/sakif/yatube/internal/paginator"
)

// CacheHeader is set to "HIT" on responses served from the page cache.
const CacheHeader = "X-Cache"

// bufferedWriter holds the body back so it can be stored once the handler
// is done.
type bufferedWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (bw *bufferedWriter) WriteHeader(code int) {
	if bw.status == 0 {
		bw.status = code
	}
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	if bw.status == 0 {
		bw.status = http.StatusOK
	}
	return bw.buf.Write(b)
}

// CachePage serves GET responses from pages for the cache's TTL. Only 200
// responses are stored. The key holds the path, the page number and the
// viewer, since the navigation differs per user. Other query parameters are
// not part of the key, and page values that parse to the same number share
// an entry.
//
// Cache failures are logged and the request falls through to next.
func CachePage(pages cache.PageCache, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			key := pageKey(r)
			page, ok, err := pages.Get(r.Context(), key)
			if err != nil {
				logger.Warn("page cache get failed", slog.String("key", key), slog.String("error", err.Error()))
			}
			if ok {
				metrics.CacheLookups.WithLabelValues("hit").Inc()
				w.Header().Set("Content-Type", page.ContentType)
				w.Header().Set(CacheHeader, "HIT")
				w.WriteHeader(http.StatusOK)
				if r.Method == http.MethodGet {
					w.Write(page.Body)
				}
				return
			}
			metrics.CacheLookups.WithLabelValues("miss").Inc()

			bw := &bufferedWriter{ResponseWriter: w}
			next.ServeHTTP(bw, r)

			status := bw.status
			if status == 0 {
				status = http.StatusOK
			}
			if status == http.StatusOK && r.Method == http.MethodGet {
				err := pages.Set(r.Context(), key, &cache.Page{
					ContentType: w.Header().Get("Content-Type"),
					Body:        bw.buf.Bytes(),
				})
				if err != nil {
					logger.Warn("page cache set failed", slog.String("key", key), slog.String("error", err.Error()))
				}
			}

			w.WriteHeader(status)
			w.Write(bw.buf.Bytes())
		})
	}
}

func pageKey(r *http.Request) string {
	number := max(paginator.ParseNumber(r.URL.Query().Get("page")), 1)
	viewer := "anon"
	if u, ok := auth.UserFromContext(r.Context()); ok {
		viewer = u.ID
	}
	return r.URL.Path + "?page=" + strconv.Itoa(number) + "|" + viewer
}
