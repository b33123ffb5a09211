// Package media stores post images on an afero filesystem.
//
// Keys are slash-separated paths relative to the store root, e.g.
// "posts/cq1m3v2p9olc6atspt0g.png". The same keys are served under /media/.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/rs/xid"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// PostsDir is the key prefix for post images.
const PostsDir = "posts"

// MaxImageBytes caps a single upload.
const MaxImageBytes = 5 << 20

// ErrNotImage is returned when an upload does not decode as an image.
var ErrNotImage = errors.New("media: upload is not a valid image")

// ErrTooLarge is returned when an upload exceeds MaxImageBytes.
var ErrTooLarge = errors.New("media: image is too large")

// Store saves and serves uploaded images.
type Store struct {
	fs afero.Fs
}

// NewStore wraps any afero filesystem (MemMapFs in tests).
func NewStore(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// NewDiskStore roots a store at dir on the local disk, creating it if needed.
func NewDiskStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: creating %s: %w", dir, err)
	}
	return NewStore(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// Image is a validated upload ready to be saved.
type Image struct {
	Data   []byte
	Format string // "png", "jpeg", "gif", "webp", "bmp"
	Width  int
	Height int
}

// Decode reads r fully and checks that it is an image in a registered format.
func Decode(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("media: reading upload: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, ErrTooLarge
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrNotImage
	}

	return &Image{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// SavePostImage writes img under PostsDir with a fresh name and returns its key.
func (s *Store) SavePostImage(img *Image) (string, error) {
	key := path.Join(PostsDir, xid.New().String()+extension(img.Format))

	if err := s.fs.MkdirAll(fsPath(PostsDir), 0o755); err != nil {
		return "", fmt.Errorf("media: creating %s: %w", PostsDir, err)
	}
	if err := afero.WriteFile(s.fs, fsPath(key), img.Data, 0o644); err != nil {
		return "", fmt.Errorf("media: writing %s: %w", key, err)
	}
	return key, nil
}

// Remove deletes the file at key. A missing file is not an error.
func (s *Store) Remove(key string) error {
	if !validKey(key) {
		return nil
	}
	if err := s.fs.Remove(fsPath(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("media: removing %s: %w", key, err)
	}
	return nil
}

// Handler serves stored files. Mount it with the /media/ prefix stripped.
// Directory listings are not served.
func (s *Store) Handler() http.Handler {
	files := http.FileServer(afero.NewHttpFs(s.fs).Dir("/"))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

// URL returns the public path of a key, or "" for an empty key.
func URL(key string) string {
	if key == "" {
		return ""
	}
	return "/media/" + key
}

// fsPath roots a key at "/" so MemMapFs and the HTTP file server agree on
// the name.
func fsPath(key string) string {
	return "/" + key
}

func validKey(key string) bool {
	return key != "" && !strings.Contains(key, "..") && !strings.HasPrefix(key, "/")
}

func extension(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "":
		return ".img"
	default:
		return "." + format
	}
}
