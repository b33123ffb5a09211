// Package form binds and validates submitted post and comment forms.
//
// A form carries the raw values back to the template together with
// per-field error messages, so an invalid submission re-renders filled in.
package form

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sakif/yatube/internal/media"
)

// MaxUploadBytes bounds a whole multipart request (image plus fields).
const MaxUploadBytes = media.MaxImageBytes + 1<<20

// Errors maps a field name to its message. A nil map means no errors.
type Errors map[string]string

// Add records msg for field unless the field already has an error.
func (e *Errors) Add(field, msg string) {
	if *e == nil {
		*e = make(Errors)
	}
	if _, ok := (*e)[field]; !ok {
		(*e)[field] = msg
	}
}

// Get returns the message for field, or "".
func (e Errors) Get(field string) string {
	return e[field]
}

// Any reports whether any field failed.
func (e Errors) Any() bool {
	return len(e) > 0
}

// PostForm is the create/edit post form.
type PostForm struct {
	Text  string
	Group string // group ID, "" for none
	Image *media.Image

	Errors Errors
}

// Valid reports whether the form passed validation.
func (f *PostForm) Valid() bool { return !f.Errors.Any() }

// GroupID returns the selected group as the nullable reference a Post stores.
func (f *PostForm) GroupID() *string {
	if f.Group == "" {
		return nil
	}
	g := f.Group
	return &g
}

// ParsePost reads a post form from a urlencoded or multipart request.
//
// Only a malformed request body is returned as an error; field problems end
// up in f.Errors. Whether the group exists is checked by the caller.
func ParsePost(w http.ResponseWriter, r *http.Request) (*PostForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	if err := parse(r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			f := &PostForm{}
			f.Errors.Add("image", "File is too large.")
			return f, nil
		}
		return nil, err
	}

	f := &PostForm{
		Text:  r.PostFormValue("text"),
		Group: strings.TrimSpace(r.PostFormValue("group")),
	}
	f.validateText()

	file, _, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return nil, fmt.Errorf("form: reading image: %w", err)
	default:
		defer file.Close()
		img, err := media.Decode(file)
		switch {
		case errors.Is(err, media.ErrTooLarge):
			f.Errors.Add("image", "File is too large.")
		case err != nil:
			f.Errors.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		default:
			f.Image = img
		}
	}

	return f, nil
}

func (f *PostForm) validateText() {
	if strings.TrimSpace(f.Text) == "" {
		f.Errors.Add("text", "This field is required.")
	}
}

// CommentForm is the add-comment form on the post detail page.
type CommentForm struct {
	Text   string
	Errors Errors
}

// Valid reports whether the form passed validation.
func (f *CommentForm) Valid() bool { return !f.Errors.Any() }

// ParseComment reads and validates a comment submission.
func ParseComment(r *http.Request) (*CommentForm, error) {
	if err := parse(r); err != nil {
		return nil, err
	}
	f := &CommentForm{Text: r.PostFormValue("text")}
	if strings.TrimSpace(f.Text) == "" {
		f.Errors.Add("text", "This field is required.")
	}
	return f, nil
}

func parse(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			return fmt.Errorf("form: parsing multipart body: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("form: parsing body: %w", err)
	}
	return nil
}
