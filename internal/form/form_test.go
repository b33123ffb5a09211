package form

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

func urlencoded(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/create/", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func multipartRequest(t *testing.T, fields map[string]string, filename string, file []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/create/", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	return r
}

func TestParsePost_Valid(t *testing.T) {
	f, err := ParsePost(httptest.NewRecorder(), urlencoded(url.Values{"text": {"hello"}, "group": {"g1"}}))
	require.NoError(t, err)

	assert.True(t, f.Valid())
	assert.Equal(t, "hello", f.Text)
	require.NotNil(t, f.GroupID())
	assert.Equal(t, "g1", *f.GroupID())
	assert.Nil(t, f.Image)
}

func TestParsePost_NoGroup(t *testing.T) {
	f, err := ParsePost(httptest.NewRecorder(), urlencoded(url.Values{"text": {"hello"}}))
	require.NoError(t, err)
	assert.True(t, f.Valid())
	assert.Nil(t, f.GroupID())
}

func TestParsePost_BlankText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		f, err := ParsePost(httptest.NewRecorder(), urlencoded(url.Values{"text": {text}}))
		require.NoError(t, err)
		assert.False(t, f.Valid(), "text %q", text)
		assert.NotEmpty(t, f.Errors.Get("text"))
	}
}

func TestParsePost_WithImage(t *testing.T) {
	r := multipartRequest(t, map[string]string{"text": "with picture"}, "small.gif", smallGIF)

	f, err := ParsePost(httptest.NewRecorder(), r)
	require.NoError(t, err)
	require.True(t, f.Valid(), "errors: %v", f.Errors)
	require.NotNil(t, f.Image)
	assert.Equal(t, "gif", f.Image.Format)
}

func TestParsePost_MultipartWithoutImage(t *testing.T) {
	r := multipartRequest(t, map[string]string{"text": "no picture"}, "", nil)

	f, err := ParsePost(httptest.NewRecorder(), r)
	require.NoError(t, err)
	assert.True(t, f.Valid())
	assert.Nil(t, f.Image)
}

func TestParsePost_NotAnImage(t *testing.T) {
	r := multipartRequest(t, map[string]string{"text": "bad upload"}, "notes.txt", []byte("plain text"))

	f, err := ParsePost(httptest.NewRecorder(), r)
	require.NoError(t, err)
	assert.False(t, f.Valid())
	assert.NotEmpty(t, f.Errors.Get("image"))
	assert.Empty(t, f.Errors.Get("text"))
	assert.Equal(t, "bad upload", f.Text, "values are kept for re-rendering")
}

func TestParseComment(t *testing.T) {
	f, err := ParseComment(urlencoded(url.Values{"text": {"nice post"}}))
	require.NoError(t, err)
	assert.True(t, f.Valid())

	f, err = ParseComment(urlencoded(url.Values{"text": {"  "}}))
	require.NoError(t, err)
	assert.False(t, f.Valid())
	assert.Equal(t, "This field is required.", f.Errors.Get("text"))
}

func TestErrors_FirstMessageWins(t *testing.T) {
	var e Errors
	assert.False(t, e.Any())

	e.Add("text", "first")
	e.Add("text", "second")
	assert.Equal(t, "first", e.Get("text"))
	assert.True(t, e.Any())
}
