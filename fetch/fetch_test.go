package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdflayer/model"
)

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		case "/doc.pdf":
			if c, err := r.Cookie("session"); err != nil || c.Value != "abc" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("%PDF-1.4 test"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := NewHTTPSource(5 * time.Second)
	require.NoError(t, err)

	_, err = src.Fetch(context.Background(), srv.URL+"/doc.pdf")
	var fe *model.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, srv.URL+"/doc.pdf", fe.Source)
	assert.True(t, model.IsDocumentFatal(err))

	_, err = src.Fetch(context.Background(), srv.URL+"/login")
	require.NoError(t, err)

	data, err := src.Fetch(context.Background(), srv.URL+"/doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))
}

func TestHTTPSource_SizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 100))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(5 * time.Second)
	require.NoError(t, err)
	src.MaxBytes = 10

	_, err = src.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestHTTPSource_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(5 * time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("%PDF-a"), 0o644))

	src := FileSource{Root: dir}

	data, err := src.Fetch(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-a", string(data))

	data, err = src.Fetch(context.Background(), "file://"+filepath.Join(dir, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-a", string(data))

	_, err = src.Fetch(context.Background(), "../escape.pdf")
	var fe *model.FetchError
	assert.ErrorAs(t, err, &fe)

	_, err = src.Fetch(context.Background(), "missing.pdf")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRouter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("from http"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.pdf"), []byte("from file"), 0o644))

	r, err := NewRouter(5*time.Second, dir)
	require.NoError(t, err)
	loc := r.Bytes.(*BytesSource).Put("doc", []byte("from memory"))

	tests := []struct {
		location string
		want     string
	}{
		{srv.URL + "/x.pdf", "from http"},
		{"local.pdf", "from file"},
		{loc, "from memory"},
	}
	for _, tt := range tests {
		data, err := r.Fetch(context.Background(), tt.location)
		require.NoError(t, err, tt.location)
		assert.Equal(t, tt.want, string(data))
	}

	_, err = r.Fetch(context.Background(), "mem:unknown")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
