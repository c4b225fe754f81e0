// Package fetch acquires document bytes from a location string.
//
// Locations are URLs (http, https, file, mem) or plain filesystem paths.
// Every failure is returned as *model.FetchError.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/tsawler/pdflayer/internal/logging"
	"github.com/tsawler/pdflayer/model"
)

// DefaultMaxBytes caps a single fetch at 256 MiB.
const DefaultMaxBytes = 256 << 20

// ErrTooLarge is wrapped when a document exceeds the size limit.
var ErrTooLarge = errors.New("document exceeds size limit")

// Source fetches the bytes at location.
type Source interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, location string) ([]byte, error)

func (f SourceFunc) Fetch(ctx context.Context, location string) ([]byte, error) {
	return f(ctx, location)
}

// HTTPSource fetches over HTTP(S). Cookies set by the server are kept in a
// jar scoped by public suffix and sent on later requests to the same site.
type HTTPSource struct {
	Client    *http.Client
	UserAgent string
	MaxBytes  int64
}

// NewHTTPSource creates an HTTP source with a cookie jar and the given
// per-request timeout.
func NewHTTPSource(timeout time.Duration) (*HTTPSource, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		Client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
		UserAgent: "pdflayer",
		MaxBytes:  DefaultMaxBytes,
	}, nil
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	data, err := s.fetch(ctx, location)
	if err != nil {
		return nil, &model.FetchError{Source: location, Err: err}
	}
	return data, nil
}

func (s *HTTPSource) fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf, */*")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	logging.Logger().Debug("fetching document", "url", location, "content_length", resp.ContentLength)
	return readLimited(resp.Body, s.MaxBytes)
}

// FileSource reads from the local filesystem. When Root is set, relative
// paths resolve against it and paths escaping it are rejected.
type FileSource struct {
	Root     string
	MaxBytes int64
}

// Fetch implements Source. location may be a path or a file:// URL.
func (s FileSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	data, err := s.read(ctx, location)
	if err != nil {
		return nil, &model.FetchError{Source: location, Err: err}
	}
	return data, nil
}

func (s FileSource) read(ctx context.Context, location string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.resolve(location)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, s.MaxBytes)
}

func (s FileSource) resolve(location string) (string, error) {
	path := location
	if strings.HasPrefix(location, "file://") {
		u, err := url.Parse(location)
		if err != nil {
			return "", err
		}
		path = u.Path
	}
	if s.Root == "" {
		return path, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.Root, path)
	}
	rel, err := filepath.Rel(s.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside %s", location, s.Root)
	}
	return path, nil
}

// BytesSource serves documents registered in memory under "mem:" names.
type BytesSource struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewBytesSource creates an empty in-memory source.
func NewBytesSource() *BytesSource {
	return &BytesSource{docs: make(map[string][]byte)}
}

// Put registers data and returns its location, "mem:" + name.
func (s *BytesSource) Put(name string, data []byte) string {
	s.mu.Lock()
	s.docs[name] = data
	s.mu.Unlock()
	return "mem:" + name
}

// Fetch implements Source.
func (s *BytesSource) Fetch(ctx context.Context, location string) ([]byte, error) {
	name := strings.TrimPrefix(location, "mem:")
	s.mu.RLock()
	data, ok := s.docs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, &model.FetchError{Source: location, Err: os.ErrNotExist}
	}
	return data, nil
}

// Router dispatches on the location scheme. Locations without a known
// scheme are treated as file paths.
type Router struct {
	HTTP  Source
	File  Source
	Bytes Source
}

// NewRouter creates a router with an HTTP source using timeout, a file
// source rooted at fileRoot and an empty in-memory source.
func NewRouter(timeout time.Duration, fileRoot string) (*Router, error) {
	h, err := NewHTTPSource(timeout)
	if err != nil {
		return nil, err
	}
	return &Router{
		HTTP:  h,
		File:  FileSource{Root: fileRoot, MaxBytes: DefaultMaxBytes},
		Bytes: NewBytesSource(),
	}, nil
}

// Fetch implements Source.
func (r *Router) Fetch(ctx context.Context, location string) ([]byte, error) {
	var src Source
	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		src = r.HTTP
	case strings.HasPrefix(location, "mem:"):
		src = r.Bytes
	default:
		src = r.File
	}
	if src == nil {
		return nil, &model.FetchError{Source: location, Err: errors.New("no source configured for location")}
	}
	return src.Fetch(ctx, location)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}
	return data, nil
}
