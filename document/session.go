package document

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is returned by Session.Load when a newer load replaced it
// before it finished. Its result is discarded.
var ErrSuperseded = errors.New("load superseded by a newer document")

// Session tracks the document currently shown by one viewer. Starting a
// new load cancels the one in flight, and a result that arrives after its
// load was superseded is never committed.
type Session struct {
	loader *Loader

	mu      sync.Mutex
	gen     uint64
	cancel  context.CancelFunc
	current *Document
}

// NewSession creates a session using loader.
func NewSession(loader *Loader) *Session {
	return &Session{loader: loader}
}

// Load replaces the session's document. On success the previous document
// is closed and the new one becomes current.
func (s *Session) Load(ctx context.Context, req Request) (*Document, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	lctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	doc, err := s.loader.Load(lctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		if doc != nil {
			doc.Close()
		}
		return nil, ErrSuperseded
	}
	s.cancel = nil
	cancel()
	if err != nil {
		return nil, err
	}

	if s.current != nil {
		s.current.Close()
	}
	s.current = doc
	return doc, nil
}

// Current returns the most recently committed document, or nil.
func (s *Session) Current() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Close cancels any load in flight and closes the current document.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.current == nil {
		return nil
	}
	err := s.current.Close()
	s.current = nil
	return err
}
