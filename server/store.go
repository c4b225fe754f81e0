package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tsawler/pdflayer/document"
	"github.com/tsawler/pdflayer/model"
)

// entry is a loaded document with the layout it is shown at.
type entry struct {
	doc       *document.Document
	mu        sync.Mutex
	layout    model.ViewerLayout
	container float64
}

func (e *entry) view() (model.ViewerLayout, float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layout, e.container
}

func (e *entry) setContainer(width float64) {
	e.mu.Lock()
	e.container = width
	e.mu.Unlock()
}

// Store holds the documents loaded through the server.
type Store struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*entry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[uuid.UUID]*entry)}
}

func (s *Store) put(e *entry) {
	s.mu.Lock()
	s.docs[e.doc.ID] = e
	s.mu.Unlock()
}

func (s *Store) get(id uuid.UUID) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.docs[id]
	return e, ok
}

// remove deletes and closes a document.
func (s *Store) remove(id uuid.UUID) bool {
	s.mu.Lock()
	e, ok := s.docs[id]
	delete(s.docs, id)
	s.mu.Unlock()
	if ok {
		e.doc.Close()
	}
	return ok
}

// Len returns the number of open documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// CloseAll closes and forgets every document.
func (s *Store) CloseAll() {
	s.mu.Lock()
	docs := s.docs
	s.docs = make(map[uuid.UUID]*entry)
	s.mu.Unlock()
	for _, e := range docs {
		e.doc.Close()
	}
}
