package main

import (
	"errors"
	"slices"
	"sync"

	"imagecutter/internal/cutter"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// session wraps an Editor for use from concurrent requests. Every access to
// the editor goes through mu so pointer events are applied one at a time.
type session struct {
	ID   string
	Name string

	mu     sync.Mutex
	editor *Editor
}

type sessionView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Canvas   cutter.Size   `json:"canvas"`
	Rect     cutter.Rect   `json:"rect"`
	Mode     cutter.Handle `json:"mode"`
	Dragging bool          `json:"dragging"`
	Settings Settings      `json:"settings"`
}

// do runs fn with exclusive access to the editor and returns a snapshot of
// the session afterwards.
func (s *session) do(fn func(e *Editor) error) (sessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.editor); err != nil {
		return sessionView{}, err
	}
	return sessionView{
		ID:       s.ID,
		Name:     s.Name,
		Canvas:   s.editor.Canvas(),
		Rect:     s.editor.Rect(),
		Mode:     s.editor.Mode(),
		Dragging: s.editor.Dragging(),
		Settings: s.editor.Settings(),
	}, nil
}

// maxSessions bounds how many decoded images the web app keeps in memory.
const maxSessions = 16

// sessionStore keeps the most recently opened sessions. Adding beyond the
// limit drops the oldest one.
type sessionStore struct {
	mu       sync.RWMutex
	limit    int
	order    []string
	sessions map[string]*session
}

func newSessionStore(limit int) *sessionStore {
	return &sessionStore{limit: limit, sessions: make(map[string]*session)}
}

func (s *sessionStore) add(name string, e *Editor) *session {
	sess := &session{ID: uuid.NewString(), Name: name, editor: e}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	s.order = append(s.order, sess.ID)
	for s.limit > 0 && len(s.order) > s.limit {
		delete(s.sessions, s.order[0])
		s.order = s.order[1:]
	}
	return sess
}

func (s *sessionStore) get(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionStore) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return true
}

func (s *sessionStore) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
