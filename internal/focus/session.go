package focus

import (
	"sync"

	"github.com/mj1618/demopilot/internal/model"
)

// Session remembers the window the last successful focus landed on. Handles
// are only trusted until the next discovery, which invalidates them.
type Session struct {
	mu      sync.Mutex
	current *model.Window
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{}
}

// Current returns the last focused window, if any.
func (s *Session) Current() (model.Window, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return model.Window{}, false
	}
	return *s.current, true
}

// Set records w as the focused window.
func (s *Session) Set(w model.Window) {
	s.mu.Lock()
	s.current = &w
	s.mu.Unlock()
}

// Invalidate forgets the remembered window.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}
