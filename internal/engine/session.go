package engine

import (
	"sync"

	"github.com/pleimann/marionette/internal/inject"
)

// Session is the exclusive hold on the injection resource for one
// top-level Execute call. It is itself an Injector: every call is
// serialised so concurrent Parallel branches never tear a single event,
// although events from sibling branches may interleave.
type Session struct {
	mu      sync.Mutex
	inj     inject.Injector
	release func()
	once    sync.Once
}

// Release gives the resource back. It is safe to call more than once.
func (s *Session) Release() {
	s.once.Do(s.release)
}

func (s *Session) MovePointer(x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inj.MovePointer(x, y)
}

func (s *Session) InjectButton(code inject.ButtonCode, dir inject.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inj.InjectButton(code, dir)
}

func (s *Session) InjectKey(code inject.KeyCode, dir inject.Direction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inj.InjectKey(code, dir)
}

func (s *Session) InjectText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inj.InjectText(text)
}

func (s *Session) InjectScroll(axis inject.Axis, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inj.InjectScroll(axis, delta)
}
