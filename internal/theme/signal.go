package theme

import "sync"

// Signal is the operating system's color-scheme preference.
type Signal interface {
	PrefersDark() bool
	// Subscribe registers fn for changes and returns a function that
	// unregisters it.
	Subscribe(fn func(dark bool)) (cancel func())
}

// StaticSignal is a Signal whose value is pushed in from outside, e.g. by the
// browser reporting prefers-color-scheme.
type StaticSignal struct {
	mu   sync.Mutex
	dark bool
	next int
	subs map[int]func(bool)
}

func NewStaticSignal(dark bool) *StaticSignal {
	return &StaticSignal{dark: dark, subs: make(map[int]func(bool))}
}

func (s *StaticSignal) PrefersDark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// Set updates the preference and notifies subscribers when it changed.
func (s *StaticSignal) Set(dark bool) {
	s.mu.Lock()
	if s.dark == dark {
		s.mu.Unlock()
		return
	}
	s.dark = dark
	subs := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(dark)
	}
}

func (s *StaticSignal) Subscribe(fn func(dark bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
