package screens

import "context"

// Scope ties the requests a screen starts to the screen's lifetime. Each
// Begin cancels the load the previous Begin started and bumps the generation
// so results that arrive late can be recognised and dropped. Close cancels
// everything. A Scope is used from the Bubble Tea event loop only.
type Scope struct {
	parent     context.Context
	life       context.Context
	lifeCancel context.CancelFunc
	loadCancel context.CancelFunc
	gen        uint64
	closed     bool
}

func NewScope(parent context.Context) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	s := &Scope{parent: parent}
	s.life, s.lifeCancel = context.WithCancel(parent)
	return s
}

// Begin starts a new load generation and returns its context.
func (s *Scope) Begin() (context.Context, uint64) {
	if s.closed {
		s.life, s.lifeCancel = context.WithCancel(s.parent)
		s.closed = false
	}
	if s.loadCancel != nil {
		s.loadCancel()
	}
	ctx, cancel := context.WithCancel(s.life)
	s.loadCancel = cancel
	s.gen++
	return ctx, s.gen
}

// Context returns the screen-lifetime context with the current generation.
// Mutations use it so a reload does not cancel them.
func (s *Scope) Context() (context.Context, uint64) {
	return s.life, s.gen
}

// Current reports whether gen is still the live generation.
func (s *Scope) Current(gen uint64) bool {
	return !s.closed && gen == s.gen
}

// Close cancels everything in flight and makes every earlier generation
// stale.
func (s *Scope) Close() {
	if s.loadCancel != nil {
		s.loadCancel()
		s.loadCancel = nil
	}
	s.lifeCancel()
	s.closed = true
	s.gen++
}
