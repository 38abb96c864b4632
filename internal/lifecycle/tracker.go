// Package lifecycle tracks the pending/error state of the request currently
// driven by a screen.
package lifecycle

import "sync"

// State is what screens render: a busy flag and the last user-facing error.
type State struct {
	Pending      bool
	ErrorMessage string
}

// Tracker is shared by the screens of one application root. Each Begin starts
// a new generation; settling an attempt from an older generation is ignored.
type Tracker struct {
	mu    sync.Mutex
	state State
	gen   uint64
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Attempt identifies one asynchronous operation started with Begin.
type Attempt struct {
	t   *Tracker
	gen uint64
}

// Begin clears the previous error, then marks the tracker pending.
func (t *Tracker) Begin() Attempt {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.ErrorMessage = ""
	t.state.Pending = true
	t.gen++
	return Attempt{t: t, gen: t.gen}
}

// Succeed settles a successful attempt. It returns false for a stale attempt.
func (a Attempt) Succeed() bool {
	return a.settle("", false)
}

// Fail settles a failed attempt with a user-facing message. It returns false
// for a stale attempt.
func (a Attempt) Fail(message string) bool {
	return a.settle(message, true)
}

func (a Attempt) settle(message string, failed bool) bool {
	if a.t == nil {
		return false
	}
	a.t.mu.Lock()
	defer a.t.mu.Unlock()
	if a.gen != a.t.gen {
		return false
	}
	a.t.state.Pending = false
	if failed {
		a.t.state.ErrorMessage = message
	}
	return true
}

// SetError reports a failure that did not go through an attempt, e.g. input
// rejected before any call.
func (t *Tracker) SetError(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.ErrorMessage = message
}

// Clear resets the error without touching the pending flag.
func (t *Tracker) Clear() {
	t.SetError("")
}

// Cancel abandons the in-flight attempt (screen teardown). Its eventual
// settlement becomes a no-op.
func (t *Tracker) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	t.state = State{}
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
