// Package notify keeps the transient toast notifications shown by the TUI.
//
// Each notification walks entering -> visible -> leaving and is then removed.
// Timers are per notification and are cancelled whenever the entry goes away,
// so a dismissal racing the natural expiry never removes twice.
package notify

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

const (
	// EnterDelay is how long a new toast stays in StateEntering.
	EnterDelay = 100 * time.Millisecond
	// Grace is the delay between StateLeaving and removal.
	Grace = 300 * time.Millisecond
	// DefaultDuration applies when Enqueue gets a non-positive duration.
	DefaultDuration = 5 * time.Second
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

type State int

const (
	StateEntering State = iota
	StateVisible
	StateLeaving
)

func (s State) String() string {
	switch s {
	case StateEntering:
		return "entering"
	case StateVisible:
		return "visible"
	case StateLeaving:
		return "leaving"
	default:
		return "unknown"
	}
}

// Notification is a snapshot of one active toast.
type Notification struct {
	ID        string
	Message   string
	Kind      Kind
	Duration  time.Duration
	State     State
	CreatedAt time.Time
}

type entry struct {
	n      Notification
	enter  *clock.Timer
	expire *clock.Timer
	remove *clock.Timer
}

func (e *entry) stopTimers() {
	for _, t := range []*clock.Timer{e.enter, e.expire, e.remove} {
		if t != nil {
			t.Stop()
		}
	}
}

// Manager owns the ordered collection of active notifications.
// It is safe for concurrent use.
type Manager struct {
	mu              sync.Mutex
	clock           clock.Clock
	defaultDuration time.Duration
	entries         []*entry
	closed          bool
	changes         chan struct{}
}

type Option func(*Manager)

// WithClock swaps the time source; tests pass clock.NewMock().
func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithDefaultDuration overrides DefaultDuration.
func WithDefaultDuration(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.defaultDuration = d
		}
	}
}

func New(opts ...Option) *Manager {
	m := &Manager{
		clock:           clock.New(),
		defaultDuration: DefaultDuration,
		changes:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enqueue appends a notification and schedules its lifecycle. The expiry is
// measured from now, not from the end of the entering phase.
func (m *Manager) Enqueue(message string, kind Kind, d time.Duration) string {
	if d <= 0 {
		d = m.defaultDuration
	}
	id := newID()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ""
	}
	e := &entry{n: Notification{
		ID:        id,
		Message:   message,
		Kind:      kind,
		Duration:  d,
		State:     StateEntering,
		CreatedAt: m.clock.Now(),
	}}
	e.enter = m.clock.AfterFunc(EnterDelay, func() { m.markVisible(id) })
	e.expire = m.clock.AfterFunc(d, func() { m.Dismiss(id) })
	m.entries = append(m.entries, e)
	m.notifyLocked()
	return id
}

func (m *Manager) Success(message string, d time.Duration) string {
	return m.Enqueue(message, KindSuccess, d)
}

func (m *Manager) Error(message string, d time.Duration) string {
	return m.Enqueue(message, KindError, d)
}

// Dismiss moves the notification to StateLeaving and schedules its removal.
// It reports false when the id is unknown, removed or already leaving.
func (m *Manager) Dismiss(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	e := m.findLocked(id)
	if e == nil || e.n.State == StateLeaving {
		return false
	}
	if e.enter != nil {
		e.enter.Stop()
	}
	if e.expire != nil {
		e.expire.Stop()
	}
	e.n.State = StateLeaving
	e.remove = m.clock.AfterFunc(Grace, func() { m.Remove(id) })
	m.notifyLocked()
	return true
}

// Remove deletes the notification immediately. Removing twice is a no-op.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	kept := m.entries[:0]
	removed := false
	for _, e := range m.entries {
		if e.n.ID == id {
			e.stopTimers()
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	// clear the tail so dropped entries can be collected
	for i := len(kept); i < len(m.entries); i++ {
		m.entries[i] = nil
	}
	m.entries = kept
	if removed {
		m.notifyLocked()
	}
	return removed
}

// Active returns the live notifications in enqueue order.
func (m *Manager) Active() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.n)
	}
	return out
}

// Get returns a snapshot of one notification.
func (m *Manager) Get(id string) (Notification, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e := m.findLocked(id); e != nil {
		return e.n, true
	}
	return Notification{}, false
}

// Changes signals after every mutation. Signals coalesce; receivers should
// re-read Active.
func (m *Manager) Changes() <-chan struct{} {
	return m.changes
}

// Close stops every timer, drops all notifications and closes the Changes
// channel. Later calls are no-ops.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	for _, e := range m.entries {
		e.stopTimers()
	}
	m.entries = nil
	m.closed = true
	// every sender checks closed under mu first
	close(m.changes)
}

func (m *Manager) markVisible(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	e := m.findLocked(id)
	if e == nil || e.n.State != StateEntering {
		return
	}
	e.n.State = StateVisible
	m.notifyLocked()
}

func (m *Manager) findLocked(id string) *entry {
	for _, e := range m.entries {
		if e.n.ID == id {
			return e
		}
	}
	return nil
}

func (m *Manager) notifyLocked() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

// newID returns a time-ordered unique id (UUIDv7: unix millis + random bits).
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
