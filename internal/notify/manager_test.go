package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

const waitFor = time.Second

func stateOf(t *testing.T, m *Manager, id string) func() State {
	t.Helper()
	return func() State {
		n, ok := m.Get(id)
		if !ok {
			return State(-1)
		}
		return n.State
	}
}

func requireState(t *testing.T, m *Manager, id string, want State) {
	t.Helper()
	get := stateOf(t, m, id)
	require.Eventually(t, func() bool { return get() == want }, waitFor, time.Millisecond,
		"state of %s never became %s", id, want)
}

func requireGone(t *testing.T, m *Manager, id string) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, ok := m.Get(id)
		return !ok
	}, waitFor, time.Millisecond, "notification %s was not removed", id)
}

func TestEnqueueNaturalExpiry(t *testing.T) {
	mock := clock.NewMock()
	m := New(WithClock(mock))
	defer m.Close()

	id := m.Enqueue("Created", KindSuccess, 3*time.Second)
	require.NotEmpty(t, id)

	active := m.Active()
	require.Len(t, active, 1)
	require.Equal(t, "Created", active[0].Message)
	require.Equal(t, KindSuccess, active[0].Kind)
	require.Equal(t, StateEntering, active[0].State)
	require.Equal(t, 3*time.Second, active[0].Duration)

	mock.Add(EnterDelay)
	requireState(t, m, id, StateVisible)

	mock.Add(3*time.Second - EnterDelay)
	requireState(t, m, id, StateLeaving)

	mock.Add(Grace)
	requireGone(t, m, id)
	require.Empty(t, m.Active())
}

func TestDismissRemovesBeforeExpiry(t *testing.T) {
	mock := clock.NewMock()
	start := mock.Now()
	m := New(WithClock(mock))
	defer m.Close()

	id := m.Enqueue("Created", KindSuccess, 3*time.Second)
	other := m.Enqueue("Other", KindError, 10*time.Second)

	mock.Add(100 * time.Millisecond)
	requireState(t, m, id, StateVisible)

	require.True(t, m.Dismiss(id))
	require.Equal(t, StateLeaving, stateOf(t, m, id)())
	require.False(t, m.Dismiss(id), "second dismiss must be a no-op")

	mock.Add(Grace)
	requireGone(t, m, id)

	// removal happened at 400ms, well before the 3s natural expiry
	require.Less(t, mock.Now().Sub(start), 3*time.Second)

	require.False(t, m.Remove(id))
	require.False(t, m.Dismiss(id))

	mock.Add(3 * time.Second)
	active := m.Active()
	require.Len(t, active, 1)
	require.Equal(t, other, active[0].ID)
}

func TestRemoveIsIdempotentAndKeyedByID(t *testing.T) {
	m := New(WithClock(clock.NewMock()))
	defer m.Close()

	a := m.Enqueue("a", KindSuccess, time.Minute)
	b := m.Enqueue("b", KindSuccess, time.Minute)
	c := m.Enqueue("c", KindSuccess, time.Minute)

	require.True(t, m.Remove(b))
	require.False(t, m.Remove(b))
	require.False(t, m.Remove("missing"))

	active := m.Active()
	require.Len(t, active, 2)
	require.Equal(t, a, active[0].ID)
	require.Equal(t, c, active[1].ID)
}

func TestBurstKeepsOrderAndUniqueIDs(t *testing.T) {
	m := New(WithClock(clock.NewMock()))
	defer m.Close()

	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := m.Enqueue(fmt.Sprintf("msg-%d", i), KindError, time.Second)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}

	active := m.Active()
	require.Len(t, active, n)
	for i, note := range active {
		require.Equal(t, fmt.Sprintf("msg-%d", i), note.Message)
	}
}

func TestConcurrentEnqueueLosesNothing(t *testing.T) {
	m := New(WithClock(clock.NewMock()))
	defer m.Close()

	const workers, per = 8, 25
	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func(w int) {
			for i := 0; i < per; i++ {
				m.Error(fmt.Sprintf("w%d-%d", w, i), time.Minute)
			}
			done <- struct{}{}
		}(w)
	}
	for w := 0; w < workers; w++ {
		<-done
	}
	require.Len(t, m.Active(), workers*per)
}

func TestShortDurationSkipsVisible(t *testing.T) {
	mock := clock.NewMock()
	m := New(WithClock(mock))
	defer m.Close()

	id := m.Enqueue("quick", KindError, 50*time.Millisecond)
	mock.Add(50 * time.Millisecond)
	requireState(t, m, id, StateLeaving)

	mock.Add(50 * time.Millisecond)
	require.Equal(t, StateLeaving, stateOf(t, m, id)())

	mock.Add(Grace)
	requireGone(t, m, id)
}

func TestDefaultDuration(t *testing.T) {
	m := New(WithClock(clock.NewMock()), WithDefaultDuration(2*time.Second))
	defer m.Close()

	id := m.Success("saved", 0)
	n, ok := m.Get(id)
	require.True(t, ok)
	require.Equal(t, 2*time.Second, n.Duration)

	plain := New(WithClock(clock.NewMock()))
	defer plain.Close()
	id = plain.Error("oops", -1)
	n, ok = plain.Get(id)
	require.True(t, ok)
	require.Equal(t, DefaultDuration, n.Duration)
	require.Equal(t, KindError, n.Kind)
}

func TestCloseCancelsTimers(t *testing.T) {
	mock := clock.NewMock()
	m := New(WithClock(mock))

	id := m.Enqueue("bye", KindSuccess, time.Second)
	m.Close()
	m.Close()

	mock.Add(10 * time.Second)
	require.Empty(t, m.Active())
	require.False(t, m.Dismiss(id))
	require.False(t, m.Remove(id))
	require.Empty(t, m.Enqueue("late", KindSuccess, time.Second))
}

func TestCloseClosesChanges(t *testing.T) {
	m := New(WithClock(clock.NewMock()))
	m.Close()

	select {
	case _, ok := <-m.Changes():
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Changes still open after Close")
	}
}

func TestChangesSignalsMutations(t *testing.T) {
	m := New(WithClock(clock.NewMock()))
	defer m.Close()

	id := m.Enqueue("hello", KindSuccess, time.Second)
	select {
	case <-m.Changes():
	default:
		t.Fatal("expected a change signal after Enqueue")
	}

	require.True(t, m.Remove(id))
	select {
	case <-m.Changes():
	default:
		t.Fatal("expected a change signal after Remove")
	}

	require.False(t, m.Remove(id))
	select {
	case <-m.Changes():
		t.Fatal("no-op remove must not signal")
	default:
	}
}
