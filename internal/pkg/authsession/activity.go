// internal/pkg/authsession/activity.go
package authsession

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period after the last interaction
// before the session TTL is extended.
const DefaultDebounce = 10 * time.Minute

// ActivityMonitor keeps an actively-used session alive without hitting
// the remote provider on every interaction. Each Touch restarts the
// debounce timer; the refresh callback runs only after a full quiet
// period. The first timer is armed on Start: a session that just
// became active counts as activity.
type ActivityMonitor struct {
	mu       sync.Mutex
	timer    *time.Timer
	debounce time.Duration
	refresh  func()
	stopped  bool
}

func NewActivityMonitor(debounce time.Duration, refresh func()) *ActivityMonitor {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &ActivityMonitor{
		debounce: debounce,
		refresh:  refresh,
	}
}

// Start arms the initial timer.
func (m *ActivityMonitor) Start() {
	m.Touch()
}

// Touch (re)starts the debounce timer.
func (m *ActivityMonitor) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, m.fire)
}

func (m *ActivityMonitor) fire() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.timer = nil
	refresh := m.refresh
	m.mu.Unlock()

	refresh()
}

// Stop cancels any pending timer and detaches the monitor. Further
// Touch calls are no-ops.
func (m *ActivityMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}
