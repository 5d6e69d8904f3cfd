package liveness

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Monitor is a dead-man's-switch for the extraction in flight: it is armed
// with a deadline when the extraction starts, every liveness ping resets the
// clock, and if a full timeout window passes without a ping it fires the
// stall callback. At most one deadline is active at any time; arming again
// replaces the previous one.
type Monitor struct {
	mu       sync.Mutex
	clk      clock.Clock
	timer    *clock.Timer
	timeout  time.Duration
	onExpire func()
	armed    bool
	gen      uint64
}

// New returns a monitor driven by the wall clock.
func New() *Monitor {
	return NewWithClock(clock.New())
}

// NewWithClock returns a monitor driven by clk. Tests pass a mock clock.
func NewWithClock(clk clock.Clock) *Monitor {
	return &Monitor{clk: clk}
}

// Arm starts a deadline of timeout; onExpire runs once if the deadline
// elapses with no ping. A previously armed deadline is implicitly cancelled.
func (m *Monitor) Arm(timeout time.Duration, onExpire func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	m.timeout = timeout
	m.onExpire = onExpire
	m.armed = true
	m.startLocked()
}

// Ping resets the current deadline to a fresh full window. It has no effect
// when the monitor is idle.
func (m *Monitor) Ping() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.armed {
		return
	}
	m.stopLocked()
	m.startLocked()
}

// Cancel transitions the monitor to idle; no expiry is possible until the
// next Arm.
func (m *Monitor) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked()
	m.armed = false
	m.onExpire = nil
}

// Armed reports whether a deadline is currently active.
func (m *Monitor) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

func (m *Monitor) startLocked() {
	gen := m.gen
	m.timer = m.clk.AfterFunc(m.timeout, func() {
		m.fire(gen)
	})
}

// stopLocked invalidates the running timer. Bumping the generation guards
// against a timer callback that already fired but has not taken the lock yet.
func (m *Monitor) stopLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
}

func (m *Monitor) fire(gen uint64) {
	m.mu.Lock()
	if !m.armed || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.armed = false
	onExpire := m.onExpire
	m.onExpire = nil
	m.mu.Unlock()

	if onExpire != nil {
		onExpire()
	}
}
