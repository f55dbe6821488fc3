// Package syspm sequences system power-mode transitions across registered
// driver callbacks. Drivers that cannot survive a transition refuse it from
// their CheckReady handler.
package syspm

import (
	"sync"

	"rgbled-go/errcode"
)

// State is a bitmask of power states a callback is interested in.
type State uint8

const (
	CPUSleep State = 1 << iota
	CPUDeepSleep
	Hibernate
)

func (s State) String() string {
	switch s {
	case CPUSleep:
		return "sleep"
	case CPUDeepSleep:
		return "deepsleep"
	case Hibernate:
		return "hibernate"
	}
	return "unknown"
}

// ParseState maps the bus-facing names back to a State.
func ParseState(s string) (State, bool) {
	switch s {
	case "sleep":
		return CPUSleep, true
	case "deepsleep":
		return CPUDeepSleep, true
	case "hibernate":
		return Hibernate, true
	}
	return 0, false
}

// Mode is the phase of a transition a callback is invoked for.
type Mode uint8

const (
	CheckReady Mode = 1 << iota
	CheckFail
	BeforeTransition
	AfterTransition
)

// Func is invoked synchronously during a transition. The return value only
// matters for CheckReady, where false vetoes the transition.
type Func func(state State, mode Mode, arg any) bool

// Callback is the registration record. The same pointer must be passed to
// Unregister.
type Callback struct {
	Fn          Func
	States      State // states this callback participates in
	IgnoreModes Mode  // modes never delivered to Fn
	Arg         any
}

func (c *Callback) wants(state State, mode Mode) bool {
	return c.States&state != 0 && c.IgnoreModes&mode == 0
}

// EnterFunc performs the actual low-power entry once every callback agreed.
type EnterFunc func(state State) error

// Manager holds the registered callbacks for one system.
type Manager struct {
	mu    sync.Mutex
	cbs   []*Callback
	enter EnterFunc
}

// NewManager returns a manager that calls enter to perform the transition.
// A nil enter makes transitions a pure negotiation.
func NewManager(enter EnterFunc) *Manager {
	return &Manager{enter: enter}
}

// Register adds cb. Registering the same callback twice is a no-op.
func (m *Manager) Register(cb *Callback) {
	if cb == nil || cb.Fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cbs {
		if c == cb {
			return
		}
	}
	m.cbs = append(m.cbs, cb)
}

// Unregister removes cb if present.
func (m *Manager) Unregister(cb *Callback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.cbs {
		if c == cb {
			m.cbs = append(m.cbs[:i], m.cbs[i+1:]...)
			return
		}
	}
}

// Len reports the number of registered callbacks.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cbs)
}

// snapshot returns the callbacks for state; callbacks run without the lock.
func (m *Manager) snapshot(state State) []*Callback {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Callback, 0, len(m.cbs))
	for _, c := range m.cbs {
		if c.States&state != 0 {
			out = append(out, c)
		}
	}
	return out
}

// check runs CheckReady in registration order. On refusal it sends
// CheckFail, in reverse order, to every callback already asked and returns
// false. Callbacks that ignore CheckReady were never asked.
func check(cbs []*Callback, state State) bool {
	asked := make([]*Callback, 0, len(cbs))
	for _, c := range cbs {
		if !c.wants(state, CheckReady) {
			continue
		}
		if c.Fn(state, CheckReady, c.Arg) {
			asked = append(asked, c)
			continue
		}
		for j := len(asked) - 1; j >= 0; j-- {
			if asked[j].wants(state, CheckFail) {
				asked[j].Fn(state, CheckFail, asked[j].Arg)
			}
		}
		return false
	}
	return true
}

// Ready runs only the readiness check for state.
func (m *Manager) Ready(state State) bool {
	return check(m.snapshot(state), state)
}

// Transition negotiates and performs a move into state. It returns
// errcode.NotReady when a callback refuses, or the error from the enter hook.
func (m *Manager) Transition(state State) error {
	cbs := m.snapshot(state)
	if !check(cbs, state) {
		return errcode.NotReady
	}
	for _, c := range cbs {
		if c.wants(state, BeforeTransition) {
			c.Fn(state, BeforeTransition, c.Arg)
		}
	}
	var err error
	if m.enter != nil {
		err = m.enter(state)
	}
	for i := len(cbs) - 1; i >= 0; i-- {
		if cbs[i].wants(state, AfterTransition) {
			cbs[i].Fn(state, AfterTransition, cbs[i].Arg)
		}
	}
	return err
}
