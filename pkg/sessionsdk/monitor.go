package sessionsdk

import (
	"context"
	"sync"
	"time"

	"github.com/fixplanhq/fixplan/pkg/clockx"
)

// Inactivity policy. Fixed, not user-configurable: after 15 minutes without
// activity the user is signed out, with a 60-second warning first.
const (
	IdleTimeout = 15 * time.Minute
	WarningLead = 1 * time.Minute

	// armDelay is how long the monitor waits before showing the warning.
	armDelay = IdleTimeout - WarningLead

	tickInterval = time.Second
)

// ActivityKind names the interaction signals that reset the inactivity
// clock. The shell forwards them from whatever input layer it sits on.
type ActivityKind int

const (
	ActivityPointerPress ActivityKind = iota
	ActivityPointerMove
	ActivityKeyPress
	ActivityScroll
	ActivityTouchStart
	ActivityClick
)

// MonitorState is the monitor's lifecycle state.
type MonitorState int

const (
	// MonitorIdle: no user signed in, nothing scheduled.
	MonitorIdle MonitorState = iota

	// MonitorArmed: user present, waiting out the 14-minute window.
	MonitorArmed

	// MonitorWarning: the warning is showing and the countdown runs.
	MonitorWarning

	// MonitorExpired: the countdown ran out and sign-out was forced.
	MonitorExpired
)

// Monitor watches user inactivity while someone is signed in and forces a
// sign-out after the idle timeout, with an advance warning the user can
// dismiss. It binds its lifecycle to the Store: it arms itself when a user
// appears and tears down, cancelling every timer, when the user goes away.
// Forced logout goes through Store.SignOut, the same path as a manual
// sign-out, so cleanup is identical either way.
type Monitor struct {
	store *Store
	clock clockx.Clock

	// OnChange, when set, runs after every observable change (warning
	// shown or dismissed, each countdown tick, forced logout). Set it
	// before Start.
	OnChange func()

	mu           sync.Mutex
	state        MonitorState
	armTimer     clockx.Timer
	logoutTimer  clockx.Timer
	tickTimer    clockx.Timer
	warnDeadline time.Time
	unsub        func()
}

// NewMonitor builds a Monitor over store using clock for all scheduling.
// Pass clockx.Real() in production.
func NewMonitor(store *Store, clock clockx.Clock) *Monitor {
	return &Monitor{store: store, clock: clock, state: MonitorIdle}
}

// Start binds the monitor to the store's user lifecycle. If a user is
// already present the monitor arms immediately.
func (m *Monitor) Start() {
	m.unsub = m.store.Subscribe(m.sync)
	m.sync()
}

// Stop unbinds from the store and cancels everything.
func (m *Monitor) Stop() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
	m.mu.Lock()
	m.deactivateLocked()
	m.mu.Unlock()
}

// State returns the current lifecycle state.
func (m *Monitor) State() MonitorState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ShowWarning reports whether the inactivity warning should be displayed.
func (m *Monitor) ShowWarning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == MonitorWarning
}

// TimeLeftSeconds returns the whole seconds remaining on the warning
// countdown, ceiling-rounded and never negative. Zero when no warning is
// active.
func (m *Monitor) TimeLeftSeconds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != MonitorWarning {
		return 0
	}
	left := m.warnDeadline.Sub(m.clock.Now())
	if left <= 0 {
		return 0
	}
	secs := int((left + tickInterval - 1) / tickInterval)
	return secs
}

// Activity records an interaction signal. Any signal resets the inactivity
// clock immediately; if the warning is showing it is dismissed and the full
// cycle restarts.
func (m *Monitor) Activity(kind ActivityKind) {
	_ = kind
	m.reset()
}

// StayLoggedIn dismisses the warning and restarts the inactivity clock.
// Wired to the warning dialog's confirm button.
func (m *Monitor) StayLoggedIn() {
	m.reset()
}

// ForceLogout signs the user out through the store. Safe to call at any
// time, including with stale timer handles; the sign-out happens at most
// once per warning cycle.
func (m *Monitor) ForceLogout() {
	m.mu.Lock()
	if m.state != MonitorArmed && m.state != MonitorWarning {
		m.mu.Unlock()
		return
	}
	m.cancelTimersLocked()
	m.state = MonitorExpired
	m.mu.Unlock()

	// SignOut triggers the store subscription, which moves us to Idle.
	m.store.SignOut(context.Background())
	m.changed()
}

// sync aligns the monitor with the store's user presence.
func (m *Monitor) sync() {
	_, hasUser := m.store.User()

	m.mu.Lock()
	switch {
	case hasUser && m.state == MonitorIdle:
		m.armLocked()
	case !hasUser && m.state != MonitorIdle:
		m.deactivateLocked()
	default:
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()
	m.changed()
}

// reset handles any activity signal: cancel whatever is pending and re-arm.
func (m *Monitor) reset() {
	m.mu.Lock()
	if m.state != MonitorArmed && m.state != MonitorWarning {
		m.mu.Unlock()
		return
	}
	wasWarning := m.state == MonitorWarning
	m.cancelTimersLocked()
	m.armLocked()
	m.mu.Unlock()

	if wasWarning {
		m.changed()
	}
}

// armLocked starts a fresh 14-minute window. Callers hold m.mu and must
// have cancelled prior timers.
func (m *Monitor) armLocked() {
	m.state = MonitorArmed
	m.armTimer = m.clock.AfterFunc(armDelay, m.warn)
}

// warn fires when the armed window elapses with no activity: show the
// warning, start the countdown, and schedule the forced logout.
func (m *Monitor) warn() {
	m.mu.Lock()
	if m.state != MonitorArmed {
		m.mu.Unlock()
		return
	}
	m.state = MonitorWarning
	m.warnDeadline = m.clock.Now().Add(WarningLead)
	m.logoutTimer = m.clock.AfterFunc(WarningLead, m.ForceLogout)
	m.tickTimer = m.clock.AfterFunc(tickInterval, m.tick)
	m.mu.Unlock()
	m.changed()
}

// tick re-notifies once per second while the warning is up so a dialog can
// re-render the countdown.
func (m *Monitor) tick() {
	m.mu.Lock()
	if m.state != MonitorWarning {
		m.mu.Unlock()
		return
	}
	if m.clock.Now().Before(m.warnDeadline) {
		m.tickTimer = m.clock.AfterFunc(tickInterval, m.tick)
	}
	m.mu.Unlock()
	m.changed()
}

// deactivateLocked cancels every outstanding timer unconditionally and
// returns to Idle. Partial teardown is the defect class this exists to
// prevent; it is safe to call repeatedly.
func (m *Monitor) deactivateLocked() {
	m.cancelTimersLocked()
	m.state = MonitorIdle
}

func (m *Monitor) cancelTimersLocked() {
	if m.armTimer != nil {
		m.armTimer.Stop()
		m.armTimer = nil
	}
	if m.logoutTimer != nil {
		m.logoutTimer.Stop()
		m.logoutTimer = nil
	}
	if m.tickTimer != nil {
		m.tickTimer.Stop()
		m.tickTimer = nil
	}
}

func (m *Monitor) changed() {
	if m.OnChange != nil {
		m.OnChange()
	}
}
