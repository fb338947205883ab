// Package clockx abstracts wall-clock time and deferred execution so
// timer-driven state machines can be tested deterministically. Production
// code uses Real; tests use Fake and advance time by hand.
package clockx

import "time"

// Timer is a handle to a deferred function scheduled with AfterFunc.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// function from running. Stop is safe to call more than once.
	Stop() bool
}

// Clock is the minimal time surface timer-driven code should depend on.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Real returns a Clock backed by the runtime timers.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, fn)}
}

type realTimer struct{ t *time.Timer }

func (r realTimer) Stop() bool { return r.t.Stop() }
