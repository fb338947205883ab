package clockx

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually driven Clock. Advance moves time forward and runs due
// callbacks synchronously, in due order, before returning. Callbacks may
// schedule further timers; those fire too if they fall inside the advanced
// window.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*fakeTimer
}

// NewFake returns a Fake positioned at start.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	t := &fakeTimer{
		fake: f,
		due:  f.now.Add(d),
		seq:  f.seq,
		fn:   fn,
	}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that becomes due
// along the way. Timers fire in due order; ties fire in scheduling order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)

	for {
		next := f.nextDueLocked(target)
		if next == nil {
			break
		}
		// Jump the clock to the timer's due point, then run the callback
		// without holding the lock so it can schedule or stop timers.
		if next.due.After(f.now) {
			f.now = next.due
		}
		next.fired = true
		f.mu.Unlock()
		next.fn()
		f.mu.Lock()
	}

	f.now = target
	f.mu.Unlock()
}

// Pending reports how many scheduled timers have neither fired nor been
// stopped. Tests use it to assert full teardown.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, t := range f.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

func (f *Fake) nextDueLocked(limit time.Time) *fakeTimer {
	live := f.timers[:0]
	for _, t := range f.timers {
		if !t.fired && !t.stopped {
			live = append(live, t)
		}
	}
	f.timers = live

	sort.SliceStable(f.timers, func(i, j int) bool {
		if f.timers[i].due.Equal(f.timers[j].due) {
			return f.timers[i].seq < f.timers[j].seq
		}
		return f.timers[i].due.Before(f.timers[j].due)
	})

	if len(f.timers) == 0 || f.timers[0].due.After(limit) {
		return nil
	}
	return f.timers[0]
}

type fakeTimer struct {
	fake    *Fake
	due     time.Time
	seq     uint64
	fn      func()
	fired   bool
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.fake.mu.Lock()
	defer t.fake.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
