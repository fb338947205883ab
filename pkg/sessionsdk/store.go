package sessionsdk

import (
	"context"
	"errors"
	"sync"
)

// Store is the single authoritative source for authentication state and
// tenant-profile readiness. Construct one per application with NewStore,
// call Init once, and Dispose when the shell shuts down; there is no
// package-level state, so tests can run isolated instances freely.
//
// All accessors are safe for concurrent use. Subscribers are invoked
// without the internal lock held, so a callback may call back into the
// Store.
type Store struct {
	backend  AuthBackend
	profiles ProfileFetcher

	mu         sync.Mutex
	user       *AuthUser
	status     ProfileStatus
	profile    *UserProfile
	profileErr error

	subs    map[int]func()
	nextSub int
	unsub   func()
}

// NewStore wires a Store to its backend capabilities. Call Init before use.
func NewStore(backend AuthBackend, profiles ProfileFetcher) *Store {
	return &Store{
		backend:  backend,
		profiles: profiles,
		status:   StatusNone,
		subs:     make(map[int]func()),
	}
}

// Init performs the initial session check and subscribes to backend
// lifecycle events. If the backend already holds a session (restored
// tokens), the profile is fetched immediately.
func (s *Store) Init(ctx context.Context) {
	s.unsub = s.backend.Subscribe(s.onEvent)

	if session, ok := s.backend.CurrentSession(); ok {
		s.mu.Lock()
		u := session.User
		s.user = &u
		s.status = StatusLoading
		s.mu.Unlock()
		s.notify()

		s.fetchProfile(ctx)
	}
}

// Dispose unsubscribes from the backend and drops all subscribers. The
// Store must not be used afterwards.
func (s *Store) Dispose() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.mu.Lock()
	s.subs = make(map[int]func())
	s.mu.Unlock()
}

// User returns the current identity. ok is false before the first session
// check completes and after sign-out.
func (s *Store) User() (AuthUser, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return AuthUser{}, false
	}
	return *s.user, true
}

// ProfileStatus returns the current gate state.
func (s *Store) ProfileStatus() ProfileStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Profile returns the tenant profile. It is populated only in the ready
// and expired states; through expired the last known profile is retained
// so the shell can keep displaying the user's name while bouncing them.
func (s *Store) Profile() (UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return UserProfile{}, false
	}
	return *s.profile, true
}

// ProfileErr returns the last profile-fetch error, set only in the error
// state.
func (s *Store) ProfileErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profileErr
}

// Tenant returns the tenant id of the current profile, if one is loaded.
func (s *Store) Tenant() (string, bool) {
	p, ok := s.Profile()
	if !ok {
		return "", false
	}
	return p.TenantID, true
}

// IsAdmin reports whether the loaded profile carries the admin role.
func (s *Store) IsAdmin() bool {
	p, ok := s.Profile()
	return ok && p.IsAdmin()
}

// SignIn authenticates against the backend and, on success, fetches the
// tenant profile. Failures are returned as values and leave any existing
// state untouched, so a form can render the error inline. Re-authenticating
// from the expired state runs the full loading → ready cycle again.
func (s *Store) SignIn(ctx context.Context, creds Credentials) (AuthUser, error) {
	session, err := s.backend.SignIn(ctx, creds)
	if err != nil {
		return AuthUser{}, err
	}

	s.mu.Lock()
	u := session.User
	s.user = &u
	s.status = StatusLoading
	s.profile = nil
	s.profileErr = nil
	s.mu.Unlock()
	s.notify()

	s.fetchProfile(ctx)
	return session.User, nil
}

// SignOut ends the session. It always succeeds from the caller's
// perspective: the backend invalidation is attempted, but local state is
// cleared regardless of whether that call or the network fails. Leaving the
// user apparently stuck signed in is worse than skipping a server-side
// revocation. Idempotent.
func (s *Store) SignOut(ctx context.Context) {
	_ = s.backend.SignOut(ctx)
	s.clear()
}

// RetryProfileFetch re-attempts the profile fetch without touching the
// session. It is the recovery action for the error state; calling it in any
// other state with a user present is harmless.
func (s *Store) RetryProfileFetch(ctx context.Context) {
	s.mu.Lock()
	hasUser := s.user != nil
	s.mu.Unlock()
	if !hasUser {
		return
	}
	s.fetchProfile(ctx)
}

// Subscribe registers fn to run after every state change. The returned
// function unsubscribes and is safe to call repeatedly.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// fetchProfile runs one profile fetch and maps the outcome onto the state
// machine. Errors are converted to status transitions, never propagated: an
// escaped error here would blank the whole shell.
func (s *Store) fetchProfile(ctx context.Context) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	userID := s.user.ID
	s.mu.Unlock()

	profile, err := s.profiles.FetchProfile(ctx, userID)

	s.mu.Lock()
	if s.user == nil || s.user.ID != userID {
		// Signed out (or switched user) while the fetch was in flight;
		// the result no longer applies.
		s.mu.Unlock()
		return
	}
	switch {
	case err == nil:
		s.status = StatusReady
		s.profile = &profile
		s.profileErr = nil
	case errors.Is(err, ErrProfileNotFound):
		s.status = StatusMissing
		s.profile = nil
		s.profileErr = nil
	default:
		s.status = StatusError
		s.profile = nil
		s.profileErr = err
	}
	s.mu.Unlock()
	s.notify()
}

// onEvent reacts to backend session-lifecycle events.
func (s *Store) onEvent(ev Event) {
	switch ev {
	case EventInvalidated:
		s.markExpired()
	case EventSignedOut:
		s.clear()
	}
}

// markExpired moves the gate to expired when the backend stops honoring the
// session. The user and last good profile are retained for display; the
// shell redirects to sign-in with a marker explaining the bounce.
func (s *Store) markExpired() {
	s.mu.Lock()
	if s.user == nil || s.status == StatusExpired {
		s.mu.Unlock()
		return
	}
	s.status = StatusExpired
	s.mu.Unlock()
	s.notify()
}

func (s *Store) clear() {
	s.mu.Lock()
	changed := s.user != nil || s.status != StatusNone
	s.user = nil
	s.status = StatusNone
	s.profile = nil
	s.profileErr = nil
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
