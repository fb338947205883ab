package sessionsdk

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory AuthBackend tests drive directly.
type fakeBackend struct {
	mu           sync.Mutex
	session      *Session
	signInErr    error
	signOutErr   error
	signOutCalls int
	subs         []func(Event)
}

func (b *fakeBackend) SignIn(ctx context.Context, creds Credentials) (Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.signInErr != nil {
		return Session{}, b.signInErr
	}
	s := Session{
		ID:          "sess-1",
		AccessToken: "access",
		User:        AuthUser{ID: "user-1", Email: creds.Email, EmailVerified: true},
	}
	b.session = &s
	return s, nil
}

func (b *fakeBackend) SignOut(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signOutCalls++
	b.session = nil
	return b.signOutErr
}

func (b *fakeBackend) CurrentSession() (Session, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return Session{}, false
	}
	return *b.session, true
}

func (b *fakeBackend) Subscribe(fn func(Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
	i := len(b.subs) - 1
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subs[i] = nil
	}
}

// emit simulates a backend-originated lifecycle event.
func (b *fakeBackend) emit(ev Event) {
	b.mu.Lock()
	subs := append([]func(Event){}, b.subs...)
	b.mu.Unlock()
	for _, fn := range subs {
		if fn != nil {
			fn(ev)
		}
	}
}

// fakeFetcher returns whatever its current fn says.
type fakeFetcher struct {
	mu    sync.Mutex
	fn    func(userID string) (UserProfile, error)
	calls int
}

func (f *fakeFetcher) set(fn func(userID string) (UserProfile, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fn = fn
}

func (f *fakeFetcher) FetchProfile(ctx context.Context, userID string) (UserProfile, error) {
	f.mu.Lock()
	fn := f.fn
	f.calls++
	f.mu.Unlock()
	if fn == nil {
		return UserProfile{}, errors.New("no fetcher configured")
	}
	return fn(userID)
}

func okProfile(role string) func(string) (UserProfile, error) {
	return func(userID string) (UserProfile, error) {
		return UserProfile{
			UserID:   userID,
			TenantID: "tenant-1",
			Name:     "Terry Technician",
			Role:     role,
			State:    "active",
		}, nil
	}
}

func newTestStore(t *testing.T, fetch func(string) (UserProfile, error)) (*Store, *fakeBackend, *fakeFetcher) {
	t.Helper()
	backend := &fakeBackend{}
	fetcher := &fakeFetcher{fn: fetch}
	s := NewStore(backend, fetcher)
	s.Init(context.Background())
	t.Cleanup(s.Dispose)
	return s, backend, fetcher
}

var creds = Credentials{Email: "tech@example.com", Password: "pw"}

func TestStoreInitialState(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestStore(t, okProfile("technician"))

	_, ok := s.User()
	require.False(t, ok)
	require.Equal(t, StatusNone, s.ProfileStatus())
	_, ok = s.Profile()
	require.False(t, ok)
}

func TestStoreInitRestoresExistingSession(t *testing.T) {
	t.Parallel()
	backend := &fakeBackend{session: &Session{
		ID:   "sess-0",
		User: AuthUser{ID: "user-1", Email: "tech@example.com"},
	}}
	fetcher := &fakeFetcher{fn: okProfile("technician")}

	s := NewStore(backend, fetcher)
	s.Init(context.Background())
	defer s.Dispose()

	u, ok := s.User()
	require.True(t, ok)
	require.Equal(t, "user-1", u.ID)
	require.Equal(t, StatusReady, s.ProfileStatus())
}

func TestSignInOutcomes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fetch succeeds: ready with profile populated", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newTestStore(t, okProfile("technician"))

		u, err := s.SignIn(ctx, creds)
		require.NoError(t, err)
		require.Equal(t, "tech@example.com", u.Email)

		require.Equal(t, StatusReady, s.ProfileStatus())
		p, ok := s.Profile()
		require.True(t, ok)
		require.Equal(t, "Terry Technician", p.Name)
		require.False(t, s.IsAdmin())

		tenant, ok := s.Tenant()
		require.True(t, ok)
		require.Equal(t, "tenant-1", tenant)
	})

	t.Run("admin role is reflected", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newTestStore(t, okProfile("admin"))

		_, err := s.SignIn(ctx, creds)
		require.NoError(t, err)
		require.True(t, s.IsAdmin())
	})

	t.Run("fetch finds no row: missing with no profile", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newTestStore(t, func(string) (UserProfile, error) {
			return UserProfile{}, ErrProfileNotFound
		})

		_, err := s.SignIn(ctx, creds)
		require.NoError(t, err)
		require.Equal(t, StatusMissing, s.ProfileStatus())
		_, ok := s.Profile()
		require.False(t, ok)
		require.NoError(t, s.ProfileErr())
	})

	t.Run("fetch fails: error with the failure recorded", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("backend unreachable")
		s, _, _ := newTestStore(t, func(string) (UserProfile, error) {
			return UserProfile{}, boom
		})

		_, err := s.SignIn(ctx, creds)
		require.NoError(t, err)
		require.Equal(t, StatusError, s.ProfileStatus())
		require.ErrorIs(t, s.ProfileErr(), boom)
	})

	t.Run("sign-in failure is returned and mutates nothing", func(t *testing.T) {
		t.Parallel()
		s, backend, _ := newTestStore(t, okProfile("technician"))
		backend.signInErr = ErrInvalidCredentials

		_, err := s.SignIn(ctx, creds)
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, ok := s.User()
		require.False(t, ok)
		require.Equal(t, StatusNone, s.ProfileStatus())
	})
}

func TestRetryProfileFetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("error to ready when the fetch recovers", func(t *testing.T) {
		t.Parallel()
		s, _, fetcher := newTestStore(t, func(string) (UserProfile, error) {
			return UserProfile{}, errors.New("backend unreachable")
		})

		_, err := s.SignIn(ctx, creds)
		require.NoError(t, err)
		require.Equal(t, StatusError, s.ProfileStatus())

		fetcher.set(okProfile("technician"))
		s.RetryProfileFetch(ctx)

		require.Equal(t, StatusReady, s.ProfileStatus())
		require.NoError(t, s.ProfileErr())
	})

	t.Run("error stays error with the new message", func(t *testing.T) {
		t.Parallel()
		first := errors.New("timeout")
		second := errors.New("connection refused")
		s, _, fetcher := newTestStore(t, func(string) (UserProfile, error) {
			return UserProfile{}, first
		})

		_, err := s.SignIn(ctx, creds)
		require.NoError(t, err)
		require.ErrorIs(t, s.ProfileErr(), first)

		fetcher.set(func(string) (UserProfile, error) {
			return UserProfile{}, second
		})
		s.RetryProfileFetch(ctx)

		require.Equal(t, StatusError, s.ProfileStatus())
		require.ErrorIs(t, s.ProfileErr(), second)
	})

	t.Run("no-op when signed out", func(t *testing.T) {
		t.Parallel()
		s, _, fetcher := newTestStore(t, okProfile("technician"))

		s.RetryProfileFetch(ctx)
		require.Zero(t, fetcher.calls)
	})
}

func TestExpiredTransitions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("invalidation from ready retains the last profile", func(t *testing.T) {
		t.Parallel()
		s, backend, _ := newTestStore(t, okProfile("technician"))

		_, err := s.SignIn(ctx, creds)
		require.NoError(t, err)
		require.Equal(t, StatusReady, s.ProfileStatus())

		backend.emit(EventInvalidated)

		require.Equal(t, StatusExpired, s.ProfileStatus())
		p, ok := s.Profile()
		require.True(t, ok)
		require.Equal(t, "Terry Technician", p.Name)
		_, ok = s.User()
		require.True(t, ok)
	})

	t.Run("re-authentication runs the full cycle again", func(t *testing.T) {
		t.Parallel()
		s, backend, _ := newTestStore(t, okProfile("technician"))

		_, err := s.SignIn(ctx, creds)
		require.NoError(t, err)
		backend.emit(EventInvalidated)
		require.Equal(t, StatusExpired, s.ProfileStatus())

		_, err = s.SignIn(ctx, creds)
		require.NoError(t, err)
		require.Equal(t, StatusReady, s.ProfileStatus())
	})

	t.Run("invalidation with no user is ignored", func(t *testing.T) {
		t.Parallel()
		s, backend, _ := newTestStore(t, okProfile("technician"))

		backend.emit(EventInvalidated)
		require.Equal(t, StatusNone, s.ProfileStatus())
	})
}

func TestSignOut(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("clears state and never errors", func(t *testing.T) {
		t.Parallel()
		s, backend, _ := newTestStore(t, okProfile("technician"))

		_, err := s.SignIn(ctx, creds)
		require.NoError(t, err)

		s.SignOut(ctx)

		_, ok := s.User()
		require.False(t, ok)
		require.Equal(t, StatusNone, s.ProfileStatus())
		require.Equal(t, 1, backend.signOutCalls)
	})

	t.Run("backend failure still clears local state", func(t *testing.T) {
		t.Parallel()
		s, backend, _ := newTestStore(t, okProfile("technician"))
		backend.signOutErr = errors.New("network down")

		_, err := s.SignIn(ctx, creds)
		require.NoError(t, err)

		s.SignOut(ctx)

		_, ok := s.User()
		require.False(t, ok)
		require.Equal(t, StatusNone, s.ProfileStatus())
	})

	t.Run("idempotent with no session", func(t *testing.T) {
		t.Parallel()
		s, _, _ := newTestStore(t, okProfile("technician"))

		s.SignOut(ctx)
		s.SignOut(ctx)

		_, ok := s.User()
		require.False(t, ok)
	})
}

func TestSubscribeNotifiesOnEveryChange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _, _ := newTestStore(t, okProfile("technician"))

	var events int
	cancel := s.Subscribe(func() { events++ })

	_, err := s.SignIn(ctx, creds)
	require.NoError(t, err)
	// One for the user appearing, one for the fetch settling.
	require.Equal(t, 2, events)

	s.SignOut(ctx)
	require.Equal(t, 3, events)

	cancel()
	_, err = s.SignIn(ctx, creds)
	require.NoError(t, err)
	require.Equal(t, 3, events)
}
