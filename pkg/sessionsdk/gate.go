package sessionsdk

// Screen is the single surface the shell should render for the current
// session state. Exactly one applies at a time.
type Screen int

const (
	// ScreenLoading: session check or profile fetch in flight.
	ScreenLoading Screen = iota

	// ScreenSignIn: nobody is signed in.
	ScreenSignIn

	// ScreenSetupRequired: the login is valid but no tenant profile was
	// provisioned; an admin must act, retrying is pointless.
	ScreenSetupRequired

	// ScreenError: the profile fetch failed; show the last error and a
	// retry button.
	ScreenError

	// ScreenApp: everything checks out, render the protected shell.
	ScreenApp

	// ScreenExpired: the session died under the user; redirect to
	// sign-in with an explanation.
	ScreenExpired
)

// SessionExpiredReason is the query value carried on the sign-in redirect
// after an expiry bounce, so the sign-in screen can say "your session
// expired" instead of leaving the redirect unexplained.
const SessionExpiredReason = "session_expired"

// ScreenFor maps the store's state to the one screen the shell renders.
func ScreenFor(s *Store) Screen {
	status := s.ProfileStatus()
	if _, ok := s.User(); !ok {
		return ScreenSignIn
	}

	switch status {
	case StatusLoading:
		return ScreenLoading
	case StatusReady:
		return ScreenApp
	case StatusMissing:
		return ScreenSetupRequired
	case StatusError:
		return ScreenError
	case StatusExpired:
		return ScreenExpired
	default:
		return ScreenLoading
	}
}

// SignInRedirect returns the path the shell should navigate to for screens
// that bounce to sign-in, and whether a redirect applies at all. The
// expired bounce carries the reason flag.
func SignInRedirect(screen Screen) (string, bool) {
	switch screen {
	case ScreenSignIn:
		return "/signin", true
	case ScreenExpired:
		return "/signin?reason=" + SessionExpiredReason, true
	default:
		return "", false
	}
}
