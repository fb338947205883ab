// Package sessionsdk is the client-side session layer for fixplan
// application shells.
//
// It has three cooperating pieces:
//
//   - Store: the single source of truth for "is there an authenticated
//     user" and "is their tenant profile usable". It owns the credential
//     session, derives a ProfileStatus state machine from the profile
//     fetch outcome, and notifies subscribers on every change.
//
//   - Monitor: the inactivity watchdog. While a user is signed in it arms
//     a 14-minute timer; when it fires, a 60-second warning countdown runs
//     and, absent any activity, the user is signed out through the same
//     path as a manual sign-out.
//
//   - ScreenFor: the gating decision. Given a Store it picks exactly one
//     screen for the shell to render: loading, sign-in, setup-required,
//     error, expired, or the application itself.
//
// The Store talks to the gateway through two narrow capability
// interfaces, AuthBackend and ProfileFetcher. Client implements both over
// HTTP; tests substitute fakes. All timers run through clockx.Clock so
// the whole layer is deterministic under test.
package sessionsdk
