package sessionsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// refreshBuffer is subtracted from the access-token expiry so refresh
// happens before the token actually dies mid-request.
const refreshBuffer = 30 * time.Second

// Client talks to the session gateway over HTTP. It implements AuthBackend
// and ProfileFetcher, holds the live token pair, and refreshes it
// transparently before authenticated calls. When the gateway rejects a
// refresh, the session is dropped and EventInvalidated is emitted, which
// the Store turns into the expired state.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu      sync.Mutex
	session *Session
	subs    map[int]func(Event)
	nextSub int
}

// NewClient creates a gateway client.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		subs:       make(map[int]func(Event)),
	}
}

// SignIn implements AuthBackend.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (Session, error) {
	var resp TokenResponse
	err := c.post(ctx, "/v1/session", SignInRequest{
		Email:    creds.Email,
		Password: creds.Password,
		TOTPCode: creds.TOTPCode,
	}, "", &resp)
	if err != nil {
		return Session{}, err
	}

	session := sessionFromToken(resp)
	c.mu.Lock()
	c.session = &session
	c.mu.Unlock()

	c.emit(EventSignedIn)
	return session, nil
}

// SignOut implements AuthBackend. The server-side revocation is attempted
// with the current access token; the local session is forgotten regardless
// of the outcome, and the backend error (if any) is returned for logging.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()

	if session == nil {
		return nil
	}
	defer c.emit(EventSignedOut)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.BaseURL+"/v1/session", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sessionsdk: sign-out returned %d", resp.StatusCode)
	}
	return nil
}

// CurrentSession implements AuthBackend.
func (c *Client) CurrentSession() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// RestoreSession seeds the client with a previously persisted token pair,
// for shells that keep the refresh token across restarts. The access token
// is refreshed lazily on first use.
func (c *Client) RestoreSession(s Session) {
	c.mu.Lock()
	c.session = &s
	c.mu.Unlock()
}

// Subscribe implements AuthBackend.
func (c *Client) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// FetchProfile implements ProfileFetcher. Tenant scoping happens on the
// gateway from the token's claims; the userID argument is checked against
// the session to catch caller mix-ups.
func (c *Client) FetchProfile(ctx context.Context, userID string) (UserProfile, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return UserProfile{}, err
	}

	c.mu.Lock()
	if c.session != nil && c.session.User.ID != userID {
		c.mu.Unlock()
		return UserProfile{}, fmt.Errorf("sessionsdk: profile requested for %q but session belongs to %q", userID, c.session.User.ID)
	}
	c.mu.Unlock()

	var resp ProfileResponse
	if err := c.get(ctx, "/v1/profile", token, &resp); err != nil {
		return UserProfile{}, err
	}
	return UserProfile{
		UserID:      resp.UserID,
		TenantID:    resp.TenantID,
		Name:        resp.Name,
		Role:        resp.Role,
		State:       resp.State,
		LastLoginAt: resp.LastLoginAt,
	}, nil
}

// Livez checks the gateway liveness endpoint.
func (c *Client) Livez(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.get(ctx, "/livez", "", &resp)
	return resp, err
}

// Bootstrap seeds the first tenant and admin on an empty deployment.
func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (BootstrapResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return BootstrapResponse{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/bootstrap", bytes.NewReader(body))
	if err != nil {
		return BootstrapResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Bootstrap-Token", token)

	var resp BootstrapResponse
	if err := c.do(httpReq, &resp); err != nil {
		return BootstrapResponse{}, err
	}
	return resp, nil
}

// Provision creates a user and profile in the caller's tenant. Requires an
// admin session.
func (c *Client) Provision(ctx context.Context, req ProvisionRequest) (ProfileResponse, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return ProfileResponse{}, err
	}
	var resp ProfileResponse
	if err := c.post(ctx, "/v1/profiles", req, token, &resp); err != nil {
		return ProfileResponse{}, err
	}
	return resp, nil
}

// accessToken returns a valid access token, refreshing the pair if the
// current one is at or past its expiry buffer.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return "", ErrNoSession
	}
	if time.Now().Before(c.session.ExpiresAt.Add(-refreshBuffer)) {
		token := c.session.AccessToken
		c.mu.Unlock()
		return token, nil
	}
	refreshToken := c.session.RefreshToken
	c.mu.Unlock()

	return c.refresh(ctx, refreshToken)
}

// refresh rotates the token pair. A rejected refresh means the gateway no
// longer honors this session: the local session is dropped and
// EventInvalidated is emitted. Transient transport errors keep the session
// so a later attempt can still succeed.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	var resp TokenResponse
	err := c.post(ctx, "/v1/session/refresh", RefreshRequest{RefreshToken: refreshToken}, "", &resp)
	if err != nil {
		var apiErr *APIError
		if asAPIError(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			c.mu.Lock()
			c.session = nil
			c.mu.Unlock()
			c.emit(EventInvalidated)
		}
		return "", err
	}

	session := sessionFromToken(resp)
	c.mu.Lock()
	// Refresh responses omit the identity projection; carry it over.
	if session.User.ID == "" && c.session != nil {
		session.User = c.session.User
	}
	c.session = &session
	c.mu.Unlock()

	c.emit(EventRefreshed)
	return session.AccessToken, nil
}

func (c *Client) emit(ev Event) {
	c.mu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func sessionFromToken(resp TokenResponse) Session {
	return Session{
		ID:           resp.SessionID,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		User: AuthUser{
			ID:            resp.UserID,
			Email:         resp.Email,
			EmailVerified: resp.EmailVerified,
		},
	}
}
