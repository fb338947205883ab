package sessionsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// APIError is a structured error response from the gateway.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("sessionsdk: %s: %s", e.Code, e.Description)
	}
	return fmt.Sprintf("sessionsdk: %s (status %d)", e.Code, e.StatusCode)
}

// Unwrap maps well-known gateway error codes to the package sentinels so
// callers can use errors.Is without string matching.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "invalid_credentials":
		return ErrInvalidCredentials
	case "totp_required":
		return ErrTOTPRequired
	case "invalid_totp":
		return ErrInvalidTOTP
	case "tenant_suspended":
		return ErrTenantSuspended
	case "profile_disabled":
		return ErrProfileDisabled
	case "profile_not_found":
		return ErrProfileNotFound
	default:
		return nil
	}
}

func asAPIError(err error, target **APIError) bool {
	return errors.As(err, target)
}

func (c *Client) post(ctx context.Context, path string, body any, bearer string, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path, bearer string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("sessionsdk: decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var wire ErrorResponse
	if err := json.Unmarshal(body, &wire); err != nil || wire.Error == "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        "server_error",
			Description: http.StatusText(resp.StatusCode),
		}
	}
	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        wire.Error,
		Description: wire.ErrorDescription,
	}
}
