package coinsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Login exchanges credentials for an access token. The endpoint follows the
// OAuth2 password-grant shape: form-encoded, with the email in the username
// field. Fetching the user record is a separate call (CurrentUser); the
// session manager composes the two.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	data := url.Values{
		"username": {email},
		"password": {password},
	}

	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}

	resp, err := c.doRequest(
		ctx,
		http.MethodPost,
		"/api/auth/jwt/login",
		strings.NewReader(data.Encode()),
		headers,
	)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &tokenResp, nil
}

// Register creates a parent or teacher account and returns the token plus
// the created user in one response.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var regResp RegisterResponse
	if err := sendJSON(ctx, c, http.MethodPost, "/api/auth/register", req, &regResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &regResp, nil
}

// Logout tells the backend the session is over. With bearer tokens this is
// advisory; the real teardown is client-side.
func (c *Client) Logout(ctx context.Context) error {
	return sendJSON(ctx, c, http.MethodPost, "/api/auth/logout", nil, nil, http.StatusOK)
}

// Verify checks the current token and returns the user it belongs to.
func (c *Client) Verify(ctx context.Context) (*VerifyResponse, error) {
	var verifyResp VerifyResponse
	if err := getJSON(ctx, c, "/api/auth/verify", &verifyResp); err != nil {
		return nil, err
	}
	return &verifyResp, nil
}

// CurrentUser fetches the user record for the current token.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := getJSON(ctx, c, "/api/users/me", &user); err != nil {
		return nil, err
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return &user, nil
}

// UserForToken fetches the user record a specific token belongs to. The
// token goes in explicitly rather than through the token source, and a 401
// does not fire the unauthorized hook: a bad candidate token must not tear
// down whatever session is already installed.
func (c *Client) UserForToken(ctx context.Context, token string) (*User, error) {
	headers := map[string]string{"Authorization": "Bearer " + token}
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/users/me", nil, headers)
	if err != nil {
		return nil, err
	}

	var user User
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return &user, nil
}

// UpdateUser applies a partial profile update.
func (c *Client) UpdateUser(ctx context.Context, userID string, updates map[string]any) (*User, error) {
	var user User
	if err := sendJSON(ctx, c, http.MethodPut, "/api/users/"+userID, updates, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}
