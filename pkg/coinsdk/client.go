package coinsdk

import (
	"net/http"
	"strings"
	"time"
)

// TokenSource supplies the current bearer token for authenticated calls.
// Returning "" means "no token"; the request goes out unauthenticated and
// the backend answers 401. Keeping the token behind a closure leaves the
// session manager as its single owner.
type TokenSource func() string

// Client is a thin typed wrapper over the CoinCraft REST backend. It holds
// no session state of its own.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	tokenSource    TokenSource
	onUnauthorized func()
}

// New creates a backend client with a 10 second request timeout.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetTokenSource installs the token supplier for authenticated requests.
func (c *Client) SetTokenSource(src TokenSource) {
	c.tokenSource = src
}

// SetUnauthorizedHandler installs a hook fired whenever an authenticated
// call comes back 401. The session manager uses it to tear down the session
// (the explicit form of the old response-interceptor behavior).
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string) string {
	return c.BaseURL + path
}
