package coinsdk

import (
	"context"
	"net/http"
)

// AddChild creates a child account under the current parent. The response
// carries the generated password exactly once; it is never retrievable
// again, so callers must surface it immediately.
func (c *Client) AddChild(ctx context.Context, req AddChildRequest) (*AddChildResponse, error) {
	var added AddChildResponse
	if err := sendJSON(ctx, c, http.MethodPost, "/api/parents/children", req, &added, http.StatusOK); err != nil {
		return nil, err
	}
	return &added, nil
}

// ParentDashboard fetches the parent's aggregate view: children, pending
// approvals and family stats.
func (c *Client) ParentDashboard(ctx context.Context) (*Dashboard, error) {
	var dash Dashboard
	if err := getJSON(ctx, c, "/api/parents/dashboard", &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}
