package coinsdk

import (
	"context"
	"net/http"
)

// Goals lists a user's savings goals.
func (c *Client) Goals(ctx context.Context, userID string) ([]Goal, error) {
	var goals []Goal
	if err := getJSON(ctx, c, "/api/users/"+userID+"/goals", &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// CreateGoal creates a new savings goal for a user.
func (c *Client) CreateGoal(ctx context.Context, userID string, req CreateGoalRequest) (*Goal, error) {
	var goal Goal
	if err := sendJSON(ctx, c, http.MethodPost, "/api/users/"+userID+"/goals", req, &goal, http.StatusOK); err != nil {
		return nil, err
	}
	return &goal, nil
}

// UpdateGoal applies a partial update to a goal.
func (c *Client) UpdateGoal(ctx context.Context, userID, goalID string, updates map[string]any) (*Goal, error) {
	var goal Goal
	if err := sendJSON(ctx, c, http.MethodPut, "/api/users/"+userID+"/goals/"+goalID, updates, &goal, http.StatusOK); err != nil {
		return nil, err
	}
	return &goal, nil
}

// DeleteGoal removes a goal.
func (c *Client) DeleteGoal(ctx context.Context, userID, goalID string) error {
	return sendJSON(ctx, c, http.MethodDelete, "/api/users/"+userID+"/goals/"+goalID, nil, nil, http.StatusOK)
}

// Contribute moves coins from a user's balance into a goal. The response
// carries the authoritative goal and remaining balance; callers must
// reconcile any optimistic state against it.
func (c *Client) Contribute(ctx context.Context, userID, goalID string, amount int) (*ContributeResponse, error) {
	payload := map[string]int{"amount": amount}

	var contrib ContributeResponse
	if err := sendJSON(ctx, c, http.MethodPost, "/api/users/"+userID+"/goals/"+goalID+"/contribute", payload, &contrib, http.StatusOK); err != nil {
		return nil, err
	}
	return &contrib, nil
}
