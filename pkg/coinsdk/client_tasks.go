package coinsdk

import (
	"context"
	"net/http"
)

// ParentTasks lists the tasks a parent has assigned across their children.
func (c *Client) ParentTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := getJSON(ctx, c, "/api/parents/tasks", &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask assigns a new task to a child.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	var task Task
	if err := sendJSON(ctx, c, http.MethodPost, "/api/parents/tasks", req, &task, http.StatusOK); err != nil {
		return nil, err
	}
	return &task, nil
}

// CompleteTask marks a task done from the child's side. The reward is not
// paid out until the parent approves.
func (c *Client) CompleteTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	if err := sendJSON(ctx, c, http.MethodPut, "/api/tasks/"+taskID+"/complete", nil, &task, http.StatusOK); err != nil {
		return nil, err
	}
	return &task, nil
}

// ApproveTask approves a completed task and releases the coin reward.
func (c *Client) ApproveTask(ctx context.Context, taskID string) (*Task, error) {
	var task Task
	if err := sendJSON(ctx, c, http.MethodPut, "/api/parents/tasks/"+taskID+"/approve", nil, &task, http.StatusOK); err != nil {
		return nil, err
	}
	return &task, nil
}
