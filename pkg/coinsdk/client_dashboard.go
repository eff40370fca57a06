package coinsdk

import "context"

// TeacherDashboard fetches the teacher's aggregate view: classes, student
// counts and engagement stats.
func (c *Client) TeacherDashboard(ctx context.Context) (*Dashboard, error) {
	var dash Dashboard
	if err := getJSON(ctx, c, "/api/teachers/dashboard", &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

// RoleDashboard fetches the dashboard view for an arbitrary role segment
// (child and teen variants share this route).
func (c *Client) RoleDashboard(ctx context.Context, role Role) (*Dashboard, error) {
	var dash Dashboard
	if err := getJSON(ctx, c, "/api/dashboard/"+string(role), &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}
