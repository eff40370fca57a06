package coinsdk

import (
	"context"
	"net/http"
)

// Classes lists the classrooms a teacher runs.
func (c *Client) Classes(ctx context.Context, teacherID string) ([]Classroom, error) {
	var classes []Classroom
	if err := getJSON(ctx, c, "/api/teachers/"+teacherID+"/classes", &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// CreateClass creates a classroom for a teacher.
func (c *Client) CreateClass(ctx context.Context, teacherID string, req CreateClassRequest) (*Classroom, error) {
	var class Classroom
	if err := sendJSON(ctx, c, http.MethodPost, "/api/teachers/"+teacherID+"/classes", req, &class, http.StatusOK); err != nil {
		return nil, err
	}
	return &class, nil
}

// ClassStudents lists the students enrolled in a classroom.
func (c *Client) ClassStudents(ctx context.Context, classID string) ([]Student, error) {
	var students []Student
	if err := getJSON(ctx, c, "/api/classes/"+classID+"/students", &students); err != nil {
		return nil, err
	}
	return students, nil
}
