package api

import (
	"context"
	"net/http"
	"net/url"

	"yuvsiksha-client/models"
)

// Teacher fetches one teacher profile.
func (c *Client) Teacher(ctx context.Context, teacherID string) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := c.call(ctx, http.MethodGet, "/teachers/"+teacherID, nil, nil, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Availability fetches the bookable time-slot strings for one local
// calendar date (YYYY-MM-DD).
func (c *Client) Availability(ctx context.Context, teacherID, dateKey string) ([]string, error) {
	query := url.Values{}
	query.Set("date", dateKey)

	var slots []string
	if err := c.call(ctx, http.MethodGet, "/teachers/"+teacherID+"/availability", query, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}
