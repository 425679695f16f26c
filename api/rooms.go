package api

import (
	"context"
	"net/http"
)

func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/rooms", nil, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Rooms []Room `json:"rooms"`
	}
	if err := c.doJSON(req, &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/companies/list", nil, nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Companies []Company `json:"companies"`
	}
	if err := c.doJSON(req, &resp); err != nil {
		return nil, err
	}
	return resp.Companies, nil
}

func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/current-user", nil, nil)
	if err != nil {
		return User{}, err
	}
	var resp struct {
		User User `json:"user"`
	}
	if err := c.doJSON(req, &resp); err != nil {
		return User{}, err
	}
	return resp.User, nil
}
