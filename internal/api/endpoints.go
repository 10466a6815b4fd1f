package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sadopc/agenda/internal/model"
)

// ─── Users ────────────────────────────────────────────────────────────────────

func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.LoginResponse, error) {
	var resp model.LoginResponse
	err := c.do(ctx, http.MethodPost, loginPath, req, &resp)
	return resp, err
}

func (c *Client) Register(ctx context.Context, req model.RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/users/register", req, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, req model.VerifyEmailRequest) error {
	return c.do(ctx, http.MethodPost, "/users/verify-email", req, nil)
}

func (c *Client) Profile(ctx context.Context) (model.User, error) {
	var u model.User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, &u)
	return u, err
}

// ─── Events ───────────────────────────────────────────────────────────────────

// ListEvents returns every event the backend exposes. The response may be an
// array or an {events: [...]} envelope.
func (c *Client) ListEvents(ctx context.Context) ([]model.Event, error) {
	var list model.EventList
	if err := c.do(ctx, http.MethodGet, "/events", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) ListEventsByUser(ctx context.Context, userID int64) ([]model.Event, error) {
	var list model.EventList
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/events/user/%d", userID), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	var ev model.Event
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/events/%d", id), nil, &ev)
	return ev, err
}

func (c *Client) CreateEvent(ctx context.Context, p model.EventPayload) (model.Event, error) {
	var ev model.Event
	err := c.do(ctx, http.MethodPost, "/events", p, &ev)
	return ev, err
}

func (c *Client) UpdateEvent(ctx context.Context, id int64, p model.EventPayload) (model.Event, error) {
	var ev model.Event
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/events/%d", id), p, &ev)
	return ev, err
}

func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/events/%d", id), nil, nil)
}

// ─── NLP ──────────────────────────────────────────────────────────────────────

func (c *Client) ParseText(ctx context.Context, text string) (model.ParseResult, error) {
	var res model.ParseResult
	err := c.do(ctx, http.MethodPost, "/nlp/parse", model.ParseRequest{Text: text}, &res)
	return res, err
}
