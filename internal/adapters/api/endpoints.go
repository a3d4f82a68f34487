package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
)

func itemPath(collection, id string) string {
	return "/" + collection + "/" + url.PathEscape(id)
}

// ListAssets fetches GET /assets
func (c *Client) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	return getData[[]domain.Asset](ctx, c, "/assets", "/assets")
}

// CreateAsset sends POST /assets
func (c *Client) CreateAsset(ctx context.Context, req domain.AssetRequest) error {
	return c.do(ctx, call{method: http.MethodPost, route: "/assets", path: "/assets", body: req})
}

// UpdateAsset sends the full payload to PATCH /assets/{id}
func (c *Client) UpdateAsset(ctx context.Context, id string, req domain.AssetRequest) error {
	return c.do(ctx, call{method: http.MethodPatch, route: "/assets/{id}", path: itemPath("assets", id), body: req})
}

// DeleteAsset sends DELETE /assets/{id}
func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, route: "/assets/{id}", path: itemPath("assets", id)})
}

// Metrics fetches GET /assets/metrics
func (c *Client) Metrics(ctx context.Context) (*domain.Metrics, error) {
	m, err := getData[domain.Metrics](ctx, c, "/assets/metrics", "/assets/metrics")
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListTransfers fetches GET /transfers
func (c *Client) ListTransfers(ctx context.Context) ([]domain.Transfer, error) {
	return getData[[]domain.Transfer](ctx, c, "/transfers", "/transfers")
}

// CreateTransfer sends POST /transfers
func (c *Client) CreateTransfer(ctx context.Context, req domain.CreateTransferRequest) error {
	return c.do(ctx, call{method: http.MethodPost, route: "/transfers", path: "/transfers", body: req})
}

// UpdateTransferStatus sends PATCH /transfers/{id}/status
func (c *Client) UpdateTransferStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, call{
		method: http.MethodPatch,
		route:  "/transfers/{id}/status",
		path:   itemPath("transfers", id) + "/status",
		body:   domain.StatusUpdate{Status: status},
	})
}

// DeleteTransfer sends DELETE /transfers/{id}
func (c *Client) DeleteTransfer(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, route: "/transfers/{id}", path: itemPath("transfers", id)})
}

// ListAssignments fetches GET /assignments
func (c *Client) ListAssignments(ctx context.Context) ([]domain.Assignment, error) {
	return getData[[]domain.Assignment](ctx, c, "/assignments", "/assignments")
}

// CreateAssignment sends POST /assignments
func (c *Client) CreateAssignment(ctx context.Context, req domain.CreateAssignmentRequest) error {
	return c.do(ctx, call{method: http.MethodPost, route: "/assignments", path: "/assignments", body: req})
}

// UpdateAssignmentStatus sends PATCH /assignments/{id}/status
func (c *Client) UpdateAssignmentStatus(ctx context.Context, id, status string) error {
	return c.do(ctx, call{
		method: http.MethodPatch,
		route:  "/assignments/{id}/status",
		path:   itemPath("assignments", id) + "/status",
		body:   domain.StatusUpdate{Status: status},
	})
}

// DeleteAssignment sends DELETE /assignments/{id}
func (c *Client) DeleteAssignment(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, route: "/assignments/{id}", path: itemPath("assignments", id)})
}

// ListUsers fetches GET /users
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	return getData[[]domain.User](ctx, c, "/users", "/users")
}

// authResponse accepts the token and user either at the top level or
// inside the usual data envelope
type authResponse struct {
	domain.AuthResult
	Data *domain.AuthResult `json:"data"`
}

func (r authResponse) result() *domain.AuthResult {
	if r.Token == "" && r.Data != nil {
		return r.Data
	}
	res := r.AuthResult
	return &res
}

// Login sends POST /auth/login without a bearer token
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	var res authResponse
	if err := c.do(ctx, call{method: http.MethodPost, route: "/auth/login", path: "/auth/login", public: true, body: creds, out: &res}); err != nil {
		return nil, err
	}
	return res.result(), nil
}

// Register sends POST /auth/register without a bearer token
func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	var res authResponse
	if err := c.do(ctx, call{method: http.MethodPost, route: "/auth/register", path: "/auth/register", public: true, body: reg, out: &res}); err != nil {
		return nil, err
	}
	return res.result(), nil
}

// Me fetches GET /auth/me
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	u, err := getData[domain.User](ctx, c, "/auth/me", "/auth/me")
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile sends PUT /auth/profile
func (c *Client) UpdateProfile(ctx context.Context, req domain.ProfileUpdate) (*domain.User, error) {
	var env envelope[domain.User]
	if err := c.do(ctx, call{method: http.MethodPut, route: "/auth/profile", path: "/auth/profile", body: req, out: &env}); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
