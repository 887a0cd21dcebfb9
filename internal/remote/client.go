// Package remote implements the backend operation boundary against a real
// service: a JSON-RPC 2.0 client with stdio, HTTP, and WebSocket transports.
// It satisfies support.Backend, so the conversation core cannot tell a remote
// backend from the simulated one.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"SupportChat/internal/support"
)

// transport carries one JSON-RPC request/response exchange.
type transport interface {
	send(ctx context.Context, req JSONRPCRequest) (*JSONRPCResponse, error)
	close() error
}

// Client is a support.Backend served by a remote process.
type Client struct {
	name   string
	t      transport
	reqID  int32
	logger *slog.Logger
}

func newClient(name string, t transport, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{name: name, t: t, logger: logger}
}

// Name returns the client identifier.
func (c *Client) Name() string {
	return c.name
}

// Close disconnects from the backend service.
func (c *Client) Close() error {
	c.logger.Info("closed remote backend client", "name", c.name)
	return c.t.close()
}

// UserStatus implements support.Backend.
func (c *Client) UserStatus(ctx context.Context, userID string) (support.Result, error) {
	return c.call(ctx, MethodUserStatus, UserStatusParams{UserID: userID})
}

// ListingStatus implements support.Backend.
func (c *Client) ListingStatus(ctx context.Context, listingID string) (support.Result, error) {
	return c.call(ctx, MethodListingStatus, ListingStatusParams{ListingID: listingID})
}

// CanReactivateListing implements support.Backend.
func (c *Client) CanReactivateListing(ctx context.Context, blockReason string) (support.Result, error) {
	return c.call(ctx, MethodCanReactivate, CanReactivateParams{BlockReason: blockReason})
}

// CreateSupportTicket implements support.Backend.
func (c *Client) CreateSupportTicket(ctx context.Context, userID, listingID, reason string) (support.Result, error) {
	return c.call(ctx, MethodCreateTicket, CreateTicketParams{UserID: userID, ListingID: listingID, Reason: reason})
}

// BrandApprovalStatus implements support.Backend.
func (c *Client) BrandApprovalStatus(ctx context.Context, requestID string) (support.Result, error) {
	return c.call(ctx, MethodBrandApproval, BrandApprovalParams{RequestID: requestID})
}

// call sends one JSON-RPC request and decodes the result shape.
func (c *Client) call(ctx context.Context, method string, params any) (support.Result, error) {
	reqID := int(atomic.AddInt32(&c.reqID, 1))

	response, err := c.t.send(ctx, JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return support.Result{}, fmt.Errorf("%s failed: %w", method, err)
	}
	if response.Error != nil {
		return support.Result{}, fmt.Errorf("RPC error %d: %s", response.Error.Code, response.Error.Message)
	}

	resultJSON, err := json.Marshal(response.Result)
	if err != nil {
		return support.Result{}, fmt.Errorf("failed to marshal result: %w", err)
	}
	var result support.Result
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return support.Result{}, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	c.logger.Info("called remote backend", "name", c.name, "method", method)
	return result, nil
}
