package funcall

import (
	"context"
	"fmt"
	"log/slog"

	"SupportChat/internal/support"
)

// Codec decodes function-call messages and dispatches them to the backend.
// Its output is always the canonical JSON serialization of a support.Result,
// whether the call succeeded or failed; the executor role therefore always
// has some textual reply, and every reply is machine-readable.
type Codec struct {
	backend support.Backend
	logger  *slog.Logger
}

// NewCodec creates a codec over the given backend.
func NewCodec(backend support.Backend, logger *slog.Logger) *Codec {
	if logger == nil {
		logger = slog.Default()
	}
	return &Codec{backend: backend, logger: logger}
}

// Execute parses and runs a function-call message. Decode failures become
// {"status":"error",...} payloads; backend failures and panics become
// {"status":"critical_error",...} payloads with technical detail.
func (c *Codec) Execute(ctx context.Context, message string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("panic during function dispatch", "panic", r)
			out = criticalResult(fmt.Sprintf("panic: %v", r)).JSON()
		}
	}()

	req, err := Decode(message)
	if err != nil {
		c.logger.Warn("function call rejected", "error", err)
		return support.Result{
			Status:  "error",
			Message: err.Error(),
		}.JSON()
	}

	c.logger.Info("dispatching function call", "operation", req.Op)

	var result support.Result
	switch req.Op {
	case support.OpUserStatus:
		result, err = c.backend.UserStatus(ctx, req.String("user_id", "default"))
	case support.OpListingStatus:
		result, err = c.backend.ListingStatus(ctx, req.String("listing_id", "default"))
	case support.OpCanReactivate:
		result, err = c.backend.CanReactivateListing(ctx, req.String("block_reason", ""))
	case support.OpCreateTicket:
		result, err = c.backend.CreateSupportTicket(ctx,
			req.String("user_id", ""),
			req.String("listing_id", ""),
			req.String("reason", ""),
		)
	case support.OpBrandApproval:
		result, err = c.backend.BrandApprovalStatus(ctx, req.String("request_id", ""))
	}
	if err != nil {
		c.logger.Error("function dispatch failed", "operation", req.Op, "error", err)
		return criticalResult(err.Error()).JSON()
	}
	return result.JSON()
}

func criticalResult(detail string) support.Result {
	return support.Result{
		Status:           "critical_error",
		Message:          "System failure - contact support",
		TechnicalDetails: detail,
	}
}
