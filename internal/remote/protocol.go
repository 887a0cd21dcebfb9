package remote

// JSON-RPC 2.0 framing for the support backend boundary. A real backend
// service implements these methods with the same inputs, status vocabulary,
// and retry semantics as the simulated support.Service.

// JSONRPCRequest represents a JSON-RPC 2.0 request
type JSONRPCRequest struct {
	JSONRPC string `json:"jsonrpc"` // Always "2.0"
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC 2.0 response
type JSONRPCResponse struct {
	JSONRPC string    `json:"jsonrpc"` // Always "2.0"
	ID      int       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Method names for the five backend operations.
const (
	MethodUserStatus    = "support/user_status"
	MethodListingStatus = "support/listing_status"
	MethodCanReactivate = "support/can_reactivate_listing"
	MethodCreateTicket  = "support/create_ticket"
	MethodBrandApproval = "support/brand_approval_status"
)

// UserStatusParams carries the user-status lookup input.
type UserStatusParams struct {
	UserID string `json:"user_id"`
}

// ListingStatusParams carries the listing-status lookup input.
type ListingStatusParams struct {
	ListingID string `json:"listing_id"`
}

// CanReactivateParams carries the reactivation-eligibility input.
type CanReactivateParams struct {
	BlockReason string `json:"block_reason"`
}

// CreateTicketParams carries the ticket-creation inputs.
type CreateTicketParams struct {
	UserID    string `json:"user_id"`
	ListingID string `json:"listing_id"`
	Reason    string `json:"reason"`
}

// BrandApprovalParams carries the brand-approval lookup input.
type BrandApprovalParams struct {
	RequestID string `json:"request_id"`
}
