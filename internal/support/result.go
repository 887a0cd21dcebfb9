package support

import "encoding/json"

// Operation names recognized by the function-call protocol.
const (
	OpUserStatus    = "get_user_status"
	OpListingStatus = "get_listing_status"
	OpCanReactivate = "can_reactivate_listing"
	OpCreateTicket  = "create_support_ticket"
	OpBrandApproval = "get_brand_approval_status"
)

// KnownOperation reports whether name is one of the five backend operations.
func KnownOperation(name string) bool {
	switch name {
	case OpUserStatus, OpListingStatus, OpCanReactivate, OpCreateTicket, OpBrandApproval:
		return true
	}
	return false
}

// Result is the union of the five operations' response shapes. It is the only
// channel through which the executor role speaks back into the conversation,
// so it always serializes to a canonical JSON form. Tri-state booleans use
// pointers: create_support_ticket never carries retry_needed, while a
// terminal listing error must carry an explicit false.
type Result struct {
	Status           string `json:"status,omitempty"`
	Message          string `json:"message"`
	ReasonCode       string `json:"reason_code,omitempty"`
	RetryNeeded      *bool  `json:"retry_needed,omitempty"`
	AutoRetry        bool   `json:"auto_retry,omitempty"`
	UserID           string `json:"user_id,omitempty"`
	ListingID        string `json:"listing_id,omitempty"`
	BlockReason      string `json:"block_reason,omitempty"`
	TimelineHours    int    `json:"timeline_hours,omitempty"`
	TicketID         string `json:"ticket_id,omitempty"`
	CanReactivate    *bool  `json:"can_reactivate,omitempty"`
	TechnicalDetails string `json:"technical_details,omitempty"`
}

// JSON returns the canonical serialization of the result.
func (r Result) JSON() string {
	b, _ := json.Marshal(r)
	return string(b)
}

// ParseResult decodes a canonical result serialization.
func ParseResult(text string) (Result, error) {
	var r Result
	err := json.Unmarshal([]byte(text), &r)
	return r, err
}

// Bool returns a pointer suitable for the tri-state fields of Result.
func Bool(b bool) *bool {
	return &b
}
