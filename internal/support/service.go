package support

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"SupportChat/internal/session"
)

// Backend is the boundary of the backend operation set. The simulated
// Service implements it locally; remote implementations must honor the same
// inputs, status vocabulary, and retry semantics.
type Backend interface {
	UserStatus(ctx context.Context, userID string) (Result, error)
	ListingStatus(ctx context.Context, listingID string) (Result, error)
	CanReactivateListing(ctx context.Context, blockReason string) (Result, error)
	CreateSupportTicket(ctx context.Context, userID, listingID, reason string) (Result, error)
	BrandApprovalStatus(ctx context.Context, requestID string) (Result, error)
}

// Service is the simulated backend: five deterministic, input-derived
// operations with no real network I/O.
type Service struct {
	ledger  *RetryLedger
	tickets TicketStore
	logger  *slog.Logger
}

// NewService creates a Service over the given ledger and ticket store.
func NewService(ledger *RetryLedger, tickets TicketStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{ledger: ledger, tickets: tickets, logger: logger}
}

// UserStatus checks a user account. IDs starting with "5" exercise the retry
// path; "1" is active, "2" onboarding, anything else on hold.
func (s *Service) UserStatus(ctx context.Context, userID string) (Result, error) {
	s.logger.Info("user status lookup", "user_id", userID)

	if strings.HasPrefix(userID, "5") {
		key := retryKey("user", userID)
		attempt := s.ledger.Increment(key)
		s.logger.Info("retry attempt", "key", key, "attempt", attempt, "max", MaxRetries)
		if attempt < MaxRetries {
			return Result{
				Status:      "retrying",
				Message:     fmt.Sprintf("Automatically retrying API call (attempt %d/%d)", attempt, MaxRetries),
				RetryNeeded: Bool(true),
				AutoRetry:   true,
				UserID:      userID,
			}, nil
		}
		s.ledger.Reset(key)
		return Result{
			Status:     "on_hold",
			ReasonCode: "MAX_RETRIES_EXCEEDED",
			Message:    "Account verification failed after multiple attempts",
			UserID:     userID,
		}, nil
	}

	switch {
	case strings.HasPrefix(userID, "1"):
		return Result{
			Status:  "active",
			Message: "Your account is active.",
			UserID:  userID,
		}, nil
	case strings.HasPrefix(userID, "2"):
		return Result{
			Status: "onboarding",
			Message: "Your products aren't visible yet. Once onboarding is complete, " +
				"your account will be activated within 48 hours, and your listings will go live.",
			UserID: userID,
		}, nil
	default:
		return Result{
			Status:  "on_hold",
			Message: "Your account is on hold. Please contact support if you have questions.",
			UserID:  userID,
		}, nil
	}
}

// ListingStatus checks a product listing. IDs starting with "5" exercise the
// retry path; otherwise the last character selects the status. Note the
// exhaustion shape differs from UserStatus: it is a hard error whose message
// embeds the termination marker.
func (s *Service) ListingStatus(ctx context.Context, listingID string) (Result, error) {
	s.logger.Info("listing status lookup", "listing_id", listingID)

	if strings.HasPrefix(listingID, "5") {
		key := retryKey("listing", listingID)
		attempt := s.ledger.Increment(key)
		s.logger.Info("retry attempt", "key", key, "attempt", attempt, "max", MaxRetries)
		if attempt < MaxRetries {
			return Result{
				Status:      "retrying",
				Message:     fmt.Sprintf("Automatically retrying API call (attempt %d/%d)", attempt, MaxRetries),
				RetryNeeded: Bool(true),
				AutoRetry:   true,
				ListingID:   listingID,
			}, nil
		}
		s.ledger.Reset(key)
		return Result{
			Status: "error",
			Message: "Maximum retries reached for listing. Terminating conversation. " +
				"Please try again later. " + session.TerminationMarker,
			RetryNeeded: Bool(false),
			ListingID:   listingID,
		}, nil
	}

	lastChar := "0"
	if listingID != "" {
		lastChar = listingID[len(listingID)-1:]
	}
	switch lastChar {
	case "1":
		return Result{
			Status:    "inactive",
			Message:   "Your listing is currently inactive. Please activate it to be visible.",
			ListingID: listingID,
		}, nil
	case "2":
		return Result{
			Status:      "blocked",
			Message:     "Your listing is blocked due to seller state change.",
			BlockReason: "seller_state_change",
			ListingID:   listingID,
		}, nil
	case "3":
		return Result{
			Status:    "archived",
			Message:   "Your listing is archived and not visible to customers.",
			ListingID: listingID,
		}, nil
	case "4":
		return Result{
			Status:    "rfa",
			Message:   "Your listing is pending approval (RFA).",
			ListingID: listingID,
		}, nil
	default:
		return Result{
			Status:    "active",
			Message:   "Your listing is active and visible to customers.",
			ListingID: listingID,
		}, nil
	}
}

// CanReactivateListing always answers yes; the decision belongs to a human
// process the simulation does not model.
func (s *Service) CanReactivateListing(ctx context.Context, blockReason string) (Result, error) {
	s.logger.Info("reactivation check", "block_reason", blockReason)
	return Result{
		CanReactivate: Bool(true),
		Message:       "Listing can be reactivated.",
	}, nil
}

// CreateSupportTicket allocates a ticket through the store.
func (s *Service) CreateSupportTicket(ctx context.Context, userID, listingID, reason string) (Result, error) {
	ticketID, err := s.tickets.Create(ctx, userID, listingID, reason)
	if err != nil {
		return Result{}, fmt.Errorf("failed to create support ticket: %w", err)
	}
	s.logger.Info("support ticket created", "ticket_id", ticketID, "user_id", userID, "listing_id", listingID)
	return Result{
		TicketID: ticketID,
		Status:   "created",
		Message:  fmt.Sprintf("Support ticket created for user %s regarding listing %s: %s", userID, listingID, reason),
	}, nil
}

// BrandApprovalStatus checks a brand approval request by its last character.
func (s *Service) BrandApprovalStatus(ctx context.Context, requestID string) (Result, error) {
	s.logger.Info("brand approval lookup", "request_id", requestID)

	lastChar := "0"
	if requestID != "" {
		lastChar = requestID[len(requestID)-1:]
	}
	switch lastChar {
	case "1":
		return Result{
			Status:  "approved",
			Message: "Your brand approval request is approved.",
		}, nil
	case "2":
		return Result{
			Status:        "in_progress",
			Message:       "Brand approval is still in progress.",
			TimelineHours: 48,
		}, nil
	default:
		return Result{
			Status:        "disapproved",
			Message:       "Brand approval disapproved. Additional steps required.",
			TimelineHours: 80,
		}, nil
	}
}

func retryKey(op, id string) string {
	return op + "_" + id
}
