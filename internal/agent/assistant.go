package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"SupportChat/internal/funcall"
	"SupportChat/internal/session"
	"SupportChat/internal/support"
)

// intent is the triage branch the user asked for.
type intent int

const (
	intentUnknown intent = iota
	intentListing
	intentBrand
)

// apologyMessage ends the conversation gracefully when the assistant cannot
// continue (malformed executor payload, capability failure).
const apologyMessage = "I'm sorry, something went wrong on our side and I can't continue this conversation right now. Please try again later. " + session.TerminationMarker

// ScriptedAssistant is the deterministic rendition of the assistant's
// behavioral contract: for every backend status it emits exactly one of a
// function call, a terminal message, or a continuation prompt. All of its
// state is re-derived from the transcript on every turn, so it is a pure
// function of the session.
type ScriptedAssistant struct {
	logger *slog.Logger
}

// NewScriptedAssistant creates a ScriptedAssistant.
func NewScriptedAssistant(logger *slog.Logger) *ScriptedAssistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScriptedAssistant{logger: logger}
}

// Role implements Agent.
func (a *ScriptedAssistant) Role() session.Role {
	return session.RoleAssistant
}

// Produce implements Agent.
func (a *ScriptedAssistant) Produce(ctx context.Context, sess *session.Session) (string, error) {
	last, ok := sess.Last()
	if !ok {
		return "Hello! Do you need help with a listing or with a brand approval request?", nil
	}

	st := deriveState(sess)
	switch last.Role {
	case session.RoleUser:
		return a.onUserMessage(st), nil
	case session.RoleExecutor:
		return a.onResult(st, last.Content), nil
	default:
		return "How can I help with your listing or brand approval?", nil
	}
}

// convoState is the assistant's view of the conversation so far.
type convoState struct {
	intent       intent
	ids          []string // user-supplied identifiers, in order, after intent
	lastCall     string   // operation of the most recent assistant function call
	lastCallText string   // its verbatim message, for auto-retry re-emission
}

func (st convoState) userID() string {
	if len(st.ids) > 0 {
		return st.ids[0]
	}
	return "default"
}

func (st convoState) listingID() string {
	if len(st.ids) > 1 {
		return st.ids[len(st.ids)-1]
	}
	return "default"
}

// deriveState replays the transcript: the first unambiguous user message
// fixes the intent, later user messages are identifiers (the whole trimmed
// reply, as the source treated them), and assistant call messages track the
// operation in flight.
func deriveState(sess *session.Session) convoState {
	var st convoState
	for _, msg := range sess.Messages {
		switch msg.Role {
		case session.RoleUser:
			if st.intent == intentUnknown {
				st.intent = detectIntent(msg.Content)
				continue
			}
			st.ids = append(st.ids, strings.TrimSpace(msg.Content))
		case session.RoleAssistant:
			if funcall.IsCall(msg.Content) {
				if req, err := funcall.Decode(msg.Content); err == nil {
					st.lastCall = req.Op
					st.lastCallText = msg.Content
				}
			}
		}
	}
	return st
}

// detectIntent classifies a user message. A message naming both branches
// (like the fixed opening utterance) stays unknown and triggers a
// clarification prompt.
func detectIntent(text string) intent {
	t := strings.ToLower(text)
	hasBrand := strings.Contains(t, "brand")
	hasListing := strings.Contains(t, "listing")
	switch {
	case hasBrand && !hasListing:
		return intentBrand
	case hasListing && !hasBrand:
		return intentListing
	default:
		return intentUnknown
	}
}

// onUserMessage advances the flow after a user turn: clarify intent, ask for
// the next identifier, or emit the lookup call for an identifier just given.
func (a *ScriptedAssistant) onUserMessage(st convoState) string {
	switch st.intent {
	case intentUnknown:
		return "Do you need help with a listing or with a brand approval request?"
	case intentBrand:
		if len(st.ids) == 0 {
			return "Sure, I can help with brand approval. Please provide your brand approval request ID."
		}
		return callBrandApproval(st.ids[len(st.ids)-1])
	default:
		switch len(st.ids) {
		case 0:
			return "Sure, I can help with your listing. Please provide your user ID."
		case 1:
			return callUserStatus(st.ids[0])
		default:
			return callListingStatus(st.ids[len(st.ids)-1])
		}
	}
}

// onResult applies the status→action table to an executor payload.
func (a *ScriptedAssistant) onResult(st convoState, payload string) string {
	res, err := support.ParseResult(payload)
	if err != nil {
		a.logger.Warn("unparseable executor payload", "error", err)
		return apologyMessage
	}

	if res.Status == "retrying" && res.AutoRetry && st.lastCallText != "" {
		// Re-invoke with identical parameters; the ledger counts attempts.
		return st.lastCallText
	}

	switch st.lastCall {
	case support.OpUserStatus:
		if res.Status == "onboarding" {
			return res.Message + " TERMINATING chat now. " + session.TerminationMarker
		}
		// active, on_hold, and the retry-exhausted on_hold all continue.
		return res.Message + " Please provide your listing ID."

	case support.OpListingStatus:
		switch res.Status {
		case "blocked":
			return callCreateTicket(st.userID(), st.listingID(), "Reactivation requested")
		case "error":
			if session.EndsWithMarker(res.Message) {
				return res.Message
			}
			return terminal(res.Message)
		default:
			// active, inactive, archived, rfa are all terminal informs.
			return terminal(res.Message)
		}

	case support.OpCreateTicket:
		if st.intent == intentBrand {
			return terminal(fmt.Sprintf("%s Support ticket %s created for brand approval.", res.Message, res.TicketID))
		}
		return terminal(fmt.Sprintf("%s Support ticket %s created.", res.Message, res.TicketID))

	case support.OpBrandApproval:
		switch res.Status {
		case "approved":
			return terminal(res.Message)
		case "in_progress", "disapproved":
			if res.TimelineHours > 72 {
				return callCreateTicket("N/A", "N/A", "Brand approval follow-up")
			}
			return terminal(res.Message + " Please wait while your brand request is processed.")
		default:
			return terminal(res.Message)
		}

	default:
		// Unrecognized payloads (critical_error included) end the chat.
		if res.Message != "" {
			return terminal(res.Message)
		}
		return apologyMessage
	}
}

func terminal(message string) string {
	return message + " " + session.TerminationMarker
}

func callUserStatus(userID string) string {
	return fmt.Sprintf(`FUNCTION_CALL:get_user_status{"user_id": %q}`, userID)
}

func callListingStatus(listingID string) string {
	return fmt.Sprintf(`FUNCTION_CALL:get_listing_status{"listing_id": %q}`, listingID)
}

func callBrandApproval(requestID string) string {
	return fmt.Sprintf(`FUNCTION_CALL:get_brand_approval_status{"request_id": %q}`, requestID)
}

func callCreateTicket(userID, listingID, reason string) string {
	return fmt.Sprintf(`FUNCTION_CALL:create_support_ticket{"user_id": %q, "listing_id": %q, "reason": %q}`, userID, listingID, reason)
}
