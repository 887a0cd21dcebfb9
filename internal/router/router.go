// Package router decides, after every message, which role acts next. The
// decision is a pure function of the last message: no conversational side
// effects, no hidden state, and it never fails.
package router

import (
	"SupportChat/internal/funcall"
	"SupportChat/internal/session"
)

// Kind discriminates a routing decision.
type Kind int

const (
	Route Kind = iota
	Terminate
)

// Decision is the router's output: either the next active role or a
// termination signal.
type Decision struct {
	Kind Kind
	Next session.Role
}

func routeTo(role session.Role) Decision {
	return Decision{Kind: Route, Next: role}
}

// Decide selects the next speaker from the session's last message. The rule
// order is a correctness invariant: termination is checked before the
// function-call rules, so a message that both ends in the marker and carries
// a call-shaped body terminates, never dispatches.
func Decide(sess *session.Session) Decision {
	last, ok := sess.Last()
	if !ok {
		// Conversation always opens with the assistant.
		return routeTo(session.RoleAssistant)
	}

	if session.EndsWithMarker(last.Content) {
		return Decision{Kind: Terminate}
	}

	switch last.Role {
	case session.RoleAssistant:
		if funcall.IsCall(last.Content) {
			return routeTo(session.RoleExecutor)
		}
		if !funcall.ContainsPrefix(last.Content) {
			return routeTo(session.RoleUser)
		}
		// Prefix present but not call-shaped: fall through to the default.
	case session.RoleExecutor:
		// Results are always interpreted by the assistant.
		return routeTo(session.RoleAssistant)
	case session.RoleUser:
		return routeTo(session.RoleAssistant)
	}

	return routeTo(session.RoleUser)
}
