package router

import (
	"testing"

	"SupportChat/internal/session"

	"github.com/stretchr/testify/assert"
)

func sessionWith(role session.Role, content string) *session.Session {
	sess := session.New("test")
	sess.Append(role, content)
	return sess
}

func TestDecideEmptySession(t *testing.T) {
	dec := Decide(session.New("test"))
	assert.Equal(t, Route, dec.Kind)
	assert.Equal(t, session.RoleAssistant, dec.Next)
}

func TestDecideRouting(t *testing.T) {
	tests := []struct {
		name    string
		role    session.Role
		content string
		next    session.Role
	}{
		{"assistant call routes to executor", session.RoleAssistant, `FUNCTION_CALL:get_user_status{"user_id": "1"}`, session.RoleExecutor},
		{"assistant prompt routes to user", session.RoleAssistant, "Please provide your listing ID.", session.RoleUser},
		{"assistant prefix without shape falls back to user", session.RoleAssistant, "I would use FUNCTION_CALL: here", session.RoleUser},
		{"executor routes to assistant", session.RoleExecutor, `{"status": "active", "message": "ok"}`, session.RoleAssistant},
		{"user routes to assistant", session.RoleUser, "my id is 123", session.RoleAssistant},
		{"unknown sender falls back to user", session.RoleCoordinator, "advisory note", session.RoleUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := Decide(sessionWith(tt.role, tt.content))
			assert.Equal(t, Route, dec.Kind)
			assert.Equal(t, tt.next, dec.Next)
		})
	}
}

func TestDecideTermination(t *testing.T) {
	tests := []struct {
		name    string
		role    session.Role
		content string
	}{
		{"assistant terminal", session.RoleAssistant, "All done. TERMINATE"},
		{"trailing whitespace", session.RoleAssistant, "All done. TERMINATE  \n"},
		{"user terminal", session.RoleUser, "never mind TERMINATE"},
		{"executor terminal", session.RoleExecutor, "done TERMINATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := Decide(sessionWith(tt.role, tt.content))
			assert.Equal(t, Terminate, dec.Kind)
		})
	}
}

// Termination is checked before the function-call rules: a message carrying
// both a call body and a trailing marker must terminate, never dispatch.
func TestDecideTerminationPrecedence(t *testing.T) {
	content := "FUNCTION_CALL:get_listing_status{\"listing_id\": \"52\"}\nTERMINATE"
	dec := Decide(sessionWith(session.RoleAssistant, content))
	assert.Equal(t, Terminate, dec.Kind)
}

func TestDecideCaseSensitiveMarker(t *testing.T) {
	dec := Decide(sessionWith(session.RoleAssistant, "all done. terminate"))
	assert.Equal(t, Route, dec.Kind)
	assert.Equal(t, session.RoleUser, dec.Next)
}
