package chat

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"SupportChat/internal/agent"
	"SupportChat/internal/funcall"
	"SupportChat/internal/session"
	"SupportChat/internal/support"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDriver wires a complete local conversation: scripted user, scripted
// assistant, executor over the simulated backend, and the inert coordinator.
func newTestDriver(t *testing.T, replies ...string) *Driver {
	t.Helper()
	svc := support.NewService(support.NewRetryLedger(), support.NewMemStore(), nil)
	agents := []agent.Agent{
		agent.NewScriptedUser(replies...),
		agent.NewScriptedAssistant(nil),
		agent.NewExecutor(funcall.NewCodec(svc, nil)),
		&agent.Coordinator{},
	}
	sess := session.New("test")
	return NewDriver(sess, agents, MaxRounds, nil, &bytes.Buffer{})
}

func TestRunBlockedListingFlow(t *testing.T) {
	d := newTestDriver(t, "listing", "123", "4562")
	require.NoError(t, d.Run(context.Background()))

	sess := d.Session()
	assert.True(t, sess.Terminated)
	assert.Equal(t, session.StopMarker, sess.StopReason)
	assert.LessOrEqual(t, sess.Rounds, MaxRounds)

	last, ok := sess.Last()
	require.True(t, ok)
	assert.Equal(t, session.RoleAssistant, last.Role)
	assert.True(t, session.EndsWithMarker(last.Content))
	assert.Contains(t, last.Content, "TICKET-1")

	transcript := sess.Transcript()
	assert.Contains(t, transcript, "FUNCTION_CALL:get_user_status")
	assert.Contains(t, transcript, "FUNCTION_CALL:get_listing_status")
	assert.Contains(t, transcript, `FUNCTION_CALL:create_support_ticket{"user_id": "123", "listing_id": "4562", "reason": "Reactivation requested"}`)
}

func TestRunListingRetryExhaustion(t *testing.T) {
	d := newTestDriver(t, "listing", "123", "52")
	require.NoError(t, d.Run(context.Background()))

	sess := d.Session()
	assert.True(t, sess.Terminated)
	assert.Equal(t, session.StopMarker, sess.StopReason)

	transcript := sess.Transcript()
	assert.Contains(t, transcript, "attempt 1/3")
	assert.Contains(t, transcript, "attempt 2/3")

	last, ok := sess.Last()
	require.True(t, ok)
	assert.Equal(t, session.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "Maximum retries reached for listing")
	assert.True(t, session.EndsWithMarker(last.Content))
}

func TestRunBrandInProgressFlow(t *testing.T) {
	d := newTestDriver(t, "brand approval", "abc2")
	require.NoError(t, d.Run(context.Background()))

	sess := d.Session()
	assert.Equal(t, session.StopMarker, sess.StopReason)

	transcript := sess.Transcript()
	assert.Contains(t, transcript, `FUNCTION_CALL:get_brand_approval_status{"request_id": "abc2"}`)
	assert.NotContains(t, transcript, "create_support_ticket")

	last, _ := sess.Last()
	assert.Contains(t, last.Content, "still in progress")
}

func TestRunBrandDisapprovedOpensTicket(t *testing.T) {
	d := newTestDriver(t, "brand approval", "xyz9")
	require.NoError(t, d.Run(context.Background()))

	sess := d.Session()
	assert.Equal(t, session.StopMarker, sess.StopReason)
	last, _ := sess.Last()
	assert.Contains(t, last.Content, "TICKET-1")
	assert.True(t, session.EndsWithMarker(last.Content))
}

// chattyAgent never terminates, forcing the round budget to fire.
type chattyAgent struct {
	role session.Role
	text string
}

func (a chattyAgent) Role() session.Role { return a.role }

func (a chattyAgent) Produce(ctx context.Context, sess *session.Session) (string, error) {
	return a.text, nil
}

func TestRunRoundBudget(t *testing.T) {
	sess := session.New("test")
	agents := []agent.Agent{
		chattyAgent{role: session.RoleUser, text: "still here"},
		chattyAgent{role: session.RoleAssistant, text: "how can I help?"},
	}
	d := NewDriver(sess, agents, 6, nil, nil)
	require.NoError(t, d.Run(context.Background()))

	assert.True(t, sess.Terminated)
	assert.Equal(t, session.StopBudget, sess.StopReason)
	assert.Equal(t, 6, sess.Rounds)
}

func TestRunUserAbort(t *testing.T) {
	// Script runs dry mid-conversation; the driver records a clean abort.
	d := newTestDriver(t, "listing")
	require.NoError(t, d.Run(context.Background()))

	sess := d.Session()
	assert.True(t, sess.Terminated)
	assert.Equal(t, session.StopAborted, sess.StopReason)
}

type failingAgent struct {
	role session.Role
}

func (a failingAgent) Role() session.Role { return a.role }

func (a failingAgent) Produce(ctx context.Context, sess *session.Session) (string, error) {
	return "", errors.New("backend unavailable")
}

func TestRunAgentFailure(t *testing.T) {
	sess := session.New("test")
	agents := []agent.Agent{
		chattyAgent{role: session.RoleUser, text: "hello"},
		failingAgent{role: session.RoleAssistant},
	}
	d := NewDriver(sess, agents, MaxRounds, nil, nil)
	err := d.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unavailable")
	assert.True(t, sess.Terminated)
	assert.Equal(t, session.StopAborted, sess.StopReason)
}

func TestRunMissingAgent(t *testing.T) {
	sess := session.New("test")
	d := NewDriver(sess, nil, MaxRounds, nil, nil)
	err := d.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no agent registered")
}
