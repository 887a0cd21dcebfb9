package agent

import (
	"context"

	"SupportChat/internal/funcall"
	"SupportChat/internal/session"
)

// Executor runs function calls through the codec. The router only selects it
// when the last assistant message is call-shaped, but the codec tolerates
// anything and always yields a JSON reply.
type Executor struct {
	codec *funcall.Codec
}

// NewExecutor creates an Executor over the codec.
func NewExecutor(codec *funcall.Codec) *Executor {
	return &Executor{codec: codec}
}

// Role implements Agent.
func (e *Executor) Role() session.Role {
	return session.RoleExecutor
}

// Produce implements Agent.
func (e *Executor) Produce(ctx context.Context, sess *session.Session) (string, error) {
	last, _ := sess.Last()
	return e.codec.Execute(ctx, last.Content), nil
}
