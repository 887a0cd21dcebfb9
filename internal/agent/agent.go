// Package agent implements the four conversational roles. Each role is a
// capability to produce the next message given the session history; the
// router, not the agents, owns turn order.
package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"SupportChat/internal/session"
)

// Agent produces the next message for its role given the full session
// history.
type Agent interface {
	Role() session.Role
	Produce(ctx context.Context, sess *session.Session) (string, error)
}

// Human reads the user's next message from an input stream.
type Human struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewHuman creates a Human reading from r and prompting on w.
func NewHuman(r io.Reader, w io.Writer) *Human {
	return &Human{scanner: bufio.NewScanner(r), out: w}
}

// Role implements Agent.
func (h *Human) Role() session.Role {
	return session.RoleUser
}

// Produce reads one non-empty line. io.EOF signals the user closed the
// interface; the driver treats it as an abort, not an error.
func (h *Human) Produce(ctx context.Context, sess *session.Session) (string, error) {
	for {
		line, err := h.ReadLine("You: ")
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
	}
}

// ReadLine prompts and reads one trimmed line. The orchestrator shares this
// scanner for its inter-conversation commands, so stdin has a single reader.
func (h *Human) ReadLine(prompt string) (string, error) {
	fmt.Fprint(h.out, prompt)
	if !h.scanner.Scan() {
		if err := h.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(h.scanner.Text()), nil
}

// ScriptedUser replays a fixed list of replies; used by tests and script
// mode. Exhausting the script reads as the user closing the interface.
type ScriptedUser struct {
	replies []string
	next    int
}

// NewScriptedUser creates a ScriptedUser over replies.
func NewScriptedUser(replies ...string) *ScriptedUser {
	return &ScriptedUser{replies: replies}
}

// Role implements Agent.
func (u *ScriptedUser) Role() session.Role {
	return session.RoleUser
}

// Produce implements Agent.
func (u *ScriptedUser) Produce(ctx context.Context, sess *session.Session) (string, error) {
	if u.next >= len(u.replies) {
		return "", io.EOF
	}
	reply := u.replies[u.next]
	u.next++
	return reply, nil
}

// ErrCoordinatorInert is returned if the coordinator is ever asked to speak.
var ErrCoordinatorInert = errors.New("coordinator takes no turns")

// Coordinator is an advisory participant. Its orchestration rules are
// retained as data but the router never selects it, so Produce is
// unreachable in the current design.
type Coordinator struct{}

// Role implements Agent.
func (c *Coordinator) Role() session.Role {
	return session.RoleCoordinator
}

// Rules returns the coordinator's advisory orchestration rules.
func (c *Coordinator) Rules() []string {
	return []string{
		"If the assistant requests a user ID, select the user as next speaker.",
		"If the executor returns results, select the assistant as next speaker.",
		"If an error occurs, terminate the conversation.",
		"Otherwise continue normal rotation.",
	}
}

// Produce implements Agent.
func (c *Coordinator) Produce(ctx context.Context, sess *session.Session) (string, error) {
	return "", ErrCoordinatorInert
}
