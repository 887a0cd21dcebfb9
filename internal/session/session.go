package session

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Role identifies a conversation participant.
type Role string

const (
	RoleUser        Role = "User"
	RoleAssistant   Role = "Assistant"
	RoleExecutor    Role = "FunctionExecutor"
	RoleCoordinator Role = "Coordinator"
)

// TerminationMarker is the literal trailing token that ends a conversation.
// Detection is right-trim then exact, case-sensitive suffix match.
const TerminationMarker = "TERMINATE"

// StopReason records how a session ended, for diagnostics. A budget stop is
// graceful but silent; a marker stop is an explicit termination.
type StopReason string

const (
	StopNone    StopReason = ""
	StopMarker  StopReason = "marker"
	StopBudget  StopReason = "budget"
	StopAborted StopReason = "aborted"
)

// Message is a single entry in the transcript. Ordinal position is the sole
// timing reference; correctness never depends on wall-clock time.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Ordinal int    `json:"ordinal"`
}

// Session owns the ordered, append-only message sequence for one conversation.
type Session struct {
	ID         string     `json:"id"`
	StartTime  time.Time  `json:"start_time"`
	Messages   []Message  `json:"messages"`
	Rounds     int        `json:"rounds"`
	Terminated bool       `json:"terminated"`
	StopReason StopReason `json:"stop_reason,omitempty"`
}

// New creates an empty session.
func New(id string) *Session {
	return &Session{
		ID:        id,
		StartTime: time.Now(),
	}
}

// Append adds a message to the end of the transcript and returns it.
func (s *Session) Append(role Role, content string) Message {
	msg := Message{
		Role:    role,
		Content: content,
		Ordinal: len(s.Messages),
	}
	s.Messages = append(s.Messages, msg)
	return msg
}

// Last returns the most recent message, if any.
func (s *Session) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// EndsWithMarker reports whether content, right-trimmed, ends with the
// termination marker.
func EndsWithMarker(content string) bool {
	return strings.HasSuffix(strings.TrimRightFunc(content, unicode.IsSpace), TerminationMarker)
}

// DisplayContent strips a trailing termination marker for presentation. The
// stored transcript is never altered.
func DisplayContent(content string) string {
	trimmed := strings.TrimRightFunc(content, unicode.IsSpace)
	if strings.HasSuffix(trimmed, TerminationMarker) {
		return strings.TrimRightFunc(strings.TrimSuffix(trimmed, TerminationMarker), unicode.IsSpace)
	}
	return content
}

// Transcript renders the session verbatim as "Role: content" lines.
func (s *Session) Transcript() string {
	var b strings.Builder
	for _, msg := range s.Messages {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return b.String()
}
