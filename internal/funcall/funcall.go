// Package funcall implements the FUNCTION_CALL envelope: the structured
// backend-operation request embedded in a role's text message. The grammar is
// isolated here so the router and the executor share one matcher.
package funcall

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"SupportChat/internal/support"
)

// Prefix marks a function-call message. A message whose whole body matches
// the envelope is a call; a message merely containing the prefix is neither a
// call nor a plain prompt (the router falls through to its default rule).
const Prefix = "FUNCTION_CALL:"

// envelope: FUNCTION_CALL:<identifier>{<json-object>} with nothing else
// around it. (?s) lets the JSON object span lines.
var envelope = regexp.MustCompile(`(?s)^\s*FUNCTION_CALL:(\w+)\s*(\{.*\})\s*$`)

// Decode error taxonomy. All are converted to JSON payloads at the codec
// boundary; none reach the conversation loop.
var (
	ErrInvalidFormat     = errors.New("missing FUNCTION_CALL prefix or malformed parameters")
	ErrInvalidParameters = errors.New("invalid JSON parameters")
	ErrUnknownOperation  = errors.New("unknown operation")
)

// Request is a decoded function call.
type Request struct {
	Op     string
	Params map[string]any
}

// String extracts a named string parameter, falling back to def when the
// parameter is absent. Non-string JSON values are stringified.
func (r Request) String(key, def string) string {
	v, ok := r.Params[key]
	if !ok {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// IsCall reports whether text matches the full envelope shape.
func IsCall(text string) bool {
	return envelope.MatchString(text)
}

// ContainsPrefix reports whether text mentions the envelope prefix at all.
func ContainsPrefix(text string) bool {
	return strings.Contains(text, Prefix)
}

// Decode splits text into operation identifier and parameter mapping.
func Decode(text string) (Request, error) {
	m := envelope.FindStringSubmatch(text)
	if m == nil {
		return Request{}, ErrInvalidFormat
	}
	op, rawParams := m[1], m[2]

	var params map[string]any
	if err := json.Unmarshal([]byte(rawParams), &params); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	if !support.KnownOperation(op) {
		return Request{}, fmt.Errorf("%w: %s", ErrUnknownOperation, op)
	}
	return Request{Op: op, Params: params}, nil
}
