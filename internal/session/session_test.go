package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendOrdinals(t *testing.T) {
	sess := New("test")

	first := sess.Append(RoleUser, "hello")
	second := sess.Append(RoleAssistant, "hi")

	assert.Equal(t, 0, first.Ordinal)
	assert.Equal(t, 1, second.Ordinal)

	last, ok := sess.Last()
	assert.True(t, ok)
	assert.Equal(t, second, last)
}

func TestLastEmpty(t *testing.T) {
	_, ok := New("test").Last()
	assert.False(t, ok)
}

func TestEndsWithMarker(t *testing.T) {
	assert.True(t, EndsWithMarker("done TERMINATE"))
	assert.True(t, EndsWithMarker("done TERMINATE \n\t"))
	assert.False(t, EndsWithMarker("done terminate"))
	assert.False(t, EndsWithMarker("TERMINATE then more"))
	assert.False(t, EndsWithMarker(""))
}

func TestDisplayContent(t *testing.T) {
	assert.Equal(t, "All done.", DisplayContent("All done. TERMINATE"))
	assert.Equal(t, "All done.", DisplayContent("All done. TERMINATE  \n"))
	assert.Equal(t, "no marker here", DisplayContent("no marker here"))
}

func TestTranscriptVerbatim(t *testing.T) {
	sess := New("test")
	sess.Append(RoleUser, "hello")
	sess.Append(RoleAssistant, "done TERMINATE")

	// The stored transcript keeps the marker; only presentation strips it.
	assert.Equal(t, "User: hello\nAssistant: done TERMINATE\n", sess.Transcript())
}
