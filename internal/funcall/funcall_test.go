package funcall

import (
	"context"
	"errors"
	"testing"

	"SupportChat/internal/support"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCall(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"simple", `FUNCTION_CALL:get_user_status{"user_id": "1"}`, true},
		{"surrounding whitespace", "  \nFUNCTION_CALL:get_user_status{\"user_id\": \"1\"}  \n", true},
		{"multiline json", "FUNCTION_CALL:create_support_ticket{\"user_id\": \"1\",\n\"listing_id\": \"2\",\n\"reason\": \"r\"}", true},
		{"trailing content", `FUNCTION_CALL:get_user_status{"user_id": "1"} thanks`, false},
		{"leading content", `please run FUNCTION_CALL:get_user_status{"user_id": "1"}`, false},
		{"no braces", "FUNCTION_CALL:get_user_status", false},
		{"unclosed brace", `FUNCTION_CALL:get_user_status{"user_id": "1"`, false},
		{"plain text", "Please provide your listing ID.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCall(tt.text))
		})
	}
}

func TestDecode(t *testing.T) {
	req, err := Decode(`FUNCTION_CALL:get_user_status{"user_id": "1"}`)
	require.NoError(t, err)
	assert.Equal(t, support.OpUserStatus, req.Op)
	assert.Equal(t, "1", req.String("user_id", "default"))
	assert.Equal(t, "default", req.String("missing", "default"))
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("not a function call")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Decode(`FUNCTION_CALL:get_user_status{"user_id": }`)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = Decode(`FUNCTION_CALL:frobnicate{"x": "1"}`)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func newTestCodec() *Codec {
	svc := support.NewService(support.NewRetryLedger(), support.NewMemStore(), nil)
	return NewCodec(svc, nil)
}

func TestCodecExecuteSuccess(t *testing.T) {
	codec := newTestCodec()

	out := codec.Execute(context.Background(), `FUNCTION_CALL:get_user_status{"user_id": "1"}`)
	res, err := support.ParseResult(out)
	require.NoError(t, err)
	assert.Equal(t, "active", res.Status)
	assert.Equal(t, "1", res.UserID)
}

func TestCodecExecuteDefaults(t *testing.T) {
	codec := newTestCodec()

	// Missing user_id falls back to "default", which is neither 1, 2, nor 5.
	out := codec.Execute(context.Background(), "FUNCTION_CALL:get_user_status{}")
	res, err := support.ParseResult(out)
	require.NoError(t, err)
	assert.Equal(t, "on_hold", res.Status)
	assert.Equal(t, "default", res.UserID)
}

func TestCodecExecuteRejections(t *testing.T) {
	codec := newTestCodec()
	ctx := context.Background()

	for _, text := range []string{
		"just some chatter",
		`FUNCTION_CALL:get_user_status{"user_id": }`,
		`FUNCTION_CALL:frobnicate{"x": "1"}`,
	} {
		out := codec.Execute(ctx, text)
		res, err := support.ParseResult(out)
		require.NoError(t, err, "rejection must still be a JSON payload")
		assert.Equal(t, "error", res.Status)
		assert.NotEmpty(t, res.Message)
	}
}

type failingBackend struct {
	support.Backend
}

func (failingBackend) UserStatus(ctx context.Context, userID string) (support.Result, error) {
	return support.Result{}, errors.New("backend unreachable")
}

func TestCodecExecuteCriticalError(t *testing.T) {
	codec := NewCodec(failingBackend{}, nil)

	out := codec.Execute(context.Background(), `FUNCTION_CALL:get_user_status{"user_id": "1"}`)
	res, err := support.ParseResult(out)
	require.NoError(t, err)
	assert.Equal(t, "critical_error", res.Status)
	assert.Contains(t, res.TechnicalDetails, "backend unreachable")
}

type panickyBackend struct {
	support.Backend
}

func (panickyBackend) UserStatus(ctx context.Context, userID string) (support.Result, error) {
	panic("boom")
}

func TestCodecExecuteRecoversPanic(t *testing.T) {
	codec := NewCodec(panickyBackend{}, nil)

	out := codec.Execute(context.Background(), `FUNCTION_CALL:get_user_status{"user_id": "1"}`)
	res, err := support.ParseResult(out)
	require.NoError(t, err)
	assert.Equal(t, "critical_error", res.Status)
}
