package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_SendsSingleUserMessage(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "  hello  "})
	g := NewGateway(mock, time.Second)

	out, err := g.Generate(context.Background(), "prompt text", 512)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	require.Equal(t, 1, mock.CallCount())
	call := mock.Calls[0]
	require.Len(t, call.Messages, 1)
	assert.Equal(t, RoleUser, call.Messages[0].Role)
	assert.Equal(t, "prompt text", call.Messages[0].Content)
	assert.Equal(t, 512, call.MaxTokens)
}

func TestGateway_Timeout(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "late", Delay: time.Second})
	g := NewGateway(mock, 10*time.Millisecond)

	_, err := g.Generate(context.Background(), "p", 0)
	var timeout *ErrTimeout
	require.True(t, errors.As(err, &timeout), "expected ErrTimeout, got %T (%v)", err, err)
	assert.Equal(t, 10*time.Millisecond, timeout.After)
}

func TestGateway_ProviderFailureIsUnavailable(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: errors.New("connection refused")})
	g := NewGateway(mock, time.Second)

	_, err := g.Generate(context.Background(), "p", 0)
	var unavail *ErrProviderUnavailable
	require.True(t, errors.As(err, &unavail), "expected ErrProviderUnavailable, got %T", err)
}

func TestGateway_TruncationPassesThrough(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrMaxTokensExceeded{Text: "[{"}})
	g := NewGateway(mock, time.Second)

	_, err := g.Generate(context.Background(), "p", 0)
	var maxTok *ErrMaxTokensExceeded
	require.True(t, errors.As(err, &maxTok), "expected ErrMaxTokensExceeded, got %T", err)
	var unavail *ErrProviderUnavailable
	assert.False(t, errors.As(err, &unavail))
}

func TestGateway_RateLimitIsUnavailable(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})
	g := NewGateway(mock, time.Second)

	_, err := g.Generate(context.Background(), "p", 0)
	var unavail *ErrProviderUnavailable
	require.True(t, errors.As(err, &unavail))
	var rl *ErrRateLimit
	assert.True(t, errors.As(err, &rl), "rate limit cause should stay inspectable")
}

func TestGateway_CallerCancellation(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "x", Delay: time.Second})
	g := NewGateway(mock, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Generate(ctx, "p", 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGateway_DefaultTimeout(t *testing.T) {
	g := NewGateway(NewMockProvider(), 0)
	assert.Equal(t, DefaultTimeout, g.Timeout())
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  answer \n", "answer"},
		{"fenced json", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"fenced bare", "```\n<<<JSON []JSON;\n```", "<<<JSON []JSON;"},
		{"fence on one line", "```[1,2]```", "[1,2]"},
		{"quoted string", `"line one\nline two"`, "line one\nline two"},
		{"broken quote kept", `"unterminated \"`, `"unterminated \"`},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}
