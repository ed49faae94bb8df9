package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// DefaultTimeout bounds a single gateway call.
const DefaultTimeout = 120 * time.Second

// Gateway is the single entry point the quiz and chat flows use to reach
// a model. It sends one prompt, waits at most Timeout for a non-streaming
// answer and returns normalized text. It never retries on its own; wrap
// the provider with WithRetry for that.
type Gateway struct {
	provider Provider
	timeout  time.Duration
}

// NewGateway creates a Gateway over p. A non-positive timeout selects
// DefaultTimeout.
func NewGateway(p Provider, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Gateway{provider: p, timeout: timeout}
}

// Generate sends prompt as a single user message and returns the model text.
// Failures are reported as *ErrTimeout when the time bound elapsed. A
// truncated answer (*ErrMaxTokensExceeded) or an unusable payload
// (*ErrInvalidResponse) is returned as is; any other transport or provider
// failure becomes *ErrProviderUnavailable.
func (g *Gateway) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	tctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.provider.Generate(tctx, Request{
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", g.classify(ctx, tctx, err)
	}

	return NormalizeText(resp.Text), nil
}

// ModelID returns the model identifier of the underlying provider.
func (g *Gateway) ModelID() string {
	return g.provider.ModelID()
}

// Timeout returns the configured time bound.
func (g *Gateway) Timeout() time.Duration {
	return g.timeout
}

func (g *Gateway) classify(parent, tctx context.Context, err error) error {
	// Caller cancellation is not a model failure.
	if parent.Err() != nil {
		return parent.Err()
	}

	var timeout *ErrTimeout
	if errors.As(err, &timeout) {
		return err
	}
	if errors.Is(tctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &ErrTimeout{After: g.timeout, Err: err}
	}

	var (
		unavail  *ErrProviderUnavailable
		maxTok   *ErrMaxTokensExceeded
		badReply *ErrInvalidResponse
	)
	if errors.As(err, &unavail) || errors.As(err, &maxTok) || errors.As(err, &badReply) {
		return err
	}
	return &ErrProviderUnavailable{Err: err}
}

// NormalizeText trims model output, strips a surrounding markdown code
// fence and decodes output that arrived as a quoted JSON string.
func NormalizeText(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop an info string such as "json" on the opening fence line.
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{<\"") {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}

	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		var unquoted string
		if err := json.Unmarshal([]byte(s), &unquoted); err == nil {
			s = strings.TrimSpace(unquoted)
		}
	}

	return s
}
