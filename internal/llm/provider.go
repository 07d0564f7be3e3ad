package llm

import "context"

// Provider is a text-completion oracle. One Complete call makes one upstream
// request; retrying is the caller's business. Failures are reported as
// *ErrRateLimit, *ErrProviderUnavailable or *ErrInvalidResponse.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model the provider was configured with. The model that
	// actually served a call is in Response.Model.
	ModelID() string
}

// Request is a single-turn prompt.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64 // 0 leaves the provider default
}

// StopReason says why the oracle stopped writing.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is the oracle's output. Text is whatever the model wrote and is
// not guaranteed to be JSON.
type Response struct {
	Text  string
	Model string
	Usage Usage
	Stop  StopReason
}

// Usage is the token count of one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is input plus output tokens.
func (u Usage) Total() int { return u.InputTokens + u.OutputTokens }
