package interview

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// CompletionOptions bound a single model call. Zero values fall back to the
// gateway's configured defaults.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}

// ModelGateway is the black-box text-completion collaborator. A non-2xx
// upstream response surfaces as an opaque EXTERNAL error; no retries happen
// at this layer.
type ModelGateway interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage, opts CompletionOptions) (string, error)
	CompleteWithTools(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool, opts CompletionOptions) (*openai.ChatCompletionResponse, error)
}
