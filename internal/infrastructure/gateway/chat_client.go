package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"pulse-server/internal/config"
	"pulse-server/internal/domain/interview"
	"pulse-server/internal/infrastructure/metrics"
	"pulse-server/internal/utils/platformerrors"
)

// ChatClient implements interview.ModelGateway against any OpenAI-compatible
// chat completion endpoint.
type ChatClient struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	model   string

	defaultTemperature float32
	defaultMaxTokens   int
}

var _ interview.ModelGateway = (*ChatClient)(nil)

func NewChatClient(cfg *config.Config) *ChatClient {
	client := resty.New().
		SetTimeout(cfg.ModelTimeout)

	return &ChatClient{
		client:             client,
		baseURL:            normalizeBaseURL(cfg.ModelBaseURL),
		apiKey:             cfg.ModelAPIKey,
		model:              cfg.ModelID,
		defaultTemperature: cfg.ModelTemperature,
		defaultMaxTokens:   cfg.ModelMaxTokens,
	}
}

// Complete implements interview.ModelGateway.
func (c *ChatClient) Complete(ctx context.Context, messages []openai.ChatCompletionMessage, opts interview.CompletionOptions) (string, error) {
	request := c.buildRequest(messages, opts)

	resp, err := c.do(ctx, "complete", request)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"model returned no choices", nil, "")
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteWithTools implements interview.ModelGateway.
func (c *ChatClient) CompleteWithTools(ctx context.Context, messages []openai.ChatCompletionMessage, tools []openai.Tool, opts interview.CompletionOptions) (*openai.ChatCompletionResponse, error) {
	request := c.buildRequest(messages, opts)
	request.Tools = tools
	request.ToolChoice = "required"

	return c.do(ctx, "complete_with_tools", request)
}

func (c *ChatClient) buildRequest(messages []openai.ChatCompletionMessage, opts interview.CompletionOptions) openai.ChatCompletionRequest {
	temperature := c.defaultTemperature
	if opts.Temperature != 0 {
		temperature = opts.Temperature
	}
	maxTokens := c.defaultMaxTokens
	if opts.MaxTokens != 0 {
		maxTokens = opts.MaxTokens
	}
	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

func (c *ChatClient) do(ctx context.Context, operation string, request openai.ChatCompletionRequest) (*openai.ChatCompletionResponse, error) {
	start := time.Now()
	var respBody openai.ChatCompletionResponse

	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request).
		SetResult(&respBody)
	if c.apiKey != "" {
		req.SetHeader("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := req.Post(c.endpoint("/chat/completions"))
	metrics.ModelDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ModelErrorsTotal.WithLabelValues(operation).Inc()
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			"chat completion request failed", err, "")
	}
	if resp.IsError() {
		metrics.ModelErrorsTotal.WithLabelValues(operation).Inc()
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal,
			fmt.Sprintf("chat completion returned status %d", resp.StatusCode()), nil, "")
	}
	return &respBody, nil
}

func (c *ChatClient) endpoint(path string) string {
	return c.baseURL + path
}

func normalizeBaseURL(baseURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if !strings.HasSuffix(trimmed, "/v1") {
		trimmed += "/v1"
	}
	return trimmed
}
