package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse-server/internal/config"
	"pulse-server/internal/domain/interview"
	"pulse-server/internal/utils/platformerrors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *ChatClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewChatClient(&config.Config{
		ModelBaseURL:     server.URL,
		ModelAPIKey:      "test-key",
		ModelID:          "gpt-4o-mini",
		ModelTemperature: 0.7,
		ModelMaxTokens:   300,
		ModelTimeout:     5 * time.Second,
	})
}

func completionReply(content string) string {
	body, _ := json.Marshal(openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
	})
	return string(body)
}

func TestChatClientComplete(t *testing.T) {
	var captured openai.ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionReply("What stands out most?")))
	})

	content, err := client.Complete(context.Background(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "hello"},
	}, interview.CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "What stands out most?", content)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.Equal(t, float32(0.7), captured.Temperature)
	assert.Equal(t, 300, captured.MaxTokens)
}

func TestChatClientCompleteOverridesOptions(t *testing.T) {
	var captured openai.ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionReply("ok")))
	})

	_, err := client.Complete(context.Background(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "hello"},
	}, interview.CompletionOptions{Temperature: 0.1, MaxTokens: 5})
	require.NoError(t, err)
	assert.Equal(t, float32(0.1), captured.Temperature)
	assert.Equal(t, 5, captured.MaxTokens)
}

func TestChatClientCompleteUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Complete(context.Background(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "hello"},
	}, interview.CompletionOptions{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
}

func TestChatClientCompleteNoChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	})

	_, err := client.Complete(context.Background(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "hello"},
	}, interview.CompletionOptions{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeExternal))
}

func TestChatClientCompleteWithTools(t *testing.T) {
	var captured openai.ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		response := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					ToolCalls: []openai.ToolCall{{
						Type:     openai.ToolTypeFunction,
						Function: openai.FunctionCall{Name: "record_turn_analysis", Arguments: `{"urgency_score": 1}`},
					}},
				},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(response))
	})

	tool := openai.Tool{
		Type:     openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{Name: "record_turn_analysis"},
	}
	resp, err := client.CompleteWithTools(context.Background(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "hello"},
	}, []openai.Tool{tool}, interview.CompletionOptions{})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	require.Len(t, resp.Choices[0].Message.ToolCalls, 1)
	assert.Equal(t, "record_turn_analysis", resp.Choices[0].Message.ToolCalls[0].Function.Name)

	require.Len(t, captured.Tools, 1)
	assert.Equal(t, "required", captured.ToolChoice)
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:8080", "http://localhost:8080/v1"},
		{"http://localhost:8080/", "http://localhost:8080/v1"},
		{"http://localhost:8080/v1", "http://localhost:8080/v1"},
		{"http://localhost:8080/v1/", "http://localhost:8080/v1"},
		{"  https://api.example.com  ", "https://api.example.com/v1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeBaseURL(tt.in), "input %q", tt.in)
	}
}
