package ai

import (
	"context"
	"net/http"

	"github.com/starford/crmai/internal/models"
)

// OpenAI is the chat-completions binding. The system prompt travels as a
// leading system message.
type OpenAI struct {
	Endpoint    string
	Temperature float64
	MaxTokens   int
	HTTP        *http.Client
}

type openAIRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements Provider.
func (o *OpenAI) Complete(ctx context.Context, key, model string, messages []Message, system string) (string, error) {
	full := messages
	if system != "" {
		full = make([]Message, 0, len(messages)+1)
		full = append(full, Message{Role: RoleSystem, Content: system})
		for _, m := range messages {
			if m.Role != RoleSystem {
				full = append(full, m)
			}
		}
	}

	req := openAIRequest{
		Model:       orString(model, DefaultOpenAIModel),
		Messages:    full,
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
	}
	header := http.Header{"Authorization": {"Bearer " + key}}

	var resp openAIResponse
	if err := postJSON(ctx, o.HTTP, models.ProviderOpenAI, o.Endpoint, header, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
