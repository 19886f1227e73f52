package ai

import (
	"context"
	"net/http"
	"net/url"

	"github.com/starford/crmai/internal/models"
)

// Gemini is the generateContent binding. Gemini has no system role, so the
// system prompt is folded into the first turn and assistant turns are sent
// as "model".
type Gemini struct {
	Endpoint    string
	Model       string
	Temperature float64
	MaxTokens   int
	HTTP        *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Complete implements Provider. The model in the settings names an OpenAI
// model, so the binding uses its own configured model.
func (g *Gemini) Complete(ctx context.Context, key, _ string, messages []Message, system string) (string, error) {
	req := geminiRequest{Contents: foldSystem(messages, system)}
	req.GenerationConfig.MaxOutputTokens = g.MaxTokens
	req.GenerationConfig.Temperature = g.Temperature

	endpoint := g.Endpoint + "/" + url.PathEscape(g.Model) + ":generateContent?key=" + url.QueryEscape(key)

	var resp geminiResponse
	if err := postJSON(ctx, g.HTTP, models.ProviderGemini, endpoint, http.Header{}, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// foldSystem drops system messages and prefixes the first turn with the
// system prompt. The first turn is always sent as the user.
func foldSystem(messages []Message, system string) []geminiContent {
	var turns []Message
	for _, m := range messages {
		if m.Role != RoleSystem {
			turns = append(turns, m)
		}
	}

	first := system
	switch {
	case system != "" && len(turns) > 0:
		first = system + "\n\n---\n\n" + turns[0].Content
	case len(turns) > 0:
		first = turns[0].Content
	}

	out := []geminiContent{{Role: "user", Parts: []geminiPart{{Text: first}}}}
	for i := 1; i < len(turns); i++ {
		role := "user"
		if turns[i].Role == RoleAssistant {
			role = "model"
		}
		out = append(out, geminiContent{Role: role, Parts: []geminiPart{{Text: turns[i].Content}}})
	}
	return out
}
