package models

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Appearance holds presentation preferences.
type Appearance struct {
	Theme Theme `json:"theme"`
	Font  Font  `json:"font"`
}

// Validate checks the appearance fields.
func (a *Appearance) Validate() error {
	return AsValidation(validation.ValidateStruct(a,
		validation.Field(&a.Theme, isEnum),
		validation.Field(&a.Font, isEnum),
	))
}

// AISettings selects the LLM provider and carries its credentials.
// It is persisted apart from the rest of the store.
type AISettings struct {
	Provider  Provider `json:"provider"`
	OpenAIKey string   `json:"openaiKey"`
	GeminiKey string   `json:"geminiKey"`
	Model     string   `json:"model"`
}

// Validate checks the settings fields.
func (s *AISettings) Validate() error {
	return AsValidation(validation.ValidateStruct(s,
		validation.Field(&s.Provider, isEnum),
	))
}

// ActiveKey returns the key of the selected provider.
func (s AISettings) ActiveKey() string {
	if s.Provider == ProviderOpenAI {
		return s.OpenAIKey
	}
	return s.GeminiKey
}

// Masked returns a copy safe to show in a UI: keys keep their last four characters.
func (s AISettings) Masked() AISettings {
	s.OpenAIKey = maskKey(s.OpenAIKey)
	s.GeminiKey = maskKey(s.GeminiKey)
	return s
}

func maskKey(k string) string {
	k = strings.TrimSpace(k)
	if k == "" {
		return ""
	}
	if len(k) <= 4 {
		return strings.Repeat("•", len(k))
	}
	return strings.Repeat("•", 8) + k[len(k)-4:]
}

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks the message fields.
func (m *ChatMessage) Validate() error {
	return AsValidation(validation.ValidateStruct(m,
		validation.Field(&m.Role, isEnum),
		validation.Field(&m.Content, validation.Required),
	))
}
