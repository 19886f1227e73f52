package crm

import (
	"strings"

	"github.com/starford/crmai/internal/idgen"
	"github.com/starford/crmai/internal/models"
)

// AddChatMessage appends a message to the assistant history, stamping its id
// and timestamp.
func (s *Store) AddChatMessage(role models.ChatRole, content string) (models.ChatMessage, error) {
	now := s.now()
	m := models.ChatMessage{
		ID:        idgen.NewAt(idgen.KindChatMessage, now),
		Role:      role,
		Content:   content,
		Timestamp: now.UTC(),
	}
	if err := m.Validate(); err != nil {
		return models.ChatMessage{}, err
	}
	_, err := s.mutate(KindChat, ActionCreated, func() (string, bool, error) {
		s.state.ChatHistory = append(s.state.ChatHistory, m)
		return m.ID, true, nil
	})
	return m, err
}

// ChatHistory returns the last n messages, or all of them when n <= 0.
func (s *Store) ChatHistory(n int) []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.state.ChatHistory
	if n > 0 && len(h) > n {
		h = h[len(h)-n:]
	}
	return cloneAll(h, nil)
}

// ClearChat empties the assistant history.
func (s *Store) ClearChat() error {
	_, err := s.mutate(KindChat, ActionDeleted, func() (string, bool, error) {
		changed := len(s.state.ChatHistory) > 0
		s.state.ChatHistory = []models.ChatMessage{}
		return "", changed, nil
	})
	return err
}

// AppearancePatch lists the presentation fields to overwrite.
type AppearancePatch struct {
	Theme *models.Theme `json:"theme,omitempty"`
	Font  *models.Font  `json:"font,omitempty"`
}

// Appearance returns the presentation settings.
func (s *Store) Appearance() models.Appearance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Appearance
}

// UpdateAppearance merges patch into the presentation settings.
func (s *Store) UpdateAppearance(patch AppearancePatch) (models.Appearance, error) {
	var out models.Appearance
	_, err := s.mutate(KindAppearance, ActionUpdated, func() (string, bool, error) {
		next := s.state.Appearance
		setIf(&next.Theme, patch.Theme)
		setIf(&next.Font, patch.Font)
		if err := next.Validate(); err != nil {
			return "", false, err
		}
		s.state.Appearance = next
		out = next
		return "", true, nil
	})
	return out, err
}

// AISettingsPatch lists the AI settings fields to overwrite.
type AISettingsPatch struct {
	Provider  *models.Provider `json:"provider,omitempty"`
	OpenAIKey *string          `json:"openaiKey,omitempty"`
	GeminiKey *string          `json:"geminiKey,omitempty"`
	Model     *string          `json:"model,omitempty"`
}

// AISettings returns the AI provider settings, keys included.
func (s *Store) AISettings() models.AISettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AISettings
}

// UpdateAISettings merges patch into the AI settings and writes them to
// their own storage key.
func (s *Store) UpdateAISettings(patch AISettingsPatch) (models.AISettings, error) {
	var out models.AISettings
	_, err := s.mutate(KindAISettings, ActionUpdated, func() (string, bool, error) {
		next := s.state.AISettings
		setIf(&next.Provider, patch.Provider)
		setIf(&next.OpenAIKey, patch.OpenAIKey)
		setIf(&next.GeminiKey, patch.GeminiKey)
		setIf(&next.Model, patch.Model)
		next.OpenAIKey = strings.TrimSpace(next.OpenAIKey)
		next.GeminiKey = strings.TrimSpace(next.GeminiKey)
		if err := next.Validate(); err != nil {
			return "", false, err
		}
		s.state.AISettings = next
		out = next
		return "", true, nil
	})
	return out, err
}
