package copilot

import (
	"context"
	"strings"

	"github.com/starford/crmai/internal/ai"
	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/models"
)

const chatSystemPrompt = `Tu es le copilote IA d'un CRM pour freelance. Tu as accès à toutes les données du CRM de l'utilisateur.

Réponds toujours en français, de manière experte et actionnable.
Formate tes réponses en **Markdown riche** : titres en gras, listes à puces, emojis, et mets en **gras** les mots clés et chiffres importants.

DONNÉES CRM ACTUELLES:
`

// Chat records the user's message, asks the assistant with the recent
// history and the CRM digest, and records the reply. A failed call keeps the
// user's message but stores no reply.
func (c *Copilot) Chat(ctx context.Context, input string) (models.ChatMessage, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return models.ChatMessage{}, apperr.Invalid("content", "cannot be blank")
	}

	history := c.store.ChatHistory(HistoryWindow)
	if _, err := c.store.AddChatMessage(models.RoleUser, input); err != nil {
		return models.ChatMessage{}, err
	}

	messages := make([]ai.Message, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, ai.Message{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, ai.Message{Role: ai.RoleUser, Content: input})

	reply, err := c.ai.Call(ctx, c.store.AISettings(), messages, chatSystemPrompt+c.store.Context())
	if err != nil {
		return models.ChatMessage{}, err
	}
	return c.store.AddChatMessage(models.RoleAssistant, reply)
}
