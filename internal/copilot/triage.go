package copilot

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/crmai/internal/apperr"
)

// triageLimit is how many inbox messages one triage call looks at.
const triageLimit = 8

// InboxEmail is a received message handed in by the caller, e.g. from a
// mail client export.
type InboxEmail struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
	Snippet string `json:"snippet"`
}

// EmailTriage is the assistant's reading of one relevant email.
type EmailTriage struct {
	EmailIndex  int    `json:"emailIndex"`
	ContactName string `json:"contactName"`
	Tone        string `json:"tone"`
	Summary     string `json:"resume"`
	Action      string `json:"action"`
	DraftReply  string `json:"draftReply"`
}

const triageSystemPrompt = "Tu es un assistant CRM expert en communication commerciale. Réponds UNIQUEMENT en JSON valide."

// TriageEmails matches inbox messages to CRM contacts and suggests an
// action and a short reply for each relevant one. Newsletters and
// notifications are left out by the model.
func (c *Copilot) TriageEmails(ctx context.Context, emails []InboxEmail) ([]EmailTriage, error) {
	if len(emails) == 0 {
		return nil, apperr.Invalid("emails", "cannot be empty")
	}
	if len(emails) > triageLimit {
		emails = emails[:triageLimit]
	}

	lines := make([]string, len(emails))
	for i, e := range emails {
		lines[i] = fmt.Sprintf("[%d] De: %s | Sujet: %s | Aperçu: %s", i, e.From, e.Subject, truncateRunes(e.Snippet, 120))
	}
	contacts := c.store.ListContacts()
	names := make([]string, len(contacts))
	for i, ct := range contacts {
		names[i] = fmt.Sprintf("%s (%s)", ct.Name, ct.Company)
	}

	prompt := fmt.Sprintf(`Tu es un assistant CRM pour freelance. Analyse ces emails et classe-les par rapport aux contacts du CRM.

EMAILS:
%s

CONTACTS CRM:
%s

%s

Pour chaque email pertinent (ignore newsletters, spams, notifications auto), génère un JSON array:
[{
  "emailIndex": 0,
  "contactName": "nom du contact correspondant ou null",
  "tone": "positif | neutre | négatif | hésitant | urgent",
  "resume": "1 phrase résumant l'email",
  "action": "action recommandée pour le freelance",
  "draftReply": "brouillon de réponse courte et professionnelle (3-4 phrases max)"
}]

Réponds UNIQUEMENT avec le JSON valide, sans markdown.`,
		strings.Join(lines, "\n"), strings.Join(names, ", "), c.store.Context())

	var out []EmailTriage
	if err := c.askJSON(ctx, prompt, triageSystemPrompt, &out); err != nil {
		return nil, err
	}
	kept := out[:0]
	for _, t := range out {
		if t.EmailIndex >= 0 && t.EmailIndex < len(emails) {
			kept = append(kept, t)
		}
	}
	return kept, nil
}

// ApplyEmailTriage appends the triage summary and action to the notes of
// the contact it names. It reports false when no contact has that name.
func (c *Copilot) ApplyEmailTriage(t EmailTriage) (bool, error) {
	name := strings.TrimSpace(t.ContactName)
	if name == "" {
		return false, nil
	}
	for _, ct := range c.store.ListContacts() {
		if ct.Name != name {
			continue
		}
		line := fmt.Sprintf("[Email %s] %s → Action: %s", frenchDate(c.now()), t.Summary, t.Action)
		return c.store.AppendContactNote(ct.ID, line)
	}
	return false, nil
}
