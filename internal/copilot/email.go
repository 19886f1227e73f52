package copilot

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/importer"
	"github.com/starford/crmai/internal/models"
)

// DraftEmail writes the body of an email of the given kind ("relance",
// "remerciement", ...) for a contact.
func (c *Copilot) DraftEmail(ctx context.Context, contactID, kind string) (string, error) {
	ct, ok := c.store.GetContact(contactID)
	if !ok {
		return "", fmt.Errorf("copilot: contact %s: %w", contactID, apperr.ErrNotFound)
	}
	kind = orText(kind, "relance")

	var billed float64
	for _, inv := range c.store.ListInvoices() {
		if inv.ContactID == ct.ID && inv.Status == models.InvoiceStatusPaid {
			billed += inv.Amount
		}
	}
	subjects := make([]string, 0, len(ct.Emails))
	for _, e := range ct.Emails {
		subjects = append(subjects, e.Subject)
	}

	prompt := fmt.Sprintf(`Tu es un assistant commercial expert pour freelances. Génère un email professionnel de type %q pour le contact suivant.

Contact: %s (%s)
Email: %s
Statut pipeline: %s
Notes: %s
Historique email: %s
Total facturé: %v€

Génère un email court, personnalisé, professionnel et percutant. Ne mets pas de sujet, juste le corps de l'email.`,
		kind, ct.Name, ct.Company, ct.Email, ct.Stage, ct.Notes, orText(strings.Join(subjects, ", "), "Aucun"), billed)

	return c.ask(ctx, prompt, "Tu es un expert en communication commerciale pour freelances.")
}

// Icebreaker writes a short, personal opening message for a prospect.
func (c *Copilot) Icebreaker(ctx context.Context, p importer.Profile) (string, error) {
	prompt := fmt.Sprintf(`Tu es un expert en prospection B2B pour freelances. Rédige un message d'accroche LinkedIn court, personnalisé et authentique pour contacter ce profil.

Profil LinkedIn :
- Nom : %s
- Poste : %s
- Entreprise : %s
- Localisation : %s

Règles :
- Maximum 4 phrases
- Commence par mentionner quelque chose de spécifique (son poste ou son secteur)
- Ne pas paraître commercial ou robotique
- Ton naturel et humain
- En français
- Ne pas mentionner LinkedIn explicitement

Écris uniquement le message, sans introduction ni explication.`,
		p.Name, p.Headline, orText(p.Company, "non renseignée"), p.Location)

	return c.ask(ctx, prompt, "")
}
