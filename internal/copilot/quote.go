package copilot

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/starford/crmai/internal/ai"
	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/models"
)

// briefRunes bounds how much of a brief is sent to the model.
const briefRunes = 8000

// QuoteDraft is the assistant's costing of a client brief.
type QuoteDraft struct {
	Title      string      `json:"titre"`
	Summary    string      `json:"resume"`
	Complexity string      `json:"complexite"`
	Delay      string      `json:"delai_estime"`
	Lines      []QuoteLine `json:"lignes"`
	Notes      string      `json:"notes"`
	DepositPct float64     `json:"acompte_recommande"`
}

// QuoteLine is one costed step. Missing quantity means 1 and a missing unit
// price means days × day rate.
type QuoteLine struct {
	Category    string   `json:"categorie"`
	Description string   `json:"description"`
	Days        float64  `json:"jours"`
	Quantity    *float64 `json:"quantity"`
	UnitPrice   *float64 `json:"unitPrice"`
}

// Quote is a brief turned into a draft quote stored in the CRM.
type Quote struct {
	Draft   QuoteDraft     `json:"draft"`
	Invoice models.Invoice `json:"invoice"`
	Deposit float64        `json:"deposit"`
}

const quoteSystemPrompt = "Tu es un expert en chiffrage de projets digitaux pour freelances. Réponds UNIQUEMENT en JSON valide, sans aucun texte autour."

// QuoteFromBrief costs a client brief at the given day rate and saves the
// result as a draft quote whose amount is the sum of its lines. contactID
// may be empty.
func (c *Copilot) QuoteFromBrief(ctx context.Context, brief string, dayRate float64, contactID string) (Quote, error) {
	if strings.TrimSpace(brief) == "" {
		return Quote{}, apperr.Invalid("brief", "cannot be blank")
	}
	if dayRate <= 0 {
		return Quote{}, apperr.Invalid("dayRate", "must be greater than 0")
	}
	in := crm.InvoiceInput{
		ContactID:   contactID,
		ContactName: "À définir",
		Type:        models.InvoiceTypeQuote,
		Status:      models.InvoiceStatusDraft,
	}
	if contactID != "" {
		ct, ok := c.store.GetContact(contactID)
		if !ok {
			return Quote{}, fmt.Errorf("copilot: contact %s: %w", contactID, apperr.ErrNotFound)
		}
		in.ContactName, in.Company = ct.Name, ct.Company
	}

	prompt := fmt.Sprintf(`Tu es un expert en chiffrage pour freelances. Analyse ce cahier des charges / brief client et génère un devis détaillé.

BRIEF CLIENT:
"""
%s
"""

TARIF JOURNALIER DU FREELANCE: %v€/jour (soit %v€/heure)

Génère un devis structuré. Réponds UNIQUEMENT avec un JSON valide (sans markdown, sans backticks) :
{
  "titre": "Titre court du projet",
  "resume": "Résumé du besoin client en 2-3 phrases",
  "complexite": "Simple | Moyen | Complexe",
  "delai_estime": "ex: 3 semaines",
  "lignes": [
    {
      "categorie": "ex: Conception, Développement, Déploiement...",
      "description": "Description précise de la prestation",
      "jours": 2.5,
      "unitPrice": 1250,
      "quantity": 1
    }
  ],
  "notes": "Conditions importantes, exclusions, hypothèses",
  "acompte_recommande": 30
}

Règles:
- Sois réaliste sur les durées (pense à la communication client, les itérations)
- Découpe en phases logiques (Cadrage, Design, Dev, Tests, Livraison)
- unitPrice = jours × %v
- Inclure toujours une ligne "Gestion de projet & communication" (10-15%% du total)`,
		truncateRunes(brief, briefRunes), dayRate, math.Round(dayRate/8), dayRate)

	var draft QuoteDraft
	if err := c.askJSON(ctx, prompt, quoteSystemPrompt, &draft); err != nil {
		return Quote{}, err
	}

	for _, l := range draft.Lines {
		item := l.item(dayRate)
		if item.Description == "" {
			continue
		}
		in.Items = append(in.Items, item)
		in.Amount += item.Total()
	}
	if len(in.Items) == 0 {
		return Quote{}, fmt.Errorf("copilot: quote without lines: %w", ai.ErrMalformedOutput)
	}

	inv, err := c.store.AddInvoice(in)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Draft:   draft,
		Invoice: inv,
		Deposit: math.Round(inv.Amount * draft.DepositPct / 100),
	}, nil
}

func (l QuoteLine) item(dayRate float64) models.LineItem {
	desc := strings.TrimSpace(l.Description)
	if cat := strings.TrimSpace(l.Category); cat != "" && desc != "" {
		desc = "[" + cat + "] " + desc
	}
	item := models.LineItem{Description: desc, Quantity: 1, UnitPrice: l.Days * dayRate}
	if l.Quantity != nil {
		item.Quantity = *l.Quantity
	}
	if l.UnitPrice != nil {
		item.UnitPrice = *l.UnitPrice
	}
	return item
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
