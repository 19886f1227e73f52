package copilot

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/crmai/internal/crm"
)

const insightsSystemPrompt = "Tu es un conseiller commercial expert pour les freelances. Sois direct, concret et donne des conseils actionnables basés sur les données. Utilise des emojis pour structurer ta réponse. Réponds en français."

// Insights asks for 3 or 4 recommendations based on the sales analytics of
// the given year.
func (c *Copilot) Insights(ctx context.Context, year int) (string, error) {
	prompt := "Analyse ces données commerciales d'un freelance et donne 3-4 recommandations concrètes et actionnables pour améliorer ses performances.\n\n" +
		insightsSummary(c.store.Insights(year))
	return c.ask(ctx, prompt, insightsSystemPrompt)
}

func insightsSummary(in crm.Insights) string {
	best, rate := "indéterminé", 0
	if b, ok := in.BestWeekday(); ok {
		best, rate = b.Label, b.Rate
	}
	brackets := make([]string, 0, len(in.ByPrice))
	for _, b := range in.ByPrice {
		brackets = append(brackets, fmt.Sprintf("%s: %d%% (%d devis)", b.Label, b.Rate, b.Sent))
	}
	months := make([]string, 0, len(in.RevenueByMonth))
	for _, m := range in.RevenueByMonth {
		months = append(months, fmt.Sprintf("%s: %v€", m.Label, m.Revenue))
	}

	var b strings.Builder
	b.WriteString("Données CRM:\n")
	fmt.Fprintf(&b, "- CA moyen par facture: %v€\n", in.AverageDeal)
	fmt.Fprintf(&b, "- Taux de conversion global: %d%%\n", in.ConversionRate)
	fmt.Fprintf(&b, "- Délai moyen de closing: %d jours\n", in.DaysToClose)
	fmt.Fprintf(&b, "- Meilleur jour pour envoyer un devis: %s (%d%% de succès)\n", best, rate)
	fmt.Fprintf(&b, "- Tranches de prix: %s\n", strings.Join(brackets, ", "))
	fmt.Fprintf(&b, "- CA mensuel: %s\n", strings.Join(months, ", "))
	fmt.Fprintf(&b, "- Contacts: %d dont %d gagnés et %d perdus\n", in.Contacts, in.Won, in.Lost)
	return b.String()
}
