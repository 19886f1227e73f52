// Package summary renders the CRM state as the text digest given to every
// AI prompt.
package summary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/crmai/internal/models"
	"github.com/starford/crmai/internal/persist"
)

// NoteRunes is how much of a contact's notes the digest keeps.
const NoteRunes = 80

// Limits caps how many entries of each list are written.
type Limits struct {
	Contacts int
	Invoices int
	Tasks    int
}

// DefaultLimits keeps a large CRM within a few thousand tokens.
var DefaultLimits = Limits{Contacts: 150, Invoices: 150, Tasks: 100}

// Build returns the digest of s with the default limits.
func Build(s persist.State) string {
	return BuildWithLimits(s, DefaultLimits)
}

// BuildWithLimits renders the digest. It is pure: the same state always
// yields the same bytes. Entities keep their collection order; the totals
// cover every invoice regardless of the limits.
func BuildWithLimits(s persist.State, lim Limits) string {
	var b strings.Builder

	b.WriteString("## Données CRM du Freelance\n\n")

	fmt.Fprintf(&b, "### Contacts & Pipeline (%d contacts)\n", len(s.Contacts))
	for i, c := range s.Contacts {
		if i == lim.Contacts {
			writeMore(&b, len(s.Contacts)-i)
			break
		}
		fmt.Fprintf(&b, "- **%s** (%s) | Stage: %s | CA potentiel: %s€ | Dernière note: \"%s\"\n",
			c.Name, c.Company, c.Stage, amount(c.Revenue), truncate(c.Notes, NoteRunes))
	}

	b.WriteString("\n### Factures & Devis\n")
	for i, inv := range s.Invoices {
		if i == lim.Invoices {
			writeMore(&b, len(s.Invoices)-i)
			break
		}
		fmt.Fprintf(&b, "- %s: %s %s | %s€ | Statut: %s | Échéance: %s\n",
			inv.ID, inv.Type, inv.ContactName, amount(inv.Amount), inv.Status, date(inv.DueDate))
	}

	b.WriteString("\n### Tâches en cours\n")
	written, open := 0, 0
	for _, t := range s.Tasks {
		if t.Done {
			continue
		}
		open++
		if written == lim.Tasks {
			continue
		}
		fmt.Fprintf(&b, "- [PRIORITÉ: %s] %s (échéance: %s)\n", t.Priority, t.Text, date(t.DueDate))
		written++
	}
	if open > written {
		writeMore(&b, open-written)
	}

	totals := models.Totals(s.Invoices)
	b.WriteString("\n### Résumé financier\n")
	fmt.Fprintf(&b, "- CA total facturé: %s€\n", amount(totals.Paid))
	fmt.Fprintf(&b, "- Factures en retard: %s€\n", amount(totals.Overdue))
	fmt.Fprintf(&b, "- Devis en attente: %s€", amount(totals.Pending))

	return b.String()
}

func writeMore(b *strings.Builder, n int) {
	fmt.Fprintf(b, "- … et %d autres\n", n)
}

// truncate keeps the first n runes of s on a single line.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func date(d models.Date) string {
	if d.IsZero() {
		return "non définie"
	}
	return d.String()
}
