// Package display provides terminal formatting for the stats command.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/models"
)

var (
	Muted   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	Bold    = lipgloss.NewStyle().Bold(true)
	Title   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7c3aed"))
	Success = lipgloss.NewStyle().Foreground(lipgloss.Color("#16a34a"))
	Warn    = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
	Danger  = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))

	HighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#dc2626"))
	MediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706"))
	LowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// Euros formats an amount the French way: "12 500 €".
func Euros(v float64) string {
	n := int64(v + 0.5)
	if v < 0 {
		n = int64(v - 0.5)
	}
	neg := n < 0
	if neg {
		n = -n
	}
	digits := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String() + " €"
	}
	return b.String() + " €"
}

// PriorityDot returns a colored dot for a priority level.
func PriorityDot(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return HighStyle.Render("●")
	case models.PriorityMedium:
		return MediumStyle.Render("○")
	default:
		return LowStyle.Render("○")
	}
}

func stageStyle(s models.Stage) lipgloss.Style {
	switch s {
	case models.StageWon:
		return Success
	case models.StageLost:
		return Danger
	case models.StageQuoteSent:
		return Warn
	default:
		return lipgloss.NewStyle()
	}
}

// Stats writes the dashboard summary: revenue, pipeline, recurring revenue
// and open tasks.
func Stats(w io.Writer, m crm.Metrics, tasks []models.Task) {
	fmt.Fprintln(w, Title.Render("Tableau de bord"))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "  %-22s %s\n", "CA encaissé", Success.Render(Euros(m.Invoices.Paid)))
	fmt.Fprintf(w, "  %-22s %s\n", "En retard", Danger.Render(Euros(m.Invoices.Overdue)))
	fmt.Fprintf(w, "  %-22s %s\n", "En attente", Warn.Render(Euros(m.Invoices.Pending)))
	fmt.Fprintf(w, "  %-22s %s\n", "Pipeline", Bold.Render(Euros(m.PipelineValue)))
	fmt.Fprintf(w, "  %-22s %d%%\n", "Taux de conversion", m.ConversionRate)
	fmt.Fprintln(w)

	fmt.Fprintln(w, Bold.Render("Pipeline"))
	for _, s := range m.Pipeline {
		label := stageStyle(s.Stage).Render(fmt.Sprintf("%-16s", s.Stage))
		fmt.Fprintf(w, "  %s %3d  %s\n", label, s.Count, Muted.Render(Euros(s.Revenue)))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, Bold.Render("Revenus récurrents"))
	fmt.Fprintf(w, "  MRR %s · ARR %s · %d abonnement(s) actif(s)\n",
		Euros(m.Recurring.MRR), Euros(m.Recurring.ARR), m.Recurring.Active)
	for _, b := range m.Upcoming {
		fmt.Fprintf(w, "  %s %s %s\n", Muted.Render(fmt.Sprintf("J-%d", b.DaysUntil)), b.Subscription.Name, Euros(b.Subscription.Amount))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s %s\n", Bold.Render("Tâches"), Muted.Render(fmt.Sprintf("(%d ouvertes, %d urgentes)", m.OpenTasks, m.HighPriority)))
	for _, t := range tasks {
		if t.Done {
			continue
		}
		due := ""
		if !t.DueDate.IsZero() {
			due = Muted.Render(" · " + t.DueDate.String())
		}
		fmt.Fprintf(w, "  %s %s%s\n", PriorityDot(t.Priority), t.Text, due)
	}
}
