package copilot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/models"
)

// Plan is the assistant's breakdown of a project.
type Plan struct {
	Tasks  []PlannedTask `json:"tasks"`
	Advice string        `json:"advice"`
}

// PlannedTask is one suggested step. Priority is free text ("haute",
// "normale", "faible") normalized on apply.
type PlannedTask struct {
	Text        string `json:"text"`
	Priority    string `json:"priority"`
	DaysFromNow int    `json:"daysFromNow"`
}

const planSystemPrompt = "Tu es un chef de projet expert pour freelances. Réponds UNIQUEMENT en JSON valide."

// PlanProject asks for 5 to 8 concrete tasks and a piece of advice, then
// appends the tasks to the project and caches the advice on it.
func (c *Copilot) PlanProject(ctx context.Context, projectID string) (Plan, error) {
	p, ok := c.store.GetProject(projectID)
	if !ok {
		return Plan{}, fmt.Errorf("copilot: project %s: %w", projectID, apperr.ErrNotFound)
	}
	client := "Indéfini"
	if ct, ok := c.store.GetContact(p.ContactID); ok {
		client = ct.Name
	}
	existing := make([]string, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		existing = append(existing, t.Text)
	}

	prompt := fmt.Sprintf(`Tu es un chef de projet expert. Pour ce projet freelance, génère une liste de tâches détaillée et chronologique.

Projet: %q
Description: %q
Client: %q
Date de livraison: %q
Tâches existantes: %s

Génère 5 à 8 tâches concrètes et actionnables. Réponds UNIQUEMENT avec un JSON valide (sans markdown):
{
  "tasks": [
    { "text": "Description claire de la tâche", "priority": "haute|normale|faible", "daysFromNow": 3 }
  ],
  "advice": "Un conseil détaillé et stratégique pour ce projet, formaté en **Markdown riche**."
}`, p.Name, orText(p.Description, "Aucune description"), client, orText(p.DueDate.String(), "Non définie"), orText(strings.Join(existing, ", "), "Aucune"))

	var plan Plan
	if err := c.askJSON(ctx, prompt, planSystemPrompt, &plan); err != nil {
		return Plan{}, err
	}

	if _, err := c.store.AppendProjectTasks(projectID, plan.subtasks(c.now()), plan.Advice); err != nil {
		return Plan{}, err
	}
	return plan, nil
}

func (p Plan) subtasks(now time.Time) []models.ProjectTask {
	out := make([]models.ProjectTask, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		pt := models.ProjectTask{Text: t.Text, Priority: models.ParsePriority(t.Priority)}
		if t.DaysFromNow > 0 {
			pt.DueDate = models.DateOf(now.AddDate(0, 0, t.DaysFromNow))
		}
		out = append(out, pt)
	}
	return out
}

func orText(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
