package copilot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/models"
)

// NoteAnalysis is the structured reading of a raw meeting note.
type NoteAnalysis struct {
	ContactID    string   `json:"contactId"`
	ContactName  string   `json:"contactName"`
	Summary      string   `json:"summary"`
	NewStage     string   `json:"newStage"`
	StageChanged bool     `json:"stageChanged"`
	Todos        []string `json:"todos"`
	NoteToAdd    string   `json:"noteToAdd"`
}

// Applied reports what ApplyNoteAnalysis changed.
type Applied struct {
	ContactUpdated bool     `json:"contactUpdated"`
	StageMoved     bool     `json:"stageMoved"`
	TaskIDs        []string `json:"taskIds"`
}

const noteSystemPrompt = "Tu es un assistant CRM expert. Réponds UNIQUEMENT en JSON valide, sans aucun texte autour, sans backticks."

// AnalyzeNote asks the assistant to identify the contact a note is about and
// extract a summary, a stage change and follow-up todos. contactID, when
// given, pins the contact.
func (c *Copilot) AnalyzeNote(ctx context.Context, note, contactID string) (NoteAnalysis, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return NoteAnalysis{}, apperr.Invalid("note", "cannot be blank")
	}

	var list strings.Builder
	selected := ""
	for _, ct := range c.store.ListContacts() {
		fmt.Fprintf(&list, "%s: %s (%s) | Stage actuel: %s\n", ct.ID, ct.Name, ct.Company, ct.Stage)
		if ct.ID == contactID {
			selected = ct.Name
		}
	}
	hint := "Identifie le contact mentionné si possible."
	if selected != "" {
		hint = "Contact sélectionné: " + selected
	}

	prompt := fmt.Sprintf(`Tu es l'assistant IA d'un CRM pour freelance. Analyse cette note brute et extrais des informations structurées.

NOTE BRUTE:
%q

CONTACTS DISPONIBLES:
%s
%s

Réponds UNIQUEMENT avec un JSON valide (sans markdown, sans backticks) dans ce format exact:
{
  "contactId": "id du contact ou null si non trouvé",
  "contactName": "nom du contact",
  "summary": "résumé concis et professionnel de la note en 2-3 phrases",
  "newStage": "nouveau stage pipeline si changement recommandé, sinon null. Doit être un de: %s",
  "stageChanged": true ou false,
  "todos": ["tâche à faire 1", "tâche à faire 2"],
  "noteToAdd": "note nettoyée à ajouter au contact"
}`, note, list.String(), hint, stageList())

	var a NoteAnalysis
	if err := c.askJSON(ctx, prompt, noteSystemPrompt, &a); err != nil {
		return NoteAnalysis{}, err
	}
	if a.ContactID == "" && contactID != "" {
		a.ContactID = contactID
	}
	return a, nil
}

// ApplyNoteAnalysis writes an analysis into the store: the cleaned note is
// appended to the contact's notes with today's date, todos are added to the
// contact and as tasks, and the stage moves when the assistant asked for a
// valid one. A contact the store does not know only gets tasks.
func (c *Copilot) ApplyNoteAnalysis(a NoteAnalysis) (Applied, error) {
	var res Applied
	now := c.now()
	todos := nonBlank(a.Todos)

	if a.ContactID != "" {
		if _, ok := c.store.GetContact(a.ContactID); ok {
			if a.NoteToAdd != "" {
				line := fmt.Sprintf("[%s] %s", frenchDate(now), strings.TrimSpace(a.NoteToAdd))
				if _, err := c.store.AppendContactNote(a.ContactID, line); err != nil {
					return res, err
				}
			}
			if len(todos) > 0 {
				if _, err := c.store.AddContactTodos(a.ContactID, todos...); err != nil {
					return res, err
				}
			}
			res.ContactUpdated = true

			stage := models.Stage(a.NewStage)
			if a.StageChanged && stage.Valid() {
				moved, err := c.store.MoveContact(a.ContactID, stage)
				if err != nil {
					return res, err
				}
				res.StageMoved = moved
			}
		}
	}

	for _, todo := range todos {
		t, err := c.store.AddTask(crm.TaskInput{Text: todo, ContactID: a.ContactID, Priority: models.PriorityMedium})
		if err != nil {
			return res, err
		}
		res.TaskIDs = append(res.TaskIDs, t.ID)
	}
	return res, nil
}

func frenchDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func stageList() string {
	names := make([]string, len(models.Stages))
	for i, s := range models.Stages {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// nonBlank trims items and drops the empty ones.
func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out
}
