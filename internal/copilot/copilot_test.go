package copilot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/starford/crmai/internal/ai"
	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/importer"
	"github.com/starford/crmai/internal/models"
	"github.com/starford/crmai/internal/persist"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type call struct {
	messages []ai.Message
	system   string
}

// fakeCaller records requests and answers with reply or err.
type fakeCaller struct {
	reply string
	err   error
	calls []call
}

func (f *fakeCaller) Call(_ context.Context, _ models.AISettings, messages []ai.Message, system string) (string, error) {
	f.calls = append(f.calls, call{messages: messages, system: system})
	return f.reply, f.err
}

func testCopilot(t *testing.T, f *fakeCaller) (*Copilot, *crm.Store) {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	s := crm.FromState(persist.Defaults(true), crm.WithClock(clock))
	return New(s, f, WithClock(clock)), s
}

func TestChatRecordsBothTurns(t *testing.T) {
	f := &fakeCaller{reply: "Bonjour !"}
	c, s := testCopilot(t, f)

	msg, err := c.Chat(context.Background(), "  Quel est mon CA ?  ")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if msg.Role != models.RoleAssistant || msg.Content != "Bonjour !" {
		t.Errorf("reply = %+v", msg)
	}
	hist := s.ChatHistory(0)
	if len(hist) != 2 || hist[0].Content != "Quel est mon CA ?" {
		t.Fatalf("history = %+v", hist)
	}
	if !strings.Contains(f.calls[0].system, "## Données CRM du Freelance") {
		t.Error("system prompt lacks the CRM digest")
	}
}

func TestChatSendsRecentHistory(t *testing.T) {
	f := &fakeCaller{reply: "ok"}
	c, _ := testCopilot(t, f)
	for i := 0; i < 8; i++ {
		if _, err := c.Chat(context.Background(), "question"); err != nil {
			t.Fatalf("Chat: %v", err)
		}
	}
	last := f.calls[len(f.calls)-1].messages
	if len(last) != HistoryWindow+1 {
		t.Fatalf("sent %d messages, want %d", len(last), HistoryWindow+1)
	}
	if last[len(last)-1].Role != ai.RoleUser {
		t.Errorf("last role = %s", last[len(last)-1].Role)
	}
}

func TestChatFailureKeepsOnlyQuestion(t *testing.T) {
	f := &fakeCaller{err: ai.ErrRateLimit}
	c, s := testCopilot(t, f)

	if _, err := c.Chat(context.Background(), "hello"); !errors.Is(err, ai.ErrRateLimit) {
		t.Fatalf("err = %v", err)
	}
	hist := s.ChatHistory(0)
	if len(hist) != 1 || hist[0].Role != models.RoleUser {
		t.Errorf("history = %+v", hist)
	}
}

func TestChatRejectsBlank(t *testing.T) {
	f := &fakeCaller{}
	c, _ := testCopilot(t, f)
	if _, err := c.Chat(context.Background(), "   "); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
	if len(f.calls) != 0 {
		t.Error("provider called for blank input")
	}
}

func TestAnalyzeAndApplyNote(t *testing.T) {
	f := &fakeCaller{reply: "Voici:\n```json\n" + `{
  "contactId": "2",
  "contactName": "Thomas Dupont",
  "summary": "Devis accepté.",
  "newStage": "Gagné",
  "stageChanged": true,
  "todos": ["Envoyer le contrat", "Planifier le kick-off"],
  "noteToAdd": "Devis validé au téléphone"
}` + "\n```"}
	c, s := testCopilot(t, f)
	tasksBefore := len(s.ListTasks(false))

	a, err := c.AnalyzeNote(context.Background(), "Thomas a validé le devis", "")
	if err != nil {
		t.Fatalf("AnalyzeNote: %v", err)
	}
	if !strings.Contains(f.calls[0].messages[0].Content, "2: Thomas Dupont (StartupFlow) | Stage actuel: Devis envoyé") {
		t.Error("prompt lacks the contact list")
	}

	res, err := c.ApplyNoteAnalysis(a)
	if err != nil {
		t.Fatalf("ApplyNoteAnalysis: %v", err)
	}
	if !res.ContactUpdated || !res.StageMoved || len(res.TaskIDs) != 2 {
		t.Errorf("result = %+v", res)
	}

	ct, _ := s.GetContact("2")
	if ct.Stage != models.StageWon {
		t.Errorf("stage = %s", ct.Stage)
	}
	if !strings.HasSuffix(ct.Notes, "\n\n[10/03/2024] Devis validé au téléphone") {
		t.Errorf("notes = %q", ct.Notes)
	}
	if len(ct.Todos) < 2 || ct.Todos[len(ct.Todos)-1] != "Planifier le kick-off" {
		t.Errorf("todos = %v", ct.Todos)
	}
	tasks := s.ListTasks(false)
	if len(tasks) != tasksBefore+2 {
		t.Fatalf("tasks = %d", len(tasks))
	}
	for _, id := range res.TaskIDs {
		task, _ := s.GetTask(id)
		if task.ContactID != "2" || task.Priority != models.PriorityMedium {
			t.Errorf("task = %+v", task)
		}
	}
}

func TestApplyIgnoresInvalidStage(t *testing.T) {
	c, s := testCopilot(t, &fakeCaller{})
	res, err := c.ApplyNoteAnalysis(NoteAnalysis{ContactID: "1", NewStage: "Signé", StageChanged: true})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.StageMoved {
		t.Error("invalid stage applied")
	}
	if ct, _ := s.GetContact("1"); ct.Stage != models.StageInDiscussion {
		t.Errorf("stage = %s", ct.Stage)
	}
}

func TestApplyUnknownContactOnlyAddsTasks(t *testing.T) {
	c, s := testCopilot(t, &fakeCaller{})
	before := len(s.ListTasks(false))
	res, err := c.ApplyNoteAnalysis(NoteAnalysis{ContactID: "ghost", Todos: []string{"Rappeler", " "}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if res.ContactUpdated || len(res.TaskIDs) != 1 {
		t.Errorf("result = %+v", res)
	}
	if len(s.ListTasks(false)) != before+1 {
		t.Error("task not added")
	}
}

func TestApplySkipsBlankTodos(t *testing.T) {
	c, s := testCopilot(t, &fakeCaller{})
	before, _ := s.GetContact("4")
	res, err := c.ApplyNoteAnalysis(NoteAnalysis{ContactID: "4", Todos: []string{"", "  Relancer ", "\t"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(res.TaskIDs) != 1 {
		t.Errorf("tasks = %v", res.TaskIDs)
	}
	ct, _ := s.GetContact("4")
	if len(ct.Todos) != len(before.Todos)+1 || ct.Todos[len(ct.Todos)-1] != "Relancer" {
		t.Errorf("todos = %q", ct.Todos)
	}
}

func TestAnalyzeMalformed(t *testing.T) {
	c, _ := testCopilot(t, &fakeCaller{reply: "désolé, je ne peux pas"})
	if _, err := c.AnalyzeNote(context.Background(), "note", ""); !errors.Is(err, ai.ErrMalformedOutput) {
		t.Fatalf("err = %v", err)
	}
}

func TestPlanProject(t *testing.T) {
	f := &fakeCaller{reply: `{"tasks":[
  {"text":"Maquettes","priority":"haute","daysFromNow":3},
  {"text":"Intégration","priority":"normale","daysFromNow":10},
  {"text":"Recette","priority":"faible","daysFromNow":0}
],"advice":"**Découpez** en lots."}`}
	c, s := testCopilot(t, f)
	p, err := s.AddProject(crm.ProjectInput{Name: "Site vitrine", ContactID: "2"})
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}

	plan, err := c.PlanProject(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("PlanProject: %v", err)
	}
	if len(plan.Tasks) != 3 {
		t.Fatalf("plan = %+v", plan)
	}
	if !strings.Contains(f.calls[0].messages[0].Content, `Client: "Thomas Dupont"`) {
		t.Error("prompt lacks the client name")
	}

	got, _ := s.GetProject(p.ID)
	if got.AIAdvice != "**Découpez** en lots." || len(got.Tasks) != 3 {
		t.Fatalf("project = %+v", got)
	}
	want := []struct {
		prio models.Priority
		due  models.Date
	}{
		{models.PriorityHigh, "2024-03-13"},
		{models.PriorityMedium, "2024-03-20"},
		{models.PriorityLow, ""},
	}
	for i, w := range want {
		if got.Tasks[i].Priority != w.prio || got.Tasks[i].DueDate != w.due || got.Tasks[i].ID == "" {
			t.Errorf("task %d = %+v", i, got.Tasks[i])
		}
	}
}

func TestPlanUnknownProject(t *testing.T) {
	f := &fakeCaller{}
	c, _ := testCopilot(t, f)
	if _, err := c.PlanProject(context.Background(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if len(f.calls) != 0 {
		t.Error("provider called for unknown project")
	}
}

func TestDraftEmailAndIcebreaker(t *testing.T) {
	f := &fakeCaller{reply: "Bonjour Thomas,"}
	c, _ := testCopilot(t, f)

	body, err := c.DraftEmail(context.Background(), "2", "")
	if err != nil || body != "Bonjour Thomas," {
		t.Fatalf("DraftEmail = %q, %v", body, err)
	}
	if !strings.Contains(f.calls[0].messages[0].Content, `type "relance"`) {
		t.Error("default email kind not applied")
	}
	if _, err := c.DraftEmail(context.Background(), "ghost", "relance"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown contact err = %v", err)
	}

	if _, err := c.Icebreaker(context.Background(), importer.Profile{Name: "Ada", Headline: "CTO"}); err != nil {
		t.Fatalf("Icebreaker: %v", err)
	}
	last := f.calls[len(f.calls)-1]
	if !strings.Contains(last.messages[0].Content, "Entreprise : non renseignée") || last.system != "" {
		t.Errorf("icebreaker call = %+v", last)
	}
}
