package crm

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/models"
)

func TestAddInvoiceIDPrefix(t *testing.T) {
	s, _, _ := testStore(t)
	idRe := regexp.MustCompile(`^[DF]-2024-\d{3}$`)
	tests := []struct {
		typ    models.InvoiceType
		prefix string
	}{
		{models.InvoiceTypeQuote, "D-"},
		{models.InvoiceTypeInvoice, "F-"},
	}
	for _, tt := range tests {
		inv, err := s.AddInvoice(InvoiceInput{
			ContactID: "2", Type: tt.typ, Amount: 150,
			Items: []models.LineItem{{Description: "X", Quantity: 2, UnitPrice: 100}},
		})
		if err != nil {
			t.Fatalf("AddInvoice: %v", err)
		}
		if !strings.HasPrefix(inv.ID, tt.prefix) || !idRe.MatchString(inv.ID) {
			t.Errorf("id = %q, want prefix %s", inv.ID, tt.prefix)
		}
		if inv.Amount != 150 {
			t.Errorf("amount = %v, caller value must be kept", inv.Amount)
		}
		if inv.Date != "2024-03-10" || inv.Status != models.InvoiceStatusDraft {
			t.Errorf("defaults = %q %q", inv.Date, inv.Status)
		}
		if inv.ContactName != "Thomas Dupont" || inv.Company != "StartupFlow" {
			t.Errorf("snapshot = %q %q", inv.ContactName, inv.Company)
		}
	}
}

func TestInvoiceIDsUnique(t *testing.T) {
	s, _, _ := testStore(t)
	seen := map[string]bool{}
	for i := 0; i < 30; i++ {
		inv, err := s.AddInvoice(InvoiceInput{Type: models.InvoiceTypeInvoice})
		if err != nil {
			t.Fatalf("AddInvoice: %v", err)
		}
		if seen[inv.ID] {
			t.Fatalf("duplicate invoice id %s", inv.ID)
		}
		seen[inv.ID] = true
	}
}

func TestInvoiceSnapshotNotSynced(t *testing.T) {
	s, _, _ := testStore(t)
	name := "Marie L."
	_, _ = s.UpdateContact("3", ContactPatch{Name: &name})
	inv, _ := s.GetInvoice("F-2024-001")
	if inv.ContactName != "Marie Leclerc" {
		t.Errorf("contactName = %q, snapshot must not follow contact edits", inv.ContactName)
	}
}

func TestUpdateInvoice(t *testing.T) {
	s, _, _ := testStore(t)
	paid := models.InvoiceStatusPaid
	if found, err := s.UpdateInvoice("F-2024-003", InvoicePatch{Status: &paid}); !found || err != nil {
		t.Fatalf("UpdateInvoice = %v, %v", found, err)
	}
	bad := models.InvoiceStatus("Remboursée")
	if _, err := s.UpdateInvoice("F-2024-003", InvoicePatch{Status: &bad}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v", err)
	}
	inv, _ := s.GetInvoice("F-2024-003")
	if inv.Status != models.InvoiceStatusPaid {
		t.Errorf("status = %q", inv.Status)
	}
	if got := s.InvoiceTotals().Paid; got != 16500 {
		t.Errorf("paid = %v, want 16500", got)
	}
}

func TestAddTaskAndToggle(t *testing.T) {
	s, _, events := testStore(t)
	task, err := s.AddTask(TaskInput{Text: "Call back", ContactID: "4", Priority: models.PriorityHigh, DueDate: "2024-03-01"})
	if err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	if task.Done {
		t.Fatal("new task must not be done")
	}
	for _, want := range []bool{true, false} {
		if found, err := s.ToggleTask(task.ID); !found || err != nil {
			t.Fatalf("ToggleTask = %v, %v", found, err)
		}
		got, _ := s.GetTask(task.ID)
		if got.Done != want {
			t.Errorf("done = %v, want %v", got.Done, want)
		}
	}
	last := (*events)[len(*events)-1]
	if last != (event{KindTask, ActionUpdated, task.ID}) {
		t.Errorf("last event = %+v", last)
	}
}

func TestTaskDefaultsAndUpdate(t *testing.T) {
	s, _, _ := testStore(t)
	task, _ := s.AddTask(TaskInput{Text: "  Relancer  "})
	if task.Priority != models.PriorityMedium || task.Text != "Relancer" {
		t.Errorf("task = %+v", task)
	}
	if _, err := s.AddTask(TaskInput{Text: "x", Priority: "urgent"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad priority err = %v", err)
	}
	if _, err := s.AddTask(TaskInput{Text: "x", DueDate: "01/03/2024"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad date err = %v", err)
	}
	text := "Relancer Lucas"
	_, _ = s.UpdateTask(task.ID, TaskPatch{Text: &text})
	got, _ := s.GetTask(task.ID)
	if got.Text != text || got.Priority != models.PriorityMedium {
		t.Errorf("after update = %+v", got)
	}
	if open := len(s.ListTasks(true)); open != 4 {
		t.Errorf("open tasks = %d, want 4", open)
	}
	_, _ = s.DeleteTask(task.ID)
	if _, ok := s.GetTask(task.ID); ok {
		t.Error("task still present")
	}
}

func TestProjects(t *testing.T) {
	s, _, _ := testStore(t)
	p, err := s.AddProject(ProjectInput{Name: "Refonte", ContactID: "1", Tasks: []models.ProjectTask{{Text: "Audit"}}})
	if err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	if p.Status != models.ProjectStatusPlanned || p.CreatedAt != "2024-03-10" {
		t.Errorf("defaults = %q %q", p.Status, p.CreatedAt)
	}
	if len(p.Tasks) != 1 || p.Tasks[0].ID == "" || p.Tasks[0].Priority != models.PriorityMedium {
		t.Errorf("subtask = %+v", p.Tasks)
	}

	status := models.ProjectStatusInProgress
	if found, err := s.UpdateProject(p.ID, ProjectPatch{Status: &status}); !found || err != nil {
		t.Fatalf("UpdateProject = %v, %v", found, err)
	}
	_, _ = s.AppendProjectTasks(p.ID, []models.ProjectTask{{Text: "Maquettes", DueDate: "2024-03-15"}}, "Commencez par l'audit.")
	_, _ = s.ToggleProjectTask(p.ID, p.Tasks[0].ID)

	got, _ := s.GetProject(p.ID)
	if got.Status != status || len(got.Tasks) != 2 || got.AIAdvice != "Commencez par l'audit." {
		t.Errorf("project = %+v", got)
	}
	if got.Progress() != 0.5 {
		t.Errorf("progress = %v", got.Progress())
	}

	bad := models.ProjectStatus("Fini")
	if _, err := s.UpdateProject(p.ID, ProjectPatch{Status: &bad}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v", err)
	}
	_, _ = s.DeleteProject(p.ID)
	if len(s.ListProjects()) != 0 {
		t.Error("project not deleted")
	}
}

func TestChatAppearanceSettings(t *testing.T) {
	s, fs, _ := testStore(t)
	for i := 0; i < 12; i++ {
		if _, err := s.AddChatMessage(models.RoleUser, "bonjour"); err != nil {
			t.Fatalf("AddChatMessage: %v", err)
		}
	}
	if _, err := s.AddChatMessage("ai", "x"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad role err = %v", err)
	}
	if got := len(s.ChatHistory(10)); got != 10 {
		t.Errorf("history(10) = %d", got)
	}
	_ = s.ClearChat()
	if len(s.ChatHistory(0)) != 0 {
		t.Error("history not cleared")
	}

	theme := models.ThemeLight
	a, err := s.UpdateAppearance(AppearancePatch{Theme: &theme})
	if err != nil || a.Theme != theme || a.Font != models.FontInter {
		t.Errorf("appearance = %+v, %v", a, err)
	}

	provider := models.ProviderOpenAI
	settings, err := s.UpdateAISettings(AISettingsPatch{Provider: &provider, OpenAIKey: ptr(" sk-1 ")})
	if err != nil || settings.OpenAIKey != "sk-1" || settings.Model != "gpt-4o-mini" {
		t.Errorf("settings = %+v, %v", settings, err)
	}
	raw, _ := fs.Get("crm_ai_data")
	if strings.Contains(string(raw), "sk-1") {
		t.Error("api key written into the bulk blob")
	}
	raw, _ = fs.Get("crm_ai_settings_v2")
	if !strings.Contains(string(raw), "sk-1") {
		t.Error("api key missing from the settings blob")
	}
}

func TestSubscriptions(t *testing.T) {
	s, _, _ := testStore(t)
	monthly, _ := s.AddSubscription(SubscriptionInput{Name: "Maintenance", Amount: 300, NextBillingDate: "2024-03-20"})
	quarterly, _ := s.AddSubscription(SubscriptionInput{Name: "SEO", Amount: 900, Frequency: models.FrequencyQuarterly, NextBillingDate: "2024-03-12"})
	_, _ = s.AddSubscription(SubscriptionInput{Name: "Hébergement", Amount: 1200, Frequency: models.FrequencyYearly, NextBillingDate: "2024-06-01"})

	r := s.Recurring()
	if r.MRR != 700 || r.ARR != 8400 || r.Active != 3 || r.AverageContract != 233 {
		t.Errorf("recurring = %+v", r)
	}

	up := s.UpcomingBillings(fixedNow, UpcomingWindow)
	if len(up) != 2 || up[0].Subscription.ID != quarterly.ID || up[0].DaysUntil != 2 || up[1].DaysUntil != 10 {
		t.Errorf("upcoming = %+v", up)
	}

	_, _ = s.ToggleSubscription(monthly.ID)
	if r := s.Recurring(); r.MRR != 400 || r.Active != 2 {
		t.Errorf("after pause = %+v", r)
	}
	_, _ = s.ToggleSubscription(monthly.ID)
	if r := s.Recurring(); r.MRR != 700 {
		t.Errorf("after resume = %+v", r)
	}

	neg := -5.0
	if _, err := s.UpdateSubscription(monthly.ID, SubscriptionPatch{Amount: &neg}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v", err)
	}
	_, _ = s.DeleteSubscription(monthly.ID)
	if len(s.ListSubscriptions()) != 2 {
		t.Error("subscription not deleted")
	}
}

func TestMetrics(t *testing.T) {
	s, _, _ := testStore(t)
	m := s.Metrics()
	if m.Invoices.Paid != 12000 || m.Invoices.Overdue != 4500 || m.Invoices.Pending != 15000 {
		t.Errorf("invoices = %+v", m.Invoices)
	}
	if m.WonRevenue != 12000 || m.PipelineValue != 26000 {
		t.Errorf("won = %v, pipeline = %v", m.WonRevenue, m.PipelineValue)
	}
	// 1 won out of 4 non-lost contacts.
	if m.ConversionRate != 25 {
		t.Errorf("conversion = %d", m.ConversionRate)
	}
	if m.OpenTasks != 3 || m.HighPriority != 2 {
		t.Errorf("tasks = %d/%d", m.OpenTasks, m.HighPriority)
	}
	if len(m.Pipeline) != 5 || m.Pipeline[0].Stage != models.StageToContact || m.Pipeline[0].Count != 1 {
		t.Errorf("pipeline = %+v", m.Pipeline)
	}
}
