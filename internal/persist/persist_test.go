package persist

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/models"
	"github.com/starford/crmai/internal/storage"
)

// countingStore records every Put on top of an FS provider.
type countingStore struct {
	*storage.FS
	puts map[string]int
	fail bool
}

func (c *countingStore) Put(key string, value []byte) error {
	if c.fail {
		return errors.New("disk full")
	}
	c.puts[key]++
	return c.FS.Put(key, value)
}

func newStore(t *testing.T) *countingStore {
	t.Helper()
	fs, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return &countingStore{FS: fs, puts: map[string]int{}}
}

func TestLoadEmptyUsesDefaults(t *testing.T) {
	a := New(newStore(t), WithDemoSeed(true))
	s, err := a.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Contacts) != 5 || len(s.Invoices) != 3 || len(s.Tasks) != 4 {
		t.Errorf("demo sizes = %d/%d/%d", len(s.Contacts), len(s.Invoices), len(s.Tasks))
	}
	if s.AISettings != DefaultAISettings() {
		t.Errorf("ai settings = %+v", s.AISettings)
	}
	if s.Appearance.Theme != models.ThemeDark {
		t.Errorf("theme = %q", s.Appearance.Theme)
	}

	empty, _ := New(newStore(t)).Load()
	if len(empty.Contacts) != 0 || empty.Contacts == nil {
		t.Errorf("non-demo contacts = %#v", empty.Contacts)
	}
}

func TestDefaultsAreIndependent(t *testing.T) {
	a := Defaults(true)
	a.Contacts[0].Tags[0] = "changed"
	b := Defaults(true)
	if b.Contacts[0].Tags[0] != "Design" {
		t.Error("Defaults shares backing arrays between calls")
	}
}

func TestRoundTrip(t *testing.T) {
	st := newStore(t)
	a := New(st, WithDemoSeed(true))
	s, _ := a.Load()
	s.Projects = append(s.Projects, models.Project{ID: "proj_1", Name: "Refonte", Status: models.ProjectStatusPlanned, Tasks: []models.ProjectTask{}})
	s.Subscriptions = append(s.Subscriptions, models.Subscription{ID: "mrr_1", Name: "Maintenance", Amount: 300, Frequency: models.FrequencyMonthly, Status: models.SubscriptionActive})
	s.AISettings.OpenAIKey = "sk-secret-key"

	if err := a.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := New(st).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for name, pair := range map[string][2]any{
		"contacts":      {s.Contacts, got.Contacts},
		"invoices":      {s.Invoices, got.Invoices},
		"tasks":         {s.Tasks, got.Tasks},
		"projects":      {s.Projects, got.Projects},
		"subscriptions": {s.Subscriptions, got.Subscriptions},
	} {
		if !reflect.DeepEqual(pair[0], pair[1]) {
			t.Errorf("%s differ after round trip:\n%+v\n%+v", name, pair[0], pair[1])
		}
	}
	if got.AISettings.OpenAIKey != "" {
		t.Error("ai settings leaked through the bulk blob")
	}
}

func TestSaveNeverContainsKeys(t *testing.T) {
	st := newStore(t)
	a := New(st)
	s := Defaults(false)
	s.AISettings = models.AISettings{Provider: models.ProviderOpenAI, OpenAIKey: "sk-abc123", GeminiKey: "AIza-xyz"}
	if err := a.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := st.Get(KeyData)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	for _, secret := range []string{"sk-abc123", "AIza-xyz", "aiSettings", "openaiKey"} {
		if strings.Contains(string(raw), secret) {
			t.Errorf("bulk blob contains %q", secret)
		}
	}
}

func TestSaveSkipsUnchanged(t *testing.T) {
	st := newStore(t)
	a := New(st)
	s := Defaults(true)
	_ = a.Save(s)
	_ = a.Save(s)
	if st.puts[KeyData] != 1 || st.puts[KeySubscriptions] != 1 {
		t.Errorf("puts = %v, want one per key", st.puts)
	}
	s.Tasks[0].Done = true
	_ = a.Save(s)
	if st.puts[KeyData] != 2 || st.puts[KeySubscriptions] != 1 {
		t.Errorf("puts after change = %v", st.puts)
	}
}

func TestSaveFailureRetriesNextTime(t *testing.T) {
	st := newStore(t)
	a := New(st)
	s := Defaults(false)
	st.fail = true
	if err := a.Save(s); err == nil {
		t.Fatal("expected write error")
	}
	st.fail = false
	if err := a.Save(s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if st.puts[KeyData] != 1 {
		t.Errorf("puts = %v", st.puts)
	}
}

func TestCorruptBulkFallsBack(t *testing.T) {
	st := newStore(t)
	_ = st.FS.Put(KeyData, []byte(`{"contacts": [oops`))
	_ = st.FS.Put(KeyAISettings, []byte(`{"provider":"openai","openaiKey":"sk-kept","model":"gpt-4o"}`))

	s, err := New(st, WithDemoSeed(true)).Load()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	if len(s.Contacts) != 5 {
		t.Errorf("contacts = %d, want demo defaults", len(s.Contacts))
	}
	if s.AISettings.OpenAIKey != "sk-kept" || s.AISettings.Provider != models.ProviderOpenAI {
		t.Errorf("ai settings = %+v", s.AISettings)
	}
}

func TestCorruptAISettingsKeepsBulk(t *testing.T) {
	st := newStore(t)
	_ = st.FS.Put(KeyData, []byte(`{"contacts":[{"id":"c1","name":"Ana","stage":"Gagné"}]}`))
	_ = st.FS.Put(KeyAISettings, []byte(`not json`))

	s, err := New(st, WithDemoSeed(true)).Load()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v", err)
	}
	if len(s.Contacts) != 1 || s.Contacts[0].Name != "Ana" {
		t.Errorf("contacts = %+v", s.Contacts)
	}
	if s.AISettings != DefaultAISettings() {
		t.Errorf("ai settings = %+v", s.AISettings)
	}
}

func TestMergeKeepsMissingFields(t *testing.T) {
	st := newStore(t)
	_ = st.FS.Put(KeyData, []byte(`{"tasks":[],"contacts":null,"appearance":{"theme":"midnight"},"aiSettings":{"openaiKey":"sk-old"}}`))

	s, err := New(st, WithDemoSeed(true)).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Tasks) != 0 {
		t.Errorf("tasks = %d, want persisted empty list", len(s.Tasks))
	}
	if len(s.Contacts) != 5 || len(s.Invoices) != 3 {
		t.Errorf("missing fields should keep defaults: %d/%d", len(s.Contacts), len(s.Invoices))
	}
	if s.Appearance.Theme != models.ThemeMidnight || s.Appearance.Font != models.FontInter {
		t.Errorf("appearance = %+v", s.Appearance)
	}
	if s.AISettings.OpenAIKey != "" {
		t.Error("aiSettings in the bulk blob must be ignored")
	}
}

func TestAISettingsRoundTrip(t *testing.T) {
	st := newStore(t)
	a := New(st)
	want := models.AISettings{Provider: models.ProviderOpenAI, OpenAIKey: "sk-1", Model: "gpt-4o"}
	if err := a.SaveAISettings(want); err != nil {
		t.Fatalf("SaveAISettings: %v", err)
	}
	got, err := a.LoadAISettings()
	if err != nil || got != want {
		t.Errorf("LoadAISettings = %+v, %v", got, err)
	}
}

func TestShares(t *testing.T) {
	a := New(newStore(t))
	token := strings.Repeat("ab", 16)
	share := models.PortalShare{Token: token, ClientName: "Marie", Phases: []models.Phase{{Label: "Design", Days: 2, Status: models.PhaseTodo}}}
	if err := a.PutShare(share); err != nil {
		t.Fatalf("PutShare: %v", err)
	}
	got, err := a.GetShare(token)
	if err != nil {
		t.Fatalf("GetShare: %v", err)
	}
	if got.ClientName != "Marie" || len(got.Phases) != 1 {
		t.Errorf("share = %+v", got)
	}
	tokens, _ := a.ShareTokens()
	if len(tokens) != 1 || tokens[0] != token {
		t.Errorf("tokens = %v", tokens)
	}
	if _, err := a.GetShare(strings.Repeat("cd", 16)); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing share err = %v", err)
	}
	if err := a.PutShare(models.PortalShare{Token: "short"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("bad token err = %v", err)
	}
}
