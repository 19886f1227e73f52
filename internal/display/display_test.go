package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/persist"
)

func TestEuros(t *testing.T) {
	for in, want := range map[float64]string{
		0:       "0 €",
		950:     "950 €",
		12000:   "12 000 €",
		1234567: "1 234 567 €",
		-4500:   "-4 500 €",
		99.6:    "100 €",
	} {
		if got := Euros(in); got != want {
			t.Errorf("Euros(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestStats(t *testing.T) {
	store := crm.FromState(persist.Defaults(true), crm.WithClock(func() time.Time {
		return time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	}))

	var buf bytes.Buffer
	Stats(&buf, store.Metrics(), store.ListTasks(false))
	out := buf.String()

	for _, want := range []string{"Tableau de bord", "12 000 €", "Devis envoyé", "MRR 0 €", "3 ouvertes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	done := store.ListTasks(false)
	for _, task := range done {
		if task.Done && strings.Contains(out, task.Text) {
			t.Errorf("done task %q listed", task.Text)
		}
	}
}
