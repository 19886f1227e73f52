package idgen

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestNewUnique(t *testing.T) {
	seen := make(map[string]struct{})
	now := time.Now()
	for i := 0; i < 5000; i++ {
		id := NewAt(KindContact, now)
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %s after %d calls", id, i)
		}
		seen[id] = struct{}{}
		if !strings.HasPrefix(id, "c_") {
			t.Fatalf("id %q missing kind prefix", id)
		}
	}
}

func TestInvoiceID(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 42*int(time.Millisecond), time.UTC)
	id := InvoiceID("D", now, nil)
	if id != "D-2024-042" {
		t.Fatalf("id = %q, want D-2024-042", id)
	}

	taken := map[string]bool{"F-2024-042": true, "F-2024-043": true}
	id = InvoiceID("F", now, func(s string) bool { return taken[s] })
	if id != "F-2024-044" {
		t.Errorf("id = %q, want F-2024-044", id)
	}
}

func TestShareTokenNoCollisions(t *testing.T) {
	hexRe := regexp.MustCompile(`^[0-9a-f]{32}$`)
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		tok, err := ShareToken()
		if err != nil {
			t.Fatalf("ShareToken: %v", err)
		}
		if !hexRe.MatchString(tok) {
			t.Fatalf("token %q is not 32 lowercase hex chars", tok)
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("collision after %d tokens", i)
		}
		seen[tok] = struct{}{}
	}
}
