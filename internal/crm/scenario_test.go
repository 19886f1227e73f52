package crm

import (
	"strings"
	"testing"

	"github.com/starford/crmai/internal/models"
)

func TestContextDeterministic(t *testing.T) {
	s, _, _ := testStore(t)
	if s.Context() != s.Context() {
		t.Fatal("context differs on an unchanged store")
	}
}

func TestMoveContactReflectedInContext(t *testing.T) {
	s, _, _ := testStore(t)
	before := s.Context()
	if !strings.Contains(before, "**Thomas Dupont** (StartupFlow) | Stage: Devis envoyé") {
		t.Fatalf("unexpected seed context:\n%s", before)
	}

	if _, err := s.MoveContact("2", models.StageWon); err != nil {
		t.Fatalf("MoveContact: %v", err)
	}
	after := s.Context()
	if !strings.Contains(after, "**Thomas Dupont** (StartupFlow) | Stage: Gagné") {
		t.Errorf("context does not show the new stage:\n%s", after)
	}
	if strings.Contains(after, "**Thomas Dupont** (StartupFlow) | Stage: Devis envoyé") {
		t.Error("context still shows the prior stage")
	}
}
