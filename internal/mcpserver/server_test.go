package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/models"
	"github.com/starford/crmai/internal/persist"
)

var fixedNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

func testServer(t *testing.T) (*Server, *crm.Store) {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	store := crm.FromState(persist.Defaults(true), crm.WithClock(clock))
	srv := New(store, "test")
	srv.now = clock
	return srv, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"get_crm_context":     srv.getContext,
		"list_contacts":       srv.listContacts,
		"search_contacts":     srv.searchContacts,
		"move_contact":        srv.moveContact,
		"add_task":            srv.addTask,
		"toggle_task":         srv.toggleTask,
		"append_contact_note": srv.appendContactNote,
		"get_metrics":         srv.getMetrics,
		"get_crm_conventions": srv.getConventions,
	}
	h, ok := handlers[name]
	if !ok {
		t.Fatalf("unknown tool: %s", name)
	}
	result, err := h(ctx, req)
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestGetContext(t *testing.T) {
	srv, store := testServer(t)
	r := callTool(t, srv, "get_crm_context", nil)
	if got := resultText(r); got != store.Context() {
		t.Errorf("context differs from store digest:\n%s", got)
	}
}

func TestListAndSearchContacts(t *testing.T) {
	srv, _ := testServer(t)

	var all []models.Contact
	if err := json.Unmarshal([]byte(resultText(callTool(t, srv, "list_contacts", map[string]any{}))), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("contacts = %d", len(all))
	}

	var won []models.Contact
	_ = json.Unmarshal([]byte(resultText(callTool(t, srv, "list_contacts", map[string]any{"stage": "Gagné"}))), &won)
	if len(won) != 1 || won[0].ID != "3" {
		t.Errorf("won = %+v", won)
	}

	r := callTool(t, srv, "search_contacts", map[string]any{"query": "pixel"})
	if !strings.Contains(resultText(r), "Sophie Martin") {
		t.Errorf("search = %s", resultText(r))
	}
	if r := callTool(t, srv, "search_contacts", map[string]any{}); !r.IsError {
		t.Error("missing query accepted")
	}
}

func TestMoveContact(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "move_contact", map[string]any{"id": "2", "stage": "Gagné"})
	if r.IsError {
		t.Fatalf("move: %s", resultText(r))
	}
	if c, _ := store.GetContact("2"); c.Stage != models.StageWon {
		t.Errorf("stage = %s", c.Stage)
	}

	r = callTool(t, srv, "move_contact", map[string]any{"id": "2", "stage": "Signé"})
	if !r.IsError || !strings.Contains(resultText(r), "stage") {
		t.Errorf("invalid stage result = %q", resultText(r))
	}
	if r := callTool(t, srv, "move_contact", map[string]any{"id": "ghost", "stage": "Gagné"}); !r.IsError {
		t.Error("unknown contact accepted")
	}
}

func TestAddAndToggleTask(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "add_task", map[string]any{"text": "Envoyer devis", "contactId": "4", "priority": "haute"})
	if r.IsError {
		t.Fatalf("add: %s", resultText(r))
	}
	var task models.Task
	if err := json.Unmarshal([]byte(resultText(r)), &task); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if task.Priority != models.PriorityHigh || task.ContactID != "4" {
		t.Errorf("task = %+v", task)
	}

	r = callTool(t, srv, "toggle_task", map[string]any{"id": task.ID})
	if r.IsError {
		t.Fatalf("toggle: %s", resultText(r))
	}
	if got, _ := store.GetTask(task.ID); !got.Done {
		t.Error("task not done")
	}

	if r := callTool(t, srv, "add_task", map[string]any{"text": "x", "dueDate": "demain"}); !r.IsError {
		t.Error("bad due date accepted")
	}
}

func TestAppendContactNote(t *testing.T) {
	srv, store := testServer(t)

	r := callTool(t, srv, "append_contact_note", map[string]any{"id": "4", "note": "Audit SEO planifié"})
	if r.IsError {
		t.Fatalf("append: %s", resultText(r))
	}
	c, _ := store.GetContact("4")
	if !strings.HasSuffix(c.Notes, "\n\n[10/03/2024] Audit SEO planifié") {
		t.Errorf("notes = %q", c.Notes)
	}

	callTool(t, srv, "append_contact_note", map[string]any{"id": "4", "note": "[01/03/2024] Déjà daté"})
	c, _ = store.GetContact("4")
	if !strings.HasSuffix(c.Notes, "\n\n[01/03/2024] Déjà daté") {
		t.Errorf("dated note rewritten: %q", c.Notes)
	}
}

func TestGetMetrics(t *testing.T) {
	srv, _ := testServer(t)
	var m crm.Metrics
	if err := json.Unmarshal([]byte(resultText(callTool(t, srv, "get_metrics", nil))), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Invoices.Paid != 12000 || m.OpenTasks != 3 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestContextResource(t *testing.T) {
	srv, store := testServer(t)
	contents, err := srv.readContextResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != "crm://context" || tc.MIMEType != "text/markdown" || tc.Text != store.Context() {
		t.Errorf("resource = %+v", contents[0])
	}
	if !strings.Contains(resultText(callTool(t, srv, "get_crm_conventions", nil)), "Devis envoyé") {
		t.Error("conventions lack stages")
	}
}
