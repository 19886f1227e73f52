// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the CRM to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/models"
)

const contextURI = "crm://context"

// Server wraps the MCP server with CRM tools.
type Server struct {
	mcp   *server.MCPServer
	store *crm.Store
	now   func() time.Time
}

// New creates a new MCP server with all CRM tools registered.
func New(store *crm.Store, version string) *Server {
	s := &Server{store: store, now: time.Now}

	s.mcp = server.NewMCPServer(
		"CRM AI",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_crm_context",
		mcp.WithDescription("Markdown digest of the whole CRM: contacts and pipeline, invoices, open tasks and financial summary. "+
			"Read this first to answer questions about the freelancer's business."),
	), s.getContext)

	s.mcp.AddTool(mcp.NewTool("list_contacts",
		mcp.WithDescription("List contacts as JSON, optionally restricted to one pipeline stage."),
		mcp.WithString("stage", mcp.Description("Pipeline stage, e.g. \"En discussion\"")),
	), s.listContacts)

	s.mcp.AddTool(mcp.NewTool("search_contacts",
		mcp.WithDescription("Case-insensitive search on contact name, company and email."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search text")),
	), s.searchContacts)

	s.mcp.AddTool(mcp.NewTool("move_contact",
		mcp.WithDescription("Move a contact to another pipeline stage. See get_crm_conventions for the allowed stages."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Contact id")),
		mcp.WithString("stage", mcp.Required(), mcp.Description("Target stage")),
	), s.moveContact)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Create a to-do task."),
		mcp.WithString("text", mcp.Required(), mcp.Description("What to do")),
		mcp.WithString("contactId", mcp.Description("Related contact id")),
		mcp.WithString("priority", mcp.Description("high, medium or low (default medium)")),
		mcp.WithString("dueDate", mcp.Description("Due date, YYYY-MM-DD")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("toggle_task",
		mcp.WithDescription("Mark a task done, or open again if it was done."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
	), s.toggleTask)

	s.mcp.AddTool(mcp.NewTool("append_contact_note",
		mcp.WithDescription("Append a dated paragraph to a contact's notes. The date prefix is added when missing."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Contact id")),
		mcp.WithString("note", mcp.Required(), mcp.Description("Note text")),
	), s.appendContactNote)

	s.mcp.AddTool(mcp.NewTool("get_metrics",
		mcp.WithDescription("Dashboard figures as JSON: invoice totals, MRR/ARR, pipeline per stage, conversion rate, open tasks."),
	), s.getMetrics)

	s.mcp.AddTool(mcp.NewTool("get_crm_conventions",
		mcp.WithDescription("Allowed stage, priority and status values and the note format. "+
			"Call this before writing to the CRM."),
	), s.getConventions)

	s.mcp.AddResource(
		mcp.NewResource(contextURI, "CRM context",
			mcp.WithResourceDescription("Markdown digest of the CRM, the same text the built-in assistant reads."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContextResource,
	)

	s.mcp.AddResource(
		mcp.NewResource("crm://conventions", "CRM conventions",
			mcp.WithResourceDescription("Allowed enum values and the contact note format."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readConventionsResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError turns a store error into a readable tool failure.
func toolError(err error) *mcp.CallToolResult {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid %s: %s", verr.Field, verr.Reason))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) getContext(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.store.Context()), nil
}

func (s *Server) listContacts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stage := models.Stage(req.GetString("stage", ""))
	return jsonResult(s.store.SearchContacts("", stage))
}

func (s *Server) searchContacts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.store.SearchContacts(q, ""))
}

func (s *Server) moveContact(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stage, err := req.RequireString("stage")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found, err := s.store.MoveContact(id, models.Stage(stage))
	if err != nil {
		return toolError(err), nil
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("contact not found: %s", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("moved %s to %s", id, stage)), nil
}

func (s *Server) addTask(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.store.AddTask(crm.TaskInput{
		Text:      text,
		ContactID: req.GetString("contactId", ""),
		Priority:  models.ParsePriority(req.GetString("priority", "")),
		DueDate:   models.Date(req.GetString("dueDate", "")),
	})
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(t)
}

func (s *Server) toggleTask(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	found, err := s.store.ToggleTask(id)
	if err != nil {
		return toolError(err), nil
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("task not found: %s", id)), nil
	}
	t, _ := s.store.GetTask(id)
	return jsonResult(t)
}

func (s *Server) appendContactNote(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := req.RequireString("note")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(note) == 0 || note[0] != '[' {
		note = fmt.Sprintf("[%s] %s", s.now().Format("02/01/2006"), note)
	}
	found, err := s.store.AppendContactNote(id, note)
	if err != nil {
		return toolError(err), nil
	}
	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("contact not found: %s", id)), nil
	}
	return mcp.NewToolResultText("note added to " + id), nil
}

func (s *Server) getMetrics(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.store.Metrics())
}

func (s *Server) getConventions(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(Conventions), nil
}

func (s *Server) readContextResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contextURI,
			MIMEType: "text/markdown",
			Text:     s.store.Context(),
		},
	}, nil
}

func (s *Server) readConventionsResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "crm://conventions",
			MIMEType: "text/markdown",
			Text:     Conventions,
		},
	}, nil
}
