package api

import (
	"github.com/starford/crmai/internal/copilot"
	"github.com/starford/crmai/internal/models"
)

// ContactListResponse wraps contact listings.
type ContactListResponse struct {
	Contacts []models.Contact `json:"contacts"`
	Total    int              `json:"total" example:"5"`
}

// MoveRequest is the body of POST /contacts/{id}/move.
type MoveRequest struct {
	Stage models.Stage `json:"stage" example:"Gagné"`
}

// NoteRequest is the body of POST /contacts/{id}/notes.
type NoteRequest struct {
	Note string `json:"note" example:"[10/03/2024] Appel de suivi"`
}

// DraftEmailRequest selects the kind of email to draft.
type DraftEmailRequest struct {
	Kind string `json:"kind" example:"relance"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Content string `json:"content" example:"Quels clients relancer cette semaine ?"`
}

// AnalyzeNoteRequest is the body of POST /ai/analyze-note.
type AnalyzeNoteRequest struct {
	Note      string `json:"note"`
	ContactID string `json:"contactId,omitempty"`
}

// ProjectView adds the completion ratio to a project.
type ProjectView struct {
	models.Project
	Progress float64 `json:"progress" example:"0.5"`
}

// ShareResponse is returned when a share is created.
type ShareResponse struct {
	Share models.PortalShare `json:"share"`
	URL   string             `json:"url" example:"https://crm.example.com/portal/3f2a..."`
}

// SignRequest carries the client's drawn signature as a data URL.
type SignRequest struct {
	SignatureImg string `json:"signatureImg"`
}

// PhaseRequest sets a portal phase status.
type PhaseRequest struct {
	Status models.PhaseStatus `json:"status" example:"Terminé"`
}

// TextResponse wraps free text written by the assistant.
type TextResponse struct {
	Text string `json:"text"`
}

// BriefRequest is the body of POST /quotes/from-brief.
type BriefRequest struct {
	Brief     string  `json:"brief"`
	DayRate   float64 `json:"dayRate" example:"500"`
	ContactID string  `json:"contactId,omitempty"`
}

// TriageRequest carries inbox messages to sort against the CRM.
type TriageRequest struct {
	Emails []copilot.InboxEmail `json:"emails"`
}
