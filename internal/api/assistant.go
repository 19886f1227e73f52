package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/starford/crmai/internal/checksum"
	"github.com/starford/crmai/internal/copilot"
	"github.com/starford/crmai/internal/crm"
)

// ChatHistory handles GET /api/chat. ?limit=N returns the last N messages.
func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, map[string]any{"messages": h.store.ChatHistory(limit)})
}

// Chat handles POST /api/chat.
//
//	@Summary		Ask the CRM copilot
//	@Tags			assistant
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ChatRequest	true	"User message"
//	@Success		200		{object}	models.ChatMessage
//	@Failure		400		{object}	errResponse
//	@Failure		401		{object}	errResponse
//	@Failure		429		{object}	errResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chat [post]
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reply, err := h.copilot.Chat(r.Context(), req.Content)
	if err != nil {
		writeError(w, "chat", err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) ClearChat(w http.ResponseWriter, _ *http.Request) {
	if err := h.store.ClearChat(); err != nil {
		writeError(w, "clear chat", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetAppearance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Appearance())
}

func (h *Handler) UpdateAppearance(w http.ResponseWriter, r *http.Request) {
	var patch crm.AppearancePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	a, err := h.store.UpdateAppearance(patch)
	if err != nil {
		writeError(w, "update appearance", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// GetAISettings handles GET /api/ai-settings. Keys are masked.
func (h *Handler) GetAISettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.AISettings().Masked())
}

func (h *Handler) UpdateAISettings(w http.ResponseWriter, r *http.Request) {
	var patch crm.AISettingsPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	s, err := h.store.UpdateAISettings(patch)
	if err != nil {
		writeError(w, "update ai settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s.Masked())
}

// TestAISettings handles POST /api/ai-settings/test with the saved settings.
func (h *Handler) TestAISettings(w http.ResponseWriter, r *http.Request) {
	reply, err := h.ai.TestConnection(r.Context(), h.store.AISettings())
	if err != nil {
		writeError(w, "test ai settings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "reply": reply})
}

// Context handles GET /api/context: the plain-text digest given to the
// assistant. It carries an ETag and honours If-None-Match.
func (h *Handler) Context(w http.ResponseWriter, r *http.Request) {
	text := h.store.Context()
	etag := checksum.ETag([]byte(text))
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && strings.Contains(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (h *Handler) Metrics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Metrics())
}

// AnalyzeNote handles POST /api/ai/analyze-note. Nothing is written until
// the caller posts the analysis to /apply.
func (h *Handler) AnalyzeNote(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.copilot.AnalyzeNote(r.Context(), req.Note, req.ContactID)
	if err != nil {
		writeError(w, "analyze note", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) ApplyNoteAnalysis(w http.ResponseWriter, r *http.Request) {
	var a copilot.NoteAnalysis
	if !decodeJSON(w, r, &a) {
		return
	}
	res, err := h.copilot.ApplyNoteAnalysis(a)
	if err != nil {
		writeError(w, "apply note analysis", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PlanProject handles POST /api/projects/{id}/plan.
func (h *Handler) PlanProject(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	plan, err := h.copilot.PlanProject(r.Context(), id)
	if err != nil {
		writeError(w, "plan project", err)
		return
	}
	p, _ := h.store.GetProject(id)
	writeJSON(w, http.StatusOK, map[string]any{
		"plan":    plan,
		"project": ProjectView{Project: p, Progress: p.Progress()},
	})
}

func (h *Handler) DraftEmail(w http.ResponseWriter, r *http.Request) {
	var req DraftEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	body, err := h.copilot.DraftEmail(r.Context(), idParam(r), req.Kind)
	if err != nil {
		writeError(w, "draft email", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"body": body})
}
