package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/crmai/internal/copilot"
	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/models"
	"github.com/starford/crmai/internal/portal"
)

// ConnectionTester checks AI credentials. *ai.Client implements it.
type ConnectionTester interface {
	TestConnection(ctx context.Context, settings models.AISettings) (string, error)
}

// Handler holds API route handlers.
type Handler struct {
	store   *crm.Store
	copilot *copilot.Copilot
	portal  *portal.Service
	ai      ConnectionTester
	logger  *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(store *crm.Store, cp *copilot.Copilot, ps *portal.Service, tester ConnectionTester, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, copilot: cp, portal: ps, ai: tester, logger: logger}
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// ListContacts handles GET /api/contacts.
//
//	@Summary		List contacts, optionally filtered
//	@Tags			contacts
//	@Produce		json
//	@Param			q		query		string	false	"Name, company or email substring"
//	@Param			stage	query		string	false	"Pipeline stage"
//	@Success		200		{object}	ContactListResponse
//	@Security		BearerAuth
//	@Router			/contacts [get]
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	contacts := h.store.SearchContacts(q.Get("q"), models.Stage(q.Get("stage")))
	writeJSON(w, http.StatusOK, ContactListResponse{Contacts: contacts, Total: len(contacts)})
}

// CreateContact handles POST /api/contacts.
//
//	@Summary		Create a contact
//	@Tags			contacts
//	@Accept			json
//	@Produce		json
//	@Param			body	body		crm.ContactInput	true	"Contact to create"
//	@Success		201		{object}	models.Contact
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts [post]
func (h *Handler) CreateContact(w http.ResponseWriter, r *http.Request) {
	var in crm.ContactInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.store.AddContact(in)
	if err != nil {
		writeError(w, "create contact", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// GetContact handles GET /api/contacts/{id}.
func (h *Handler) GetContact(w http.ResponseWriter, r *http.Request) {
	c, ok := h.store.GetContact(idParam(r))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateContact handles PATCH /api/contacts/{id}. Absent fields are left unchanged.
func (h *Handler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	var patch crm.ContactPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	id := idParam(r)
	found, err := h.store.UpdateContact(id, patch)
	h.respondUpdated(w, "update contact", found, err, func() (any, bool) { return h.store.GetContact(id) })
}

// DeleteContact handles DELETE /api/contacts/{id}. Invoices and tasks of
// the contact are kept.
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	found, err := h.store.DeleteContact(idParam(r))
	respondDeleted(w, "delete contact", found, err)
}

// MoveContact handles POST /api/contacts/{id}/move.
func (h *Handler) MoveContact(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := idParam(r)
	found, err := h.store.MoveContact(id, req.Stage)
	h.respondUpdated(w, "move contact", found, err, func() (any, bool) { return h.store.GetContact(id) })
}

// AppendContactNote handles POST /api/contacts/{id}/notes.
func (h *Handler) AppendContactNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := idParam(r)
	found, err := h.store.AppendContactNote(id, req.Note)
	h.respondUpdated(w, "append note", found, err, func() (any, bool) { return h.store.GetContact(id) })
}

// respondUpdated answers a (found, err) mutation with the fresh entity.
func (h *Handler) respondUpdated(w http.ResponseWriter, op string, found bool, err error, get func() (any, bool)) {
	if err != nil {
		writeError(w, op, err)
		return
	}
	if !found {
		notFound(w)
		return
	}
	v, ok := get()
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func respondDeleted(w http.ResponseWriter, op string, found bool, err error) {
	if err != nil {
		writeError(w, op, err)
		return
	}
	if !found {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
