package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/crmai/internal/crm"
)

// ListInvoices handles GET /api/invoices.
func (h *Handler) ListInvoices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"invoices": h.store.ListInvoices(),
		"totals":   h.store.InvoiceTotals(),
	})
}

// CreateInvoice handles POST /api/invoices. The id is derived from the type
// and the current year.
//
//	@Summary		Create a quote or an invoice
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			body	body		crm.InvoiceInput	true	"Invoice to create"
//	@Success		201		{object}	models.Invoice
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/invoices [post]
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var in crm.InvoiceInput
	if !decodeJSON(w, r, &in) {
		return
	}
	inv, err := h.store.AddInvoice(in)
	if err != nil {
		writeError(w, "create invoice", err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.store.GetInvoice(idParam(r))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var patch crm.InvoicePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	id := idParam(r)
	found, err := h.store.UpdateInvoice(id, patch)
	h.respondUpdated(w, "update invoice", found, err, func() (any, bool) { return h.store.GetInvoice(id) })
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	found, err := h.store.DeleteInvoice(idParam(r))
	respondDeleted(w, "delete invoice", found, err)
}

// ListTasks handles GET /api/tasks. ?open=true hides done tasks.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	open := r.URL.Query().Get("open") == "true"
	writeJSON(w, http.StatusOK, map[string]any{"tasks": h.store.ListTasks(open)})
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in crm.TaskInput
	if !decodeJSON(w, r, &in) {
		return
	}
	t, err := h.store.AddTask(in)
	if err != nil {
		writeError(w, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch crm.TaskPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	id := idParam(r)
	found, err := h.store.UpdateTask(id, patch)
	h.respondUpdated(w, "update task", found, err, func() (any, bool) { return h.store.GetTask(id) })
}

func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	found, err := h.store.ToggleTask(id)
	h.respondUpdated(w, "toggle task", found, err, func() (any, bool) { return h.store.GetTask(id) })
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	found, err := h.store.DeleteTask(idParam(r))
	respondDeleted(w, "delete task", found, err)
}

// ListProjects handles GET /api/projects.
func (h *Handler) ListProjects(w http.ResponseWriter, _ *http.Request) {
	projects := h.store.ListProjects()
	out := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectView{Project: p, Progress: p.Progress()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": out})
}

func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var in crm.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.store.AddProject(in)
	if err != nil {
		writeError(w, "create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, ProjectView{Project: p, Progress: p.Progress()})
}

func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.GetProject(idParam(r))
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, ProjectView{Project: p, Progress: p.Progress()})
}

func (h *Handler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	var patch crm.ProjectPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	id := idParam(r)
	found, err := h.store.UpdateProject(id, patch)
	h.respondUpdated(w, "update project", found, err, func() (any, bool) { return h.store.GetProject(id) })
}

func (h *Handler) ToggleProjectTask(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	found, err := h.store.ToggleProjectTask(id, chi.URLParam(r, "taskID"))
	h.respondUpdated(w, "toggle project task", found, err, func() (any, bool) { return h.store.GetProject(id) })
}

func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	found, err := h.store.DeleteProject(idParam(r))
	respondDeleted(w, "delete project", found, err)
}

// ListSubscriptions handles GET /api/subscriptions with the recurring
// revenue figures and the billings due in the next 30 days.
func (h *Handler) ListSubscriptions(w http.ResponseWriter, _ *http.Request) {
	m := h.store.Metrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"subscriptions": h.store.ListSubscriptions(),
		"recurring":     m.Recurring,
		"upcoming":      m.Upcoming,
	})
}

func (h *Handler) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var in crm.SubscriptionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	s, err := h.store.AddSubscription(in)
	if err != nil {
		writeError(w, "create subscription", err)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *Handler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var patch crm.SubscriptionPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	id := idParam(r)
	found, err := h.store.UpdateSubscription(id, patch)
	h.respondUpdated(w, "update subscription", found, err, func() (any, bool) { return h.subscription(id) })
}

func (h *Handler) ToggleSubscription(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	found, err := h.store.ToggleSubscription(id)
	h.respondUpdated(w, "toggle subscription", found, err, func() (any, bool) { return h.subscription(id) })
}

func (h *Handler) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	found, err := h.store.DeleteSubscription(idParam(r))
	respondDeleted(w, "delete subscription", found, err)
}

func (h *Handler) subscription(id string) (any, bool) {
	for _, s := range h.store.ListSubscriptions() {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}
