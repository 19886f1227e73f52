package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/crmai/internal/importer"
	"github.com/starford/crmai/internal/portal"
)

func tokenParam(r *http.Request) string {
	return chi.URLParam(r, "token")
}

// CreateShare handles POST /api/portal.
//
//	@Summary		Share an invoice on the client portal
//	@Tags			portal
//	@Accept			json
//	@Produce		json
//	@Param			body	body		portal.CreateRequest	true	"Share settings"
//	@Success		201		{object}	ShareResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/portal [post]
func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
	var req portal.CreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	share, err := h.portal.Create(req)
	if err != nil {
		writeError(w, "create share", err)
		return
	}
	writeJSON(w, http.StatusCreated, ShareResponse{Share: share, URL: h.portal.URL(share.Token)})
}

func (h *Handler) ListShares(w http.ResponseWriter, _ *http.Request) {
	shares, err := h.portal.List()
	if err != nil {
		writeError(w, "list shares", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shares": shares})
}

// GetShare handles GET /api/portal/{token}. Public.
func (h *Handler) GetShare(w http.ResponseWriter, r *http.Request) {
	share, err := h.portal.Get(tokenParam(r))
	if err != nil {
		writeError(w, "get share", err)
		return
	}
	writeJSON(w, http.StatusOK, share)
}

// SignShare handles POST /api/portal/{token}/sign. Public; a share can be
// signed once.
func (h *Handler) SignShare(w http.ResponseWriter, r *http.Request) {
	var req SignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	share, err := h.portal.Sign(tokenParam(r), req.SignatureImg)
	if err != nil {
		writeError(w, "sign share", err)
		return
	}
	writeJSON(w, http.StatusOK, share)
}

func (h *Handler) UpdatePhase(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("index must be an integer"))
		return
	}
	var req PhaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	share, err := h.portal.UpdatePhase(tokenParam(r), index, req.Status)
	if err != nil {
		writeError(w, "update phase", err)
		return
	}
	writeJSON(w, http.StatusOK, share)
}

// ImportFromQuery handles GET /api/import?import=<json>, the link the
// LinkedIn extension opens.
func (h *Handler) ImportFromQuery(w http.ResponseWriter, r *http.Request) {
	p, err := importer.FromQuery(r.URL.Query())
	if err != nil {
		writeError(w, "import", err)
		return
	}
	h.createImported(w, p)
}

// Import handles POST /api/import with the profile as body.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	c, err := importer.Import(h.store, raw)
	if err != nil {
		writeError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) createImported(w http.ResponseWriter, p importer.Profile) {
	c, err := h.store.AddContact(p.ContactInput())
	if err != nil {
		writeError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Icebreaker handles POST /api/import/icebreaker: an opening message for a
// profile, without creating the contact.
func (h *Handler) Icebreaker(w http.ResponseWriter, r *http.Request) {
	var p importer.Profile
	if !decodeJSON(w, r, &p) {
		return
	}
	msg, err := h.copilot.Icebreaker(r.Context(), p)
	if err != nil {
		writeError(w, "icebreaker", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"icebreaker": msg})
}
