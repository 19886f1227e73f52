package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/copilot"
	"github.com/starford/crmai/internal/crm"
)

// yearParam reads ?year=, defaulting to the current year.
func yearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return time.Now().Year(), nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Invalid("year", "must be a number")
	}
	return y, nil
}

// Insights handles GET /api/insights?year=YYYY.
func (h *Handler) Insights(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		writeError(w, "insights", err)
		return
	}
	writeJSON(w, http.StatusOK, h.store.Insights(year))
}

// InsightsAdvice handles POST /api/insights/ai.
//
//	@Summary		Recommendations from the sales analytics
//	@Tags			assistant
//	@Produce		json
//	@Param			year	query		int	false	"Year of the monthly revenue"
//	@Success		200		{object}	TextResponse
//	@Failure		502		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/insights/ai [post]
func (h *Handler) InsightsAdvice(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		writeError(w, "insights advice", err)
		return
	}
	text, err := h.copilot.Insights(r.Context(), year)
	if err != nil {
		writeError(w, "insights advice", err)
		return
	}
	writeJSON(w, http.StatusOK, TextResponse{Text: text})
}

// EstimateTax handles GET /api/tax?year=&regime=&levy=&otherIncome=&parts=.
func (h *Handler) EstimateTax(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		writeError(w, "estimate tax", err)
		return
	}
	q := r.URL.Query()
	in := crm.TaxInput{
		Year:         year,
		Regime:       crm.Regime(q.Get("regime")),
		FlatRateLevy: q.Get("levy") == "true",
	}
	if in.Regime == "" {
		in.Regime = crm.RegimeMicroBNC
	}
	for field, dst := range map[string]*float64{"otherIncome": &in.OtherIncome, "parts": &in.Parts} {
		if raw := q.Get(field); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				writeError(w, "estimate tax", apperr.Invalid(field, "must be a number"))
				return
			}
			*dst = v
		}
	}
	est, err := h.store.EstimateTax(in)
	if err != nil {
		writeError(w, "estimate tax", err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// QuoteFromBrief handles POST /api/quotes/from-brief. The quote is stored
// as a draft.
//
//	@Summary		Cost a client brief into a draft quote
//	@Tags			assistant
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BriefRequest	true	"Brief and day rate"
//	@Success		201		{object}	copilot.Quote
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/quotes/from-brief [post]
func (h *Handler) QuoteFromBrief(w http.ResponseWriter, r *http.Request) {
	var req BriefRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q, err := h.copilot.QuoteFromBrief(r.Context(), req.Brief, req.DayRate, req.ContactID)
	if err != nil {
		writeError(w, "quote from brief", err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// TriageEmails handles POST /api/emails/triage.
func (h *Handler) TriageEmails(w http.ResponseWriter, r *http.Request) {
	var req TriageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	out, err := h.copilot.TriageEmails(r.Context(), req.Emails)
	if err != nil {
		writeError(w, "triage emails", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"triage": out})
}

// ApplyEmailTriage handles POST /api/emails/triage/apply. 404 when no
// contact carries the triage's contact name.
func (h *Handler) ApplyEmailTriage(w http.ResponseWriter, r *http.Request) {
	var t copilot.EmailTriage
	if !decodeJSON(w, r, &t) {
		return
	}
	ok, err := h.copilot.ApplyEmailTriage(t)
	if err != nil {
		writeError(w, "apply email triage", err)
		return
	}
	if !ok {
		notFound(w)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
