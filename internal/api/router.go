package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced. The portal
// page routes stay public: the share token is their only credential.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/portal/{token}", h.GetShare)
	r.Post("/portal/{token}/sign", h.SignShare)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(authEnabled, token))

		r.Route("/contacts", func(r chi.Router) {
			r.Get("/", h.ListContacts)
			r.Post("/", h.CreateContact)
			r.Get("/{id}", h.GetContact)
			r.Patch("/{id}", h.UpdateContact)
			r.Delete("/{id}", h.DeleteContact)
			r.Post("/{id}/move", h.MoveContact)
			r.Post("/{id}/notes", h.AppendContactNote)
			r.Post("/{id}/email-draft", h.DraftEmail)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.ListInvoices)
			r.Post("/", h.CreateInvoice)
			r.Get("/{id}", h.GetInvoice)
			r.Patch("/{id}", h.UpdateInvoice)
			r.Delete("/{id}", h.DeleteInvoice)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)
			r.Patch("/{id}", h.UpdateTask)
			r.Delete("/{id}", h.DeleteTask)
			r.Post("/{id}/toggle", h.ToggleTask)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", h.ListProjects)
			r.Post("/", h.CreateProject)
			r.Get("/{id}", h.GetProject)
			r.Patch("/{id}", h.UpdateProject)
			r.Delete("/{id}", h.DeleteProject)
			r.Post("/{id}/plan", h.PlanProject)
			r.Post("/{id}/tasks/{taskID}/toggle", h.ToggleProjectTask)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", h.ListSubscriptions)
			r.Post("/", h.CreateSubscription)
			r.Patch("/{id}", h.UpdateSubscription)
			r.Delete("/{id}", h.DeleteSubscription)
			r.Post("/{id}/toggle", h.ToggleSubscription)
		})

		r.Get("/chat", h.ChatHistory)
		r.Post("/chat", h.Chat)
		r.Delete("/chat", h.ClearChat)

		r.Get("/appearance", h.GetAppearance)
		r.Patch("/appearance", h.UpdateAppearance)

		r.Get("/ai-settings", h.GetAISettings)
		r.Patch("/ai-settings", h.UpdateAISettings)
		r.Post("/ai-settings/test", h.TestAISettings)

		r.Get("/context", h.Context)
		r.Get("/metrics", h.Metrics)
		r.Get("/insights", h.Insights)
		r.Post("/insights/ai", h.InsightsAdvice)
		r.Get("/tax", h.EstimateTax)

		r.Post("/ai/analyze-note", h.AnalyzeNote)
		r.Post("/ai/analyze-note/apply", h.ApplyNoteAnalysis)
		r.Post("/quotes/from-brief", h.QuoteFromBrief)
		r.Post("/emails/triage", h.TriageEmails)
		r.Post("/emails/triage/apply", h.ApplyEmailTriage)

		r.Get("/import", h.ImportFromQuery)
		r.Post("/import", h.Import)
		r.Post("/import/icebreaker", h.Icebreaker)

		r.Get("/portal", h.ListShares)
		r.Post("/portal", h.CreateShare)
		r.Patch("/portal/{token}/phases/{index}", h.UpdatePhase)

		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
