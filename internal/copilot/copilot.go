// Package copilot holds the AI features of the CRM: each one builds a prompt
// from the store, calls the configured provider and feeds the answer back
// through the store's mutators.
package copilot

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/crmai/internal/ai"
	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/models"
)

// Caller is the AI dispatch the copilot depends on.
type Caller interface {
	Call(ctx context.Context, settings models.AISettings, messages []ai.Message, system string) (string, error)
}

// HistoryWindow is how many past chat messages accompany a new question.
const HistoryWindow = 10

// Copilot runs AI features against a store.
type Copilot struct {
	store  *crm.Store
	ai     Caller
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Copilot.
type Option func(*Copilot)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Copilot) { c.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Copilot) { c.now = now }
}

// New returns a copilot over store using caller for AI requests.
func New(store *crm.Store, caller Caller, opts ...Option) *Copilot {
	c := &Copilot{store: store, ai: caller, logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Copilot) ask(ctx context.Context, prompt, system string) (string, error) {
	return c.ai.Call(ctx, c.store.AISettings(), []ai.Message{{Role: ai.RoleUser, Content: prompt}}, system)
}

// askJSON asks for a JSON answer and decodes it into v.
func (c *Copilot) askJSON(ctx context.Context, prompt, system string, v any) error {
	raw, err := c.ask(ctx, prompt, system)
	if err != nil {
		return err
	}
	if err := ai.ParseStructured(raw, v); err != nil {
		c.logger.Warn("copilot: unstructured answer", slog.String("error", err.Error()))
		return err
	}
	return nil
}
