// Package portal manages client-portal shares: read-only snapshots of one
// invoice that a client opens through a random token and signs.
package portal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/idgen"
	"github.com/starford/crmai/internal/models"
	"github.com/starford/crmai/internal/persist"
	"github.com/starford/crmai/internal/storage"
)

// Kind is the change kind reported for share events.
const Kind = "portal"

// CreateRequest carries what the freelancer fills in when sharing an invoice.
// Phases are derived from the invoice items when empty.
type CreateRequest struct {
	InvoiceID     string                `json:"invoiceId"`
	Phases        []models.Phase        `json:"phases"`
	StripeAcompte string                `json:"stripeAcompte"`
	StripeTotal   string                `json:"stripeTotal"`
	Freelancer    models.FreelancerInfo `json:"freelancer"`
}

// Watcher reports changes to storage keys. storage.FS implements it.
type Watcher interface {
	Watch(ctx context.Context, prefix string, logger *slog.Logger, cb storage.WatchCallback) error
}

// Service creates and updates shares.
type Service struct {
	mu      sync.Mutex
	adapter *persist.Adapter
	store   *crm.Store
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
	change  crm.ChangeFunc
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBaseURL sets the public origin share links are built on.
func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = strings.TrimRight(u, "/") }
}

// WithChangeFunc registers a listener for share changes.
func WithChangeFunc(fn crm.ChangeFunc) Option {
	return func(s *Service) { s.change = fn }
}

// New returns a portal service storing shares through adapter.
func New(adapter *persist.Adapter, store *crm.Store, opts ...Option) *Service {
	s := &Service{adapter: adapter, store: store, logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// URL returns the public link of a share.
func (s *Service) URL(token string) string {
	return s.baseURL + "/portal/" + token
}

// Create snapshots the invoice and its contact into a new share.
func (s *Service) Create(req CreateRequest) (models.PortalShare, error) {
	inv, ok := s.store.GetInvoice(req.InvoiceID)
	if !ok {
		return models.PortalShare{}, fmt.Errorf("portal: invoice %s: %w", req.InvoiceID, apperr.ErrNotFound)
	}
	token, err := idgen.ShareToken()
	if err != nil {
		return models.PortalShare{}, err
	}

	share := models.PortalShare{
		Token:         token,
		Invoice:       inv,
		ClientName:    inv.ContactName,
		Freelancer:    req.Freelancer,
		Phases:        req.Phases,
		StripeAcompte: strings.TrimSpace(req.StripeAcompte),
		StripeTotal:   strings.TrimSpace(req.StripeTotal),
		CreatedAt:     s.now().UTC(),
	}
	if ct, ok := s.store.GetContact(inv.ContactID); ok {
		share.ClientEmail = ct.Email
		if share.ClientName == "" {
			share.ClientName = ct.Name
		}
	}
	if share.Freelancer.Initial == "" {
		share.Freelancer.Initial = initial(share.Freelancer.Name)
	}
	if len(share.Phases) == 0 {
		share.Phases = phasesFromItems(inv.Items)
	}

	if err := s.adapter.PutShare(share); err != nil {
		return models.PortalShare{}, err
	}
	s.notify(crm.ActionCreated, token)
	return share, nil
}

// Get returns the share stored under token.
func (s *Service) Get(token string) (models.PortalShare, error) {
	return s.adapter.GetShare(token)
}

// List returns every stored share, skipping unreadable ones.
func (s *Service) List() ([]models.PortalShare, error) {
	tokens, err := s.adapter.ShareTokens()
	if err != nil {
		return nil, err
	}
	out := make([]models.PortalShare, 0, len(tokens))
	for _, t := range tokens {
		share, err := s.adapter.GetShare(t)
		if err != nil {
			s.logger.Warn("portal: skip share", slog.String("token", t), slog.String("error", err.Error()))
			continue
		}
		out = append(out, share)
	}
	return out, nil
}

// Sign records the client's signature. A share signs once; a second
// attempt returns apperr.ErrConflict.
func (s *Service) Sign(token, signatureImg string) (models.PortalShare, error) {
	if strings.TrimSpace(signatureImg) == "" {
		return models.PortalShare{}, apperr.Invalid("signatureImg", "cannot be blank")
	}
	return s.update(token, func(share *models.PortalShare) error {
		if share.Signed {
			return fmt.Errorf("portal: share %s already signed: %w", token, apperr.ErrConflict)
		}
		at := s.now().UTC()
		share.Signed = true
		share.SignatureImg = signatureImg
		share.SignedAt = &at
		return nil
	})
}

// UpdatePhase sets the status of the phase at index.
func (s *Service) UpdatePhase(token string, index int, status models.PhaseStatus) (models.PortalShare, error) {
	if !status.Valid() {
		return models.PortalShare{}, apperr.Invalid("status", "must be a valid value")
	}
	return s.update(token, func(share *models.PortalShare) error {
		if index < 0 || index >= len(share.Phases) {
			return apperr.Invalid("index", "out of range")
		}
		share.Phases[index].Status = status
		return nil
	})
}

func (s *Service) update(token string, fn func(*models.PortalShare) error) (models.PortalShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	share, err := s.adapter.GetShare(token)
	if err != nil {
		return models.PortalShare{}, err
	}
	if err := fn(&share); err != nil {
		return models.PortalShare{}, err
	}
	if err := s.adapter.PutShare(share); err != nil {
		return models.PortalShare{}, err
	}
	s.notify(crm.ActionUpdated, token)
	return share, nil
}

// Watch republishes share changes made by another process (a portal
// frontend writing to the same directory) until ctx is cancelled.
func (s *Service) Watch(ctx context.Context, w Watcher) error {
	return w.Watch(ctx, persist.PortalPrefix, s.logger, func(kind, key string) {
		action := crm.ActionUpdated
		if kind == "deleted" {
			action = crm.ActionDeleted
		}
		s.notify(action, strings.TrimPrefix(key, persist.PortalPrefix))
	})
}

func (s *Service) notify(action, token string) {
	if s.change != nil {
		s.change(Kind, action, token)
	}
}

// phasesFromItems turns each invoice line into a phase: the first one is in
// progress, the rest are to do, and the duration is the line quantity.
func phasesFromItems(items []models.LineItem) []models.Phase {
	phases := make([]models.Phase, 0, len(items))
	for i, it := range items {
		status := models.PhaseTodo
		if i == 0 {
			status = models.PhaseInProgress
		}
		label := strings.TrimSpace(it.Description)
		if label == "" {
			label = fmt.Sprintf("Phase %d", i+1)
		}
		phases = append(phases, models.Phase{Label: label, Days: it.Quantity, Status: status})
	}
	return phases
}

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}
