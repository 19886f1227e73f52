// Package crm is the single owner of the CRM collections. Every mutation is
// validated at the boundary, applied atomically, written through to the
// persistence adapter and announced to an optional change listener.
package crm

import (
	"log/slog"
	"sync"
	"time"

	"github.com/starford/crmai/internal/models"
	"github.com/starford/crmai/internal/persist"
)

// Entity kinds reported to a ChangeFunc.
const (
	KindContact      = "contact"
	KindInvoice      = "invoice"
	KindTask         = "task"
	KindProject      = "project"
	KindSubscription = "subscription"
	KindChat         = "chat"
	KindAppearance   = "appearance"
	KindAISettings   = "ai_settings"
)

// Actions reported to a ChangeFunc.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeFunc is called after each successful mutation, outside the store lock.
type ChangeFunc func(kind, action, id string)

// Store holds the live CRM state.
type Store struct {
	mu      sync.RWMutex
	state   persist.State
	adapter *persist.Adapter
	logger  *slog.Logger
	now     func() time.Time
	change  ChangeFunc
	saveErr error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithChangeFunc registers the mutation listener.
func WithChangeFunc(fn ChangeFunc) Option {
	return func(s *Store) { s.change = fn }
}

// Open loads the state through adapter. Unreadable blobs are logged and
// replaced by defaults, so Open always returns a usable store.
func Open(adapter *persist.Adapter, opts ...Option) *Store {
	s := newStore(opts)
	s.adapter = adapter
	state, err := adapter.Load()
	if err != nil {
		s.logger.Warn("crm: load fell back to defaults", slog.String("error", err.Error()))
	}
	s.state = state
	return s
}

// FromState builds a store over an existing state without persistence.
func FromState(state persist.State, opts ...Option) *Store {
	s := newStore(opts)
	s.state = state
	return s
}

func newStore(opts []Option) *Store {
	s := &Store{logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetChangeFunc replaces the mutation listener.
func (s *Store) SetChangeFunc(fn ChangeFunc) {
	s.mu.Lock()
	s.change = fn
	s.mu.Unlock()
}

// SaveError returns the last persistence failure, or nil once a save succeeds.
func (s *Store) SaveError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saveErr
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() persist.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	st.Contacts = cloneAll(st.Contacts, models.Contact.Clone)
	st.Invoices = cloneAll(st.Invoices, models.Invoice.Clone)
	st.Tasks = cloneAll(st.Tasks, nil)
	st.Projects = cloneAll(st.Projects, models.Project.Clone)
	st.ChatHistory = cloneAll(st.ChatHistory, nil)
	st.Subscriptions = cloneAll(st.Subscriptions, nil)
	return st
}

// mutate runs fn under the write lock. When fn reports a change, the state is
// written through and the listener is notified with the returned id.
func (s *Store) mutate(kind, action string, fn func() (id string, changed bool, err error)) (bool, error) {
	s.mu.Lock()
	id, changed, err := fn()
	if err != nil || !changed {
		s.mu.Unlock()
		return false, err
	}
	if kind == KindAISettings {
		s.recordSave(s.saveAISettingsLocked())
	} else {
		s.recordSave(s.saveLocked())
	}
	listener := s.change
	s.mu.Unlock()

	if listener != nil {
		listener(kind, action, id)
	}
	return true, nil
}

func (s *Store) saveLocked() error {
	if s.adapter == nil {
		return nil
	}
	return s.adapter.Save(s.state)
}

func (s *Store) saveAISettingsLocked() error {
	if s.adapter == nil {
		return nil
	}
	return s.adapter.SaveAISettings(s.state.AISettings)
}

// recordSave keeps the live state authoritative: a failed write is logged and
// remembered but never undoes the mutation.
func (s *Store) recordSave(err error) {
	if err != nil {
		s.logger.Warn("crm: persist failed", slog.String("error", err.Error()))
	}
	s.saveErr = err
}

func (s *Store) today() models.Date {
	return models.DateOf(s.now())
}

func cloneAll[T any](in []T, clone func(T) T) []T {
	out := make([]T, len(in))
	for i, v := range in {
		if clone != nil {
			v = clone(v)
		}
		out[i] = v
	}
	return out
}

// indexOf returns the position of the element whose id matches, or -1.
func indexOf[T any](list []T, id string, idOf func(*T) string) int {
	for i := range list {
		if idOf(&list[i]) == id {
			return i
		}
	}
	return -1
}

// deleteAt removes the element whose id matches and reports whether one did.
func deleteAt[T any](list *[]T, id string, idOf func(*T) string) bool {
	i := indexOf(*list, id, idOf)
	if i < 0 {
		return false
	}
	*list = append((*list)[:i:i], (*list)[i+1:]...)
	return true
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func setSliceIf[T any](dst *[]T, src *[]T) {
	if src != nil {
		*dst = cloneAll(*src, nil)
	}
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

