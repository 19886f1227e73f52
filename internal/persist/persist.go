// Package persist round-trips the CRM state through a storage.Provider.
//
// The state is split across independent keys: the bulk entity blob, the AI
// settings, the subscriptions and one blob per client-portal share. A
// corrupted key never affects the others.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/checksum"
	"github.com/starford/crmai/internal/models"
	"github.com/starford/crmai/internal/storage"
)

// Storage keys.
const (
	KeyData          = "crm_ai_data"
	KeyAISettings    = "crm_ai_settings_v2"
	KeySubscriptions = "crm_mrr"
	PortalPrefix     = "portal_"
)

// ErrCorrupt reports a blob that could not be decoded and was replaced by defaults.
var ErrCorrupt = errors.New("persist: corrupt blob")

// State is the whole CRM dataset. Only the tagged fields belong to the bulk
// blob; subscriptions and AI settings live under their own keys.
type State struct {
	Contacts      []models.Contact      `json:"contacts"`
	Invoices      []models.Invoice      `json:"invoices"`
	Tasks         []models.Task         `json:"tasks"`
	Projects      []models.Project      `json:"projects"`
	ChatHistory   []models.ChatMessage  `json:"chatHistory"`
	Appearance    models.Appearance     `json:"appearance"`
	Subscriptions []models.Subscription `json:"-"`
	AISettings    models.AISettings     `json:"-"`
}

// Adapter reads and writes State through a storage.Provider.
type Adapter struct {
	store  storage.Provider
	logger *slog.Logger
	demo   bool
	sums   *checksum.Tracker
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithDemoSeed makes the demo dataset the load defaults.
func WithDemoSeed(demo bool) Option {
	return func(a *Adapter) { a.demo = demo }
}

// WithLogger sets the logger used for discarded blobs.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) { a.logger = l }
}

// New creates an adapter over store.
func New(store storage.Provider, opts ...Option) *Adapter {
	a := &Adapter{store: store, logger: slog.Default(), sums: checksum.NewTracker()}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Load reads every key and merges what it finds over the defaults. The
// returned state is always usable; err is non-nil (matching ErrCorrupt) when
// some blob was unreadable and defaults were kept in its place.
func (a *Adapter) Load() (State, error) {
	s := Defaults(a.demo)
	var errs []error

	if raw, ok, err := a.read(KeyData); err != nil {
		errs = append(errs, err)
	} else if ok {
		if err := mergeBulk(&s, raw); err != nil {
			a.logger.Warn("persist: bulk blob discarded", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if raw, ok, err := a.read(KeySubscriptions); err != nil {
		errs = append(errs, err)
	} else if ok {
		var subs []models.Subscription
		if err := json.Unmarshal(raw, &subs); err != nil {
			a.logger.Warn("persist: subscriptions blob discarded", slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrCorrupt, KeySubscriptions, err))
		} else if subs != nil {
			s.Subscriptions = subs
		}
	}

	settings, err := a.LoadAISettings()
	if err != nil {
		errs = append(errs, err)
	}
	s.AISettings = settings

	return s, errors.Join(errs...)
}

// LoadAISettings reads the AI settings key alone, merged over the defaults.
func (a *Adapter) LoadAISettings() (models.AISettings, error) {
	settings := DefaultAISettings()
	raw, ok, err := a.read(KeyAISettings)
	if err != nil || !ok {
		return settings, err
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		a.logger.Warn("persist: ai settings blob discarded", slog.String("error", err.Error()))
		return DefaultAISettings(), fmt.Errorf("%w: %s: %v", ErrCorrupt, KeyAISettings, err)
	}
	return settings, nil
}

// read returns the blob under key; ok is false when the key does not exist.
func (a *Adapter) read(key string) ([]byte, bool, error) {
	raw, err := a.store.Get(key)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("persist: read %s: %w", key, err)
	}
	return raw, true, nil
}

// mergeBulk overlays each top-level field present in raw onto s. Fields that
// are absent or null keep their default. Any other field, including a stray
// aiSettings, is ignored.
func mergeBulk(s *State, raw []byte) error {
	var in struct {
		Contacts    *[]models.Contact     `json:"contacts"`
		Invoices    *[]models.Invoice     `json:"invoices"`
		Tasks       *[]models.Task        `json:"tasks"`
		Projects    *[]models.Project     `json:"projects"`
		ChatHistory *[]models.ChatMessage `json:"chatHistory"`
		Appearance  json.RawMessage       `json:"appearance"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, KeyData, err)
	}
	appearance := s.Appearance
	if len(in.Appearance) > 0 && string(in.Appearance) != "null" {
		if err := json.Unmarshal(in.Appearance, &appearance); err != nil {
			return fmt.Errorf("%w: %s.appearance: %v", ErrCorrupt, KeyData, err)
		}
	}

	overlay(&s.Contacts, in.Contacts)
	overlay(&s.Invoices, in.Invoices)
	overlay(&s.Tasks, in.Tasks)
	overlay(&s.Projects, in.Projects)
	overlay(&s.ChatHistory, in.ChatHistory)
	s.Appearance = appearance
	return nil
}

func overlay[T any](dst *[]T, src *[]T) {
	if src == nil || *src == nil {
		return
	}
	*dst = *src
}

// Save writes the bulk blob and the subscriptions. AI settings are never part
// of it. Keys whose serialized content did not change are not rewritten.
func (a *Adapter) Save(s State) error {
	bulk, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("persist: encode state: %w", err)
	}
	subs := s.Subscriptions
	if subs == nil {
		subs = []models.Subscription{}
	}
	subsRaw, err := json.Marshal(subs)
	if err != nil {
		return fmt.Errorf("persist: encode subscriptions: %w", err)
	}
	return errors.Join(a.write(KeyData, bulk), a.write(KeySubscriptions, subsRaw))
}

// SaveAISettings writes the AI settings to their own key.
func (a *Adapter) SaveAISettings(settings models.AISettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("persist: encode ai settings: %w", err)
	}
	return a.write(KeyAISettings, raw)
}

func (a *Adapter) write(key string, raw []byte) error {
	same, sum := a.sums.Unchanged(key, raw)
	if same {
		return nil
	}
	if err := a.store.Put(key, raw); err != nil {
		a.sums.Forget(key)
		return fmt.Errorf("persist: write %s: %w", key, err)
	}
	a.sums.Record(key, sum)
	return nil
}
