package ai

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/starford/crmai/internal/models"
)

// Error kinds. Match them with errors.Is.
var (
	ErrUnknownProvider   = errors.New("unknown_provider")
	ErrMissingCredential = errors.New("missing_credential")
	ErrAuth              = errors.New("auth")
	ErrRateLimit         = errors.New("rate_limit")
	ErrInvalidRequest    = errors.New("invalid_request")
	ErrPermission        = errors.New("permission")
	ErrProvider          = errors.New("provider")
	ErrEmptyResponse     = errors.New("empty_response")
	ErrMalformedOutput   = errors.New("malformed_output")
)

// Error is a failed AI call. Kind is one of the Err* values above; Cause,
// when set, is the transport or context error behind it.
type Error struct {
	Kind     error
	Provider models.Provider
	Status   int
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	s := fmt.Sprintf("ai: %s: %s", e.Provider, e.Kind)
	if e.Status != 0 {
		s += fmt.Sprintf(" (%d)", e.Status)
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// KindOf returns the taxonomy tag of err ("auth", "rate_limit", ...), or ""
// when err is not an AI error.
func KindOf(err error) string {
	for _, k := range []error{
		ErrUnknownProvider, ErrMissingCredential, ErrAuth, ErrRateLimit,
		ErrInvalidRequest, ErrPermission, ErrEmptyResponse, ErrMalformedOutput, ErrProvider,
	} {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return ""
}

// UserMessage is the French notice shown to the user for err.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		if errors.Is(err, ErrMalformedOutput) {
			return "Réponse IA invalide. Réessayez."
		}
		return err.Error()
	}
	name := "Gemini"
	if e.Provider == models.ProviderOpenAI {
		name = "OpenAI"
	}
	switch e.Kind {
	case ErrUnknownProvider:
		return fmt.Sprintf("Provider IA inconnu: %q", e.Provider)
	case ErrMissingCredential:
		return fmt.Sprintf("❌ Clé API %s manquante. Configurez-la dans les Paramètres.", name)
	case ErrAuth:
		return fmt.Sprintf("❌ Clé API invalide (401). Vérifiez votre clé %s dans les Paramètres.", name)
	case ErrRateLimit:
		if e.Provider == models.ProviderOpenAI {
			return "⚠️ Quota ou limite de taux dépassé (429). Vérifiez votre solde sur platform.openai.com/usage"
		}
		return "⚠️ Quota ou limite de taux dépassé (429). Votre quota gratuit Google AI est épuisé. Allez sur aistudio.google.com pour vérifier."
	case ErrInvalidRequest:
		return fmt.Sprintf("❌ Requête invalide (400): %s", e.Message)
	case ErrPermission:
		return "❌ Accès refusé (403). La clé API n'a pas les permissions nécessaires."
	case ErrEmptyResponse:
		return "Réponse vide reçue."
	case ErrMalformedOutput:
		return "Réponse IA invalide. Réessayez."
	}
	if e.Status != 0 {
		return fmt.Sprintf("❌ Erreur %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("❌ Erreur: %s", e.Message)
}

// statusError maps a non-2xx response to its taxonomy kind.
func statusError(p models.Provider, status int, msg string) *Error {
	kind := ErrProvider
	switch status {
	case http.StatusUnauthorized:
		kind = ErrAuth
	case http.StatusTooManyRequests:
		kind = ErrRateLimit
	case http.StatusBadRequest:
		kind = ErrInvalidRequest
	case http.StatusForbidden:
		kind = ErrPermission
	}
	return &Error{Kind: kind, Provider: p, Status: status, Message: msg}
}
