package models

import "strings"

// Stage is the pipeline position of a contact.
type Stage string

const (
	StageToContact    Stage = "À contacter"
	StageInDiscussion Stage = "En discussion"
	StageQuoteSent    Stage = "Devis envoyé"
	StageWon          Stage = "Gagné"
	StageLost         Stage = "Perdu"
)

// Stages lists the pipeline in board order.
var Stages = []Stage{StageToContact, StageInDiscussion, StageQuoteSent, StageWon, StageLost}

func (s Stage) Valid() bool { return contains(Stages, s) }

// InvoiceType distinguishes quotes from invoices.
type InvoiceType string

const (
	InvoiceTypeQuote   InvoiceType = "Devis"
	InvoiceTypeInvoice InvoiceType = "Facture"
)

func (t InvoiceType) Valid() bool { return t == InvoiceTypeQuote || t == InvoiceTypeInvoice }

// IDPrefix is the leading letter of ids issued for this type.
func (t InvoiceType) IDPrefix() string {
	if t == InvoiceTypeQuote {
		return "D"
	}
	return "F"
}

// InvoiceStatus is the payment state of an invoice or quote.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "Brouillon"
	InvoiceStatusPending InvoiceStatus = "En attente"
	InvoiceStatusPaid    InvoiceStatus = "Payée"
	InvoiceStatusOverdue InvoiceStatus = "En retard"
)

var InvoiceStatuses = []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue}

func (s InvoiceStatus) Valid() bool { return contains(InvoiceStatuses, s) }

// Priority ranks tasks.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool { return p == PriorityHigh || p == PriorityMedium || p == PriorityLow }

// ParsePriority accepts the canonical values plus the French labels the
// assistant tends to answer with. Unknown input maps to medium.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "haute", "urgent", "élevée":
		return PriorityHigh
	case "low", "faible", "basse":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// ProjectStatus is the delivery state of a project.
type ProjectStatus string

const (
	ProjectStatusInProgress ProjectStatus = "En cours"
	ProjectStatusPlanned    ProjectStatus = "Planifié"
	ProjectStatusDone       ProjectStatus = "Terminé"
	ProjectStatusPaused     ProjectStatus = "En pause"
)

var ProjectStatuses = []ProjectStatus{ProjectStatusInProgress, ProjectStatusPlanned, ProjectStatusDone, ProjectStatusPaused}

func (s ProjectStatus) Valid() bool { return contains(ProjectStatuses, s) }

// Frequency is the billing period of a subscription.
type Frequency string

const (
	FrequencyMonthly   Frequency = "Mensuel"
	FrequencyQuarterly Frequency = "Trimestriel"
	FrequencyYearly    Frequency = "Annuel"
)

func (f Frequency) Valid() bool {
	return f == FrequencyMonthly || f == FrequencyQuarterly || f == FrequencyYearly
}

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "Actif"
	SubscriptionPaused    SubscriptionStatus = "En pause"
	SubscriptionCancelled SubscriptionStatus = "Annulé"
)

func (s SubscriptionStatus) Valid() bool {
	return s == SubscriptionActive || s == SubscriptionPaused || s == SubscriptionCancelled
}

// Theme and Font are presentation choices.
type (
	Theme string
	Font  string
)

const (
	ThemeDark         Theme = "dark"
	ThemeLight        Theme = "light"
	ThemeMidnight     Theme = "midnight"
	ThemeHighContrast Theme = "high-contrast"

	FontInter    Font = "inter"
	FontRoboto   Font = "roboto"
	FontPlayfair Font = "playfair"
	FontFiraCode Font = "firacode"
)

func (t Theme) Valid() bool {
	return contains([]Theme{ThemeDark, ThemeLight, ThemeMidnight, ThemeHighContrast}, t)
}

func (f Font) Valid() bool {
	return contains([]Font{FontInter, FontRoboto, FontPlayfair, FontFiraCode}, f)
}

// Provider names an LLM vendor.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

func (p Provider) Valid() bool { return p == ProviderOpenAI || p == ProviderGemini }

// ChatRole is the author of a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

func (r ChatRole) Valid() bool { return r == RoleUser || r == RoleAssistant }

// Direction tells whether an email was sent or received.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

func (d Direction) Valid() bool { return d == DirectionSent || d == DirectionReceived }

// PhaseStatus is the progress column of a client-portal phase.
type PhaseStatus string

const (
	PhaseTodo       PhaseStatus = "À faire"
	PhaseInProgress PhaseStatus = "En cours"
	PhaseDone       PhaseStatus = "Terminé"
)

func (s PhaseStatus) Valid() bool { return s == PhaseTodo || s == PhaseInProgress || s == PhaseDone }

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
