package models

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var tokenRe = regexp.MustCompile(`^[0-9a-f]{32,}$`)

// PortalShare is the client-facing view of one invoice, reachable through
// its random token.
type PortalShare struct {
	Token         string         `json:"token"`
	Invoice       Invoice        `json:"invoice"`
	ClientName    string         `json:"clientName"`
	ClientEmail   string         `json:"clientEmail"`
	Freelancer    FreelancerInfo `json:"freelancer"`
	Phases        []Phase        `json:"phases"`
	StripeAcompte string         `json:"stripeAcompte"`
	StripeTotal   string         `json:"stripeTotal"`
	CreatedAt     time.Time      `json:"createdAt"`
	Signed        bool           `json:"signed"`
	SignatureImg  string         `json:"signatureImg,omitempty"`
	SignedAt      *time.Time     `json:"signedAt,omitempty"`
}

// FreelancerInfo identifies the sender on the portal page.
type FreelancerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Initial string `json:"initial"`
}

// Phase is one delivery step shown on the portal board.
type Phase struct {
	Label  string      `json:"label"`
	Days   float64     `json:"days"`
	Status PhaseStatus `json:"status"`
}

// Validate implements validation.Validatable.
func (p Phase) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Label, validation.Required),
		validation.Field(&p.Status, isEnum),
	)
}

// Validate checks the share fields.
func (s *PortalShare) Validate() error {
	return AsValidation(validation.ValidateStruct(s,
		validation.Field(&s.Token, validation.Required, validation.Match(tokenRe)),
		validation.Field(&s.Phases),
	))
}
