// Package importer turns the LinkedIn scraper's handoff payload into a new
// contact.
package importer

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/starford/crmai/internal/apperr"
	"github.com/starford/crmai/internal/crm"
	"github.com/starford/crmai/internal/models"
)

// QueryParam is the URL parameter carrying the JSON payload.
const QueryParam = "import"

// Tag marks contacts created from a LinkedIn profile.
const Tag = "LinkedIn"

// Profile is the payload handed over by the browser extension.
type Profile struct {
	Name             string `json:"name"`
	Company          string `json:"company"`
	Email            string `json:"email"`
	Headline         string `json:"headline"`
	Location         string `json:"location"`
	LinkedinURL      string `json:"linkedinUrl"`
	LinkedinUsername string `json:"linkedinUsername"`
	AvatarURL        string `json:"avatarUrl"`
	Connections      string `json:"connections"`
	About            string `json:"about"`
	Stage            string `json:"stage"`
	Notes            string `json:"notes"`
	Icebreaker       string `json:"icebreaker"`
	Source           string `json:"source"`
}

// Decode parses a raw JSON payload. The name is the only required field.
func Decode(raw []byte) (Profile, error) {
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, apperr.Invalid("import", fmt.Sprintf("not a JSON profile: %v", err))
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Profile{}, apperr.Invalid("name", "cannot be blank")
	}
	return p, nil
}

// FromQuery reads and decodes the payload of an import URL.
func FromQuery(q url.Values) (Profile, error) {
	raw := q.Get(QueryParam)
	if raw == "" {
		return Profile{}, apperr.Invalid(QueryParam, "missing parameter")
	}
	return Decode([]byte(raw))
}

// ContactInput maps the profile onto the store's contact fields. Notes
// default to the headline; the icebreaker and profile URL are appended so
// the context digest can see them.
func (p Profile) ContactInput() crm.ContactInput {
	stage := models.Stage(p.Stage)
	if !stage.Valid() {
		stage = models.StageToContact
	}

	notes := strings.TrimSpace(p.Notes)
	if notes == "" {
		notes = strings.TrimSpace(p.Headline)
	}
	var extra []string
	if p.Location != "" {
		extra = append(extra, "Localisation : "+p.Location)
	}
	if p.Icebreaker != "" {
		extra = append(extra, "Accroche : "+strings.TrimSpace(p.Icebreaker))
	}
	if p.LinkedinURL != "" {
		extra = append(extra, "Profil : "+p.LinkedinURL)
	}
	if len(extra) > 0 {
		if notes != "" {
			notes += "\n\n"
		}
		notes += strings.Join(extra, "\n")
	}

	return crm.ContactInput{
		Name:    p.Name,
		Company: p.Company,
		Email:   strings.TrimSpace(p.Email),
		Stage:   stage,
		Tags:    []string{Tag},
		Notes:   notes,
	}
}

// Import decodes raw and adds the contact to store.
func Import(store *crm.Store, raw []byte) (models.Contact, error) {
	p, err := Decode(raw)
	if err != nil {
		return models.Contact{}, err
	}
	return store.AddContact(p.ContactInput())
}
