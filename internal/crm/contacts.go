package crm

import (
	"strings"

	"github.com/starford/crmai/internal/idgen"
	"github.com/starford/crmai/internal/models"
)

// ContactInput carries the caller-supplied fields of a new contact. Id and
// createdAt are always assigned by the store.
type ContactInput struct {
	Name        string         `json:"name"`
	Company     string         `json:"company"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	Stage       models.Stage   `json:"stage"`
	Revenue     float64        `json:"revenue"`
	Tags        []string       `json:"tags"`
	Notes       string         `json:"notes"`
	LastContact models.Date    `json:"lastContact"`
	Emails      []models.Email `json:"emails"`
	Todos       []string       `json:"todos"`
}

// ContactPatch lists the fields to overwrite; nil means unchanged.
type ContactPatch struct {
	Name        *string         `json:"name,omitempty"`
	Company     *string         `json:"company,omitempty"`
	Email       *string         `json:"email,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	Stage       *models.Stage   `json:"stage,omitempty"`
	Revenue     *float64        `json:"revenue,omitempty"`
	Tags        *[]string       `json:"tags,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	LastContact *models.Date    `json:"lastContact,omitempty"`
	Emails      *[]models.Email `json:"emails,omitempty"`
	Todos       *[]string       `json:"todos,omitempty"`
}

func (p ContactPatch) apply(c *models.Contact) {
	setIf(&c.Name, p.Name)
	setIf(&c.Company, p.Company)
	setIf(&c.Email, p.Email)
	setIf(&c.Phone, p.Phone)
	setIf(&c.Stage, p.Stage)
	setIf(&c.Revenue, p.Revenue)
	setSliceIf(&c.Tags, p.Tags)
	setIf(&c.Notes, p.Notes)
	setIf(&c.LastContact, p.LastContact)
	setSliceIf(&c.Emails, p.Emails)
	setSliceIf(&c.Todos, p.Todos)
}

func contactID(c *models.Contact) string { return c.ID }

// AddContact appends a new contact. An empty stage starts the contact at the
// head of the pipeline.
func (s *Store) AddContact(in ContactInput) (models.Contact, error) {
	c := models.Contact{
		ID:          idgen.NewAt(idgen.KindContact, s.now()),
		Name:        strings.TrimSpace(in.Name),
		Company:     in.Company,
		Email:       strings.TrimSpace(in.Email),
		Phone:       in.Phone,
		Stage:       orDefault(in.Stage, models.StageToContact),
		Revenue:     in.Revenue,
		Tags:        cloneAll(in.Tags, nil),
		Notes:       in.Notes,
		CreatedAt:   s.today(),
		LastContact: in.LastContact,
		Emails:      cloneAll(in.Emails, nil),
		Todos:       cloneAll(in.Todos, nil),
	}
	if err := c.Validate(); err != nil {
		return models.Contact{}, err
	}
	_, err := s.mutate(KindContact, ActionCreated, func() (string, bool, error) {
		s.state.Contacts = append(s.state.Contacts, c)
		return c.ID, true, nil
	})
	return c.Clone(), err
}

// UpdateContact shallow-merges patch into the contact. An unknown id is a
// no-op reported as found=false; an invalid result leaves the contact as it was.
func (s *Store) UpdateContact(id string, patch ContactPatch) (bool, error) {
	return s.mutate(KindContact, ActionUpdated, func() (string, bool, error) {
		i := indexOf(s.state.Contacts, id, contactID)
		if i < 0 {
			return id, false, nil
		}
		next := s.state.Contacts[i].Clone()
		patch.apply(&next)
		if err := next.Validate(); err != nil {
			return id, false, err
		}
		s.state.Contacts[i] = next
		return id, true, nil
	})
}

// MoveContact changes the pipeline stage of a contact.
func (s *Store) MoveContact(id string, stage models.Stage) (bool, error) {
	return s.UpdateContact(id, ContactPatch{Stage: &stage})
}

// AppendContactNote adds a line to the contact's notes, which are append-only
// by convention.
func (s *Store) AppendContactNote(id, line string) (bool, error) {
	return s.mutate(KindContact, ActionUpdated, func() (string, bool, error) {
		i := indexOf(s.state.Contacts, id, contactID)
		if i < 0 {
			return id, false, nil
		}
		c := &s.state.Contacts[i]
		if c.Notes == "" {
			c.Notes = line
		} else {
			c.Notes += "\n\n" + line
		}
		return id, true, nil
	})
}

// AddContactTodos appends todo items to a contact. With no todos a known
// contact still reports found, without a write.
func (s *Store) AddContactTodos(id string, todos ...string) (bool, error) {
	var found bool
	changed, err := s.mutate(KindContact, ActionUpdated, func() (string, bool, error) {
		i := indexOf(s.state.Contacts, id, contactID)
		if i < 0 {
			return id, false, nil
		}
		if len(todos) == 0 {
			found = true
			return id, false, nil
		}
		c := &s.state.Contacts[i]
		c.Todos = append(cloneAll(c.Todos, nil), todos...)
		return id, true, nil
	})
	return changed || found, err
}

// DeleteContact removes the contact. Invoices and tasks that reference it
// are kept.
func (s *Store) DeleteContact(id string) (bool, error) {
	return s.mutate(KindContact, ActionDeleted, func() (string, bool, error) {
		return id, deleteAt(&s.state.Contacts, id, contactID), nil
	})
}

// GetContact returns a copy of the contact with the given id.
func (s *Store) GetContact(id string) (models.Contact, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.state.Contacts, id, contactID)
	if i < 0 {
		return models.Contact{}, false
	}
	return s.state.Contacts[i].Clone(), true
}

// ListContacts returns all contacts in insertion order.
func (s *Store) ListContacts() []models.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.state.Contacts, models.Contact.Clone)
}

// SearchContacts matches q case-insensitively against name, company and
// email. An optional stage narrows the result.
func (s *Store) SearchContacts(q string, stage models.Stage) []models.Contact {
	q = strings.ToLower(strings.TrimSpace(q))
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Contact{}
	for _, c := range s.state.Contacts {
		if stage != "" && c.Stage != stage {
			continue
		}
		if q == "" ||
			strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Company), q) ||
			strings.Contains(strings.ToLower(c.Email), q) {
			out = append(out, c.Clone())
		}
	}
	return out
}
