package crm

import (
	"github.com/starford/crmai/internal/idgen"
	"github.com/starford/crmai/internal/models"
)

// InvoiceInput carries the caller-supplied fields of a new quote or invoice.
// Amount is taken as given: the store does not recompute it from Items.
type InvoiceInput struct {
	ContactID   string               `json:"contactId"`
	ContactName string               `json:"contactName"`
	Company     string               `json:"company"`
	Type        models.InvoiceType   `json:"type"`
	Amount      float64              `json:"amount"`
	Status      models.InvoiceStatus `json:"status"`
	DueDate     models.Date          `json:"dueDate"`
	Items       []models.LineItem    `json:"items"`
}

// InvoicePatch lists the fields to overwrite; nil means unchanged. The type
// is fixed at creation because the id carries it.
type InvoicePatch struct {
	ContactID   *string               `json:"contactId,omitempty"`
	ContactName *string               `json:"contactName,omitempty"`
	Company     *string               `json:"company,omitempty"`
	Amount      *float64              `json:"amount,omitempty"`
	Status      *models.InvoiceStatus `json:"status,omitempty"`
	DueDate     *models.Date          `json:"dueDate,omitempty"`
	Items       *[]models.LineItem    `json:"items,omitempty"`
}

func (p InvoicePatch) apply(inv *models.Invoice) {
	setIf(&inv.ContactID, p.ContactID)
	setIf(&inv.ContactName, p.ContactName)
	setIf(&inv.Company, p.Company)
	setIf(&inv.Amount, p.Amount)
	setIf(&inv.Status, p.Status)
	setIf(&inv.DueDate, p.DueDate)
	setSliceIf(&inv.Items, p.Items)
}

func invoiceID(inv *models.Invoice) string { return inv.ID }

// AddInvoice appends a new quote or invoice dated today. Its id is
// "D-<year>-<seq>" for quotes and "F-<year>-<seq>" for invoices. When the
// contact exists and no snapshot is given, its name and company are copied.
func (s *Store) AddInvoice(in InvoiceInput) (models.Invoice, error) {
	now := s.now()
	inv := models.Invoice{
		ContactID:   in.ContactID,
		ContactName: in.ContactName,
		Company:     in.Company,
		Type:        in.Type,
		Amount:      in.Amount,
		Status:      orDefault(in.Status, models.InvoiceStatusDraft),
		Date:        models.DateOf(now),
		DueDate:     in.DueDate,
		Items:       cloneAll(in.Items, nil),
	}
	if err := inv.Validate(); err != nil {
		return models.Invoice{}, err
	}
	_, err := s.mutate(KindInvoice, ActionCreated, func() (string, bool, error) {
		if inv.ContactID != "" && inv.ContactName == "" {
			if i := indexOf(s.state.Contacts, inv.ContactID, contactID); i >= 0 {
				inv.ContactName = s.state.Contacts[i].Name
				inv.Company = orDefault(inv.Company, s.state.Contacts[i].Company)
			}
		}
		inv.ID = idgen.InvoiceID(inv.Type.IDPrefix(), now, func(id string) bool {
			return indexOf(s.state.Invoices, id, invoiceID) >= 0
		})
		s.state.Invoices = append(s.state.Invoices, inv)
		return inv.ID, true, nil
	})
	return inv.Clone(), err
}

// UpdateInvoice shallow-merges patch into the invoice.
func (s *Store) UpdateInvoice(id string, patch InvoicePatch) (bool, error) {
	return s.mutate(KindInvoice, ActionUpdated, func() (string, bool, error) {
		i := indexOf(s.state.Invoices, id, invoiceID)
		if i < 0 {
			return id, false, nil
		}
		next := s.state.Invoices[i].Clone()
		patch.apply(&next)
		if err := next.Validate(); err != nil {
			return id, false, err
		}
		s.state.Invoices[i] = next
		return id, true, nil
	})
}

// DeleteInvoice removes the invoice.
func (s *Store) DeleteInvoice(id string) (bool, error) {
	return s.mutate(KindInvoice, ActionDeleted, func() (string, bool, error) {
		return id, deleteAt(&s.state.Invoices, id, invoiceID), nil
	})
}

// GetInvoice returns a copy of the invoice with the given id.
func (s *Store) GetInvoice(id string) (models.Invoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.state.Invoices, id, invoiceID)
	if i < 0 {
		return models.Invoice{}, false
	}
	return s.state.Invoices[i].Clone(), true
}

// ListInvoices returns all invoices in insertion order.
func (s *Store) ListInvoices() []models.Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.state.Invoices, models.Invoice.Clone)
}
